package service

import (
	"context"
	"sync"

	"futures_bot/internal/models"
	"futures_bot/pkg/precision"
)

// fakeGateway: биржа в памяти для плейсеров.
type fakeGateway struct {
	mu sync.Mutex

	price    float64
	priceErr error

	placeErr  error
	placed    *models.ExchangeOrder // что вернёт PlaceOrder
	requests  []models.OrderRequest
	details   *models.ExchangeOrder // что вернёт GetOrder
	getErr    error
	getCalls  int
	cancelErr error
	canceled  []int64
	onPlace   func() // вызывается после успешного PlaceOrder
}

func (f *fakeGateway) PlaceOrder(_ context.Context, req models.OrderRequest) (*models.ExchangeOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.placeErr != nil {
		return nil, f.placeErr
	}
	if f.onPlace != nil {
		f.onPlace()
	}
	if f.placed != nil {
		o := *f.placed
		return &o, nil
	}
	return &models.ExchangeOrder{OrderID: 1, Symbol: req.Symbol, Side: req.Side, Type: req.Type, Status: models.OrderStatusNew, OrigQty: req.Quantity}, nil
}

func (f *fakeGateway) CancelOrder(_ context.Context, _ string, orderID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, orderID)
	return f.cancelErr
}

func (f *fakeGateway) GetOrder(_ context.Context, _ string, orderID int64) (*models.ExchangeOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.details != nil {
		o := *f.details
		return &o, nil
	}
	return &models.ExchangeOrder{OrderID: orderID, Status: models.OrderStatusNew}, nil
}

func (f *fakeGateway) CurrentPrice(context.Context, string) (float64, error) {
	return f.price, f.priceErr
}

func (f *fakeGateway) SymbolFilters(_ context.Context, symbol string) (*models.SymbolFilters, error) {
	return &models.SymbolFilters{Symbol: symbol, TickSize: 0.1, StepSize: 0.001}, nil
}

type memJournal struct {
	records []models.OrderResult
}

func (m *memJournal) Record(_ context.Context, r models.OrderResult) { m.records = append(m.records, r) }

func tickRules(tick float64) RulesFunc {
	return func(context.Context, string) (precision.Rules, error) {
		return precision.Rules{TickSize: tick, StepSize: 0.001}, nil
	}
}

var fastCfg = Config{SettleDelay: 1}

var gwErr = &models.GatewayError{Op: "placeOrder", Code: -2019, Msg: "Margin is insufficient."}
