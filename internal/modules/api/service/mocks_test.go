package service

import (
	"context"
	"time"

	"futures_bot/internal/models"
)

type fakeMarket struct {
	calls int
	err   error
}

func (f *fakeMarket) Place(_ context.Context, symbol string, side models.Side, qty float64) (*models.OrderResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &models.OrderResult{OrderID: 1, Symbol: symbol, Side: side, Quantity: qty, Price: models.PriceOf(100), Status: models.OrderStatusFilled, OrderType: models.OrderTypeMarket}, nil
}

type fakeLimit struct {
	calls int
}

func (f *fakeLimit) Place(_ context.Context, symbol string, side models.Side, qty, price float64) (*models.OrderResult, error) {
	f.calls++
	return &models.OrderResult{OrderID: 2, Symbol: symbol, Side: side, Quantity: qty, Price: models.PriceOf(price), Status: models.OrderStatusNew, OrderType: models.OrderTypeLimit}, nil
}

type fakeOCO struct {
	err error
}

func (f *fakeOCO) Place(context.Context, string, models.Side, float64, float64, float64, float64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "OCO_1", nil
}

func (f *fakeOCO) Get(id string) (models.OCOPair, error) {
	if id != "OCO_1" {
		return models.OCOPair{}, models.ErrNotFound
	}
	return models.OCOPair{ID: id, Status: models.OCOActive}, nil
}

func (f *fakeOCO) List() []models.OCOPair { return []models.OCOPair{{ID: "OCO_1"}} }

type fakeTWAP struct {
	gotDuration, gotInterval time.Duration
	running                  bool
	err                      error
}

func (f *fakeTWAP) Start(_ context.Context, _ string, _ models.Side, total float64, duration, interval time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, _, err := slicePlan(duration, interval); err != nil {
		return "", err
	}
	f.gotDuration, f.gotInterval = duration, interval
	f.running = true
	return "TWAP_1", nil
}

func slicePlan(duration, interval time.Duration) (int, float64, error) {
	if duration < interval {
		return 0, 0, models.NewValidationError("zero slices")
	}
	return int(duration / interval), 0, nil
}

func (f *fakeTWAP) Cancel(id string) bool {
	if id != "TWAP_1" || !f.running {
		return false
	}
	f.running = false
	return true
}

func (f *fakeTWAP) Get(id string) (models.TWAPJob, error) {
	if id != "TWAP_1" {
		return models.TWAPJob{}, models.ErrNotFound
	}
	return models.TWAPJob{ID: id}, nil
}

func (f *fakeTWAP) List() []models.TWAPJob { return nil }

type fakeGrid struct {
	started  bool
	startErr error
}

func (f *fakeGrid) Create(string, float64, float64, int, float64) (string, error) { return "GRID_1", nil }

func (f *fakeGrid) Start(_ context.Context, id string) (bool, error) {
	if f.startErr != nil {
		return false, f.startErr
	}
	if f.started {
		return false, nil
	}
	f.started = true
	return true, nil
}

func (f *fakeGrid) Stop(_ context.Context, id string) bool { return id == "GRID_1" }

func (f *fakeGrid) Get(id string) (models.GridStrategy, error) {
	if id != "GRID_1" {
		return models.GridStrategy{}, models.ErrNotFound
	}
	return models.GridStrategy{ID: id}, nil
}

func (f *fakeGrid) List() []models.GridStrategy { return []models.GridStrategy{} }

type fakeAccount struct {
	err error
}

func (f *fakeAccount) CurrentPrice(context.Context, string) (float64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return 65000.5, nil
}

func (f *fakeAccount) Balances(context.Context) ([]models.Balance, error) {
	return []models.Balance{
		{Asset: "USDT", Wallet: 1000, Available: 900},
		{Asset: "BNB"},
	}, nil
}

type fakeFilters struct{}

func (fakeFilters) Get(_ context.Context, symbol string) (models.SymbolFilters, error) {
	return models.SymbolFilters{Symbol: symbol, MinQty: 0.001, MaxQty: 100, StepSize: 0.001, MinPrice: 0.1, MaxPrice: 1000000, TickSize: 0.1}, nil
}
