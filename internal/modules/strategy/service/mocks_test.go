package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"futures_bot/internal/models"
)

var errGateway = &models.GatewayError{Op: "getOrder", HTTPStatus: 503, Msg: "unavailable"}

// fakeLimit: лимитный плейсер в памяти, раздаёт id по порядку и пишет вызовы.
type fakeLimit struct {
	mu       sync.Mutex
	nextID   int64
	placed   []models.OrderResult
	stops    []models.OrderResult
	canceled []int64

	placeErr   error
	stopErr    error
	failPrice  map[float64]bool
	cancelFail map[int64]bool

	// хуки вызываются вне лока
	onPlace  func(n int)
	onStop   func()
	onCancel func(orderID int64)
}

func newFakeLimit() *fakeLimit { return &fakeLimit{nextID: 100} }

func (f *fakeLimit) Place(_ context.Context, symbol string, side models.Side, qty, price float64) (*models.OrderResult, error) {
	f.mu.Lock()
	if f.placeErr != nil {
		f.mu.Unlock()
		return nil, f.placeErr
	}
	if f.failPrice[price] {
		f.mu.Unlock()
		return nil, errGateway
	}
	f.nextID++
	r := models.OrderResult{
		OrderID:   f.nextID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     models.PriceOf(price),
		Status:    models.OrderStatusNew,
		OrderType: models.OrderTypeLimit,
	}
	f.placed = append(f.placed, r)
	n, hook := len(f.placed), f.onPlace
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	return &r, nil
}

func (f *fakeLimit) PlaceStop(_ context.Context, symbol string, side models.Side, qty, trigger, limit float64) (*models.OrderResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stopErr != nil {
		return nil, f.stopErr
	}
	if f.onStop != nil {
		// вне лока: хук может дёргать Supervisor
		hook := f.onStop
		f.mu.Unlock()
		hook()
		f.mu.Lock()
	}
	f.nextID++
	r := models.OrderResult{
		OrderID:   f.nextID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     models.PriceOf(limit),
		Status:    models.OrderStatusNew,
		OrderType: models.OrderTypeStopLimit,
	}
	f.stops = append(f.stops, r)
	return &r, nil
}

// Cancel пишет вызов; для id из cancelFail возвращает false.
func (f *fakeLimit) Cancel(_ context.Context, _ string, orderID int64) bool {
	f.mu.Lock()
	f.canceled = append(f.canceled, orderID)
	fail, hook := f.cancelFail[orderID], f.onCancel
	f.mu.Unlock()

	if hook != nil {
		hook(orderID)
	}
	return !fail
}

func (f *fakeLimit) placedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placed)
}

func (f *fakeLimit) canceledIDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.canceled...)
}

// fakeMarket: рыночный плейсер; errAt это номер вызова (с 1), на котором вернуть ошибку.
type fakeMarket struct {
	mu     sync.Mutex
	calls  []float64
	errAt  int
	onCall func(n int)
}

func (f *fakeMarket) Place(_ context.Context, symbol string, side models.Side, qty float64) (*models.OrderResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, qty)
	n := len(f.calls)
	hook := f.onCall
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if n == f.errAt {
		return nil, errGateway
	}
	return &models.OrderResult{
		OrderID:   int64(n),
		Symbol:    symbol,
		Side:      side,
		Quantity:  qty,
		Price:     models.PriceOf(100),
		Status:    models.OrderStatusFilled,
		OrderType: models.OrderTypeMarket,
	}, nil
}

func (f *fakeMarket) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeQuerier отдаёт статусы ордеров из карты; err: ошибка на любой GetOrder.
type fakeQuerier struct {
	mu       sync.Mutex
	price    float64
	priceErr error
	status   map[int64]models.OrderStatus
	err      error
	errCalls int // сколько первых вызовов вернут err; 0: все
	calls    int
}

func newFakeQuerier(price float64) *fakeQuerier {
	return &fakeQuerier{price: price, status: make(map[int64]models.OrderStatus)}
}

func (f *fakeQuerier) GetOrder(_ context.Context, symbol string, orderID int64) (*models.ExchangeOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil && (f.errCalls == 0 || f.calls <= f.errCalls) {
		return nil, f.err
	}
	st, ok := f.status[orderID]
	if !ok {
		st = models.OrderStatusNew
	}
	return &models.ExchangeOrder{OrderID: orderID, Symbol: symbol, Status: st}, nil
}

func (f *fakeQuerier) CurrentPrice(context.Context, string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.price, f.priceErr
}

func (f *fakeQuerier) setStatus(orderID int64, st models.OrderStatus) {
	f.mu.Lock()
	f.status[orderID] = st
	f.mu.Unlock()
}

func (f *fakeQuerier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// recordWait запоминает запрошенные паузы и спит всего 1ms.
type recordWait struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordWait) Wait(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	r.mu.Unlock()
	// даём тесту шанс поменять состояние между опросами
	time.Sleep(time.Millisecond)
	return ctx.Err()
}

func (r *recordWait) all() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

type captureNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureNotifier) Send(msg string) {
	c.mu.Lock()
	c.msgs = append(c.msgs, msg)
	c.mu.Unlock()
}

func (c *captureNotifier) Sendf(format string, args ...any) {
	c.Send(format)
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func shutdown(t *testing.T, sup *Supervisor) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sup.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func approx(a, b float64) bool {
	const eps = 1e-9
	d := a - b
	return d < eps && d > -eps
}
