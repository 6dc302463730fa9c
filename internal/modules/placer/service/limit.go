package service

import (
	"context"
	"time"

	"futures_bot/internal/exchange"
	"futures_bot/internal/metrics"
	"futures_bot/internal/models"
	"futures_bot/pkg/logger"
)

// Limit выставляет лимитные и стоп-лимитные ордера и снимает их.
type Limit struct {
	gw      exchange.Gateway
	cfg     Config
	rules   RulesFunc
	journal Journal
}

// NewLimit: rules может быть nil, тогда цена и количество уходят на биржу без округления.
func NewLimit(gw exchange.Gateway, cfg Config, rules RulesFunc, j Journal) *Limit {
	if j == nil {
		j = noopJournal{}
	}
	return &Limit{gw: gw, cfg: cfg, rules: rules, journal: j}
}

// Place выставляет LIMIT GTC. Если ордер пересекает стакан сразу, ждёт settle и
// пытается узнать фактическую цену исполнения; иначе в результате лимитная цена.
func (l *Limit) Place(ctx context.Context, symbol string, side models.Side, qty, price float64) (*models.OrderResult, error) {
	if err := validate(symbol, side, qty); err != nil {
		return nil, err
	}
	if price <= 0 {
		return nil, models.NewValidationError("limit price must be > 0, got %v", price)
	}
	r := symbolRules(ctx, l.rules, "LIMIT", symbol)
	qty, err := roundQty(r, symbol, qty)
	if err != nil {
		return nil, err
	}

	current, err := l.gw.CurrentPrice(ctx, symbol)
	if err != nil {
		logger.Error("[LIMIT] %s current price error: %v", symbol, err)
		return nil, err
	}
	price = r.Price(price)
	logPrediction(side, price, current)

	logger.Info("[LIMIT] placing %s %v %s @ %v", side, qty, symbol, price)

	placed, err := l.gw.PlaceOrder(ctx, models.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Type:        models.OrderTypeLimit,
		Quantity:    qty,
		Price:       price,
		TimeInForce: models.TimeInForceGTC,
	})
	if err != nil {
		logger.Error("[LIMIT] %s %s place error: %v", side, symbol, err)
		return nil, err
	}
	metrics.OrdersPlaced.WithLabelValues(string(models.OrderTypeLimit), string(side)).Inc()

	execPrice := price
	if placed.Price > 0 {
		execPrice = placed.Price
	}
	if WillExecuteImmediately(side, price, current) {
		if p, ok := l.fillPrice(ctx, symbol, placed.OrderID); ok {
			execPrice = p
		}
	}

	res := models.OrderResult{
		OrderID:   placed.OrderID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qtyOr(placed.OrigQty, qty),
		Price:     models.PriceOf(execPrice),
		Status:    placed.Status,
		OrderType: models.OrderTypeLimit,
		Timestamp: time.Now(),
	}
	l.journal.Record(ctx, res)
	return &res, nil
}

// fillPrice best-effort, любая ошибка только логируется.
func (l *Limit) fillPrice(ctx context.Context, symbol string, orderID int64) (float64, bool) {
	// ордер уже выставлен, ждём settle даже при отмене ctx
	ctx = context.WithoutCancel(ctx)
	_ = sleep(ctx, l.cfg.settle())
	details, err := l.gw.GetOrder(ctx, symbol, orderID)
	if err != nil {
		logger.Warn("[LIMIT] %s order %d: could not get execution price: %v", symbol, orderID, err)
		return 0, false
	}
	if details.Filled() && details.AvgPrice > 0 {
		logger.Info("[LIMIT] %s order %d filled at actual price %v", symbol, orderID, details.AvgPrice)
		return details.AvgPrice, true
	}
	return 0, false
}

// PlaceStop выставляет стоп-лимит: trigger это цена срабатывания, limit цена заявки.
// Для BUY trigger должен быть выше текущей цены, для SELL: ниже.
func (l *Limit) PlaceStop(ctx context.Context, symbol string, side models.Side, qty, trigger, limit float64) (*models.OrderResult, error) {
	if err := validate(symbol, side, qty); err != nil {
		return nil, err
	}
	if trigger <= 0 || limit <= 0 {
		return nil, models.NewValidationError("stop prices must be > 0, got trigger=%v limit=%v", trigger, limit)
	}
	r := symbolRules(ctx, l.rules, "STOP", symbol)
	qty, err := roundQty(r, symbol, qty)
	if err != nil {
		return nil, err
	}

	current, err := l.gw.CurrentPrice(ctx, symbol)
	if err != nil {
		logger.Error("[STOP] %s current price error: %v", symbol, err)
		return nil, err
	}
	if err := ValidateStopTrigger(side, trigger, current); err != nil {
		return nil, err
	}

	logger.Info("[STOP] placing %s %v %s @ %v (stop: %v)", side, qty, symbol, limit, trigger)

	placed, err := l.gw.PlaceOrder(ctx, models.OrderRequest{
		Symbol:      symbol,
		Side:        side,
		Type:        models.OrderTypeStop,
		Quantity:    qty,
		Price:       limit,
		StopPrice:   trigger,
		TimeInForce: models.TimeInForceGTC,
	})
	if err != nil {
		logger.Error("[STOP] %s %s place error: %v", side, symbol, err)
		return nil, err
	}
	metrics.OrdersPlaced.WithLabelValues(string(models.OrderTypeStopLimit), string(side)).Inc()

	price := limit
	if placed.Price > 0 {
		price = placed.Price
	}
	res := models.OrderResult{
		OrderID:   placed.OrderID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qtyOr(placed.OrigQty, qty),
		Price:     models.PriceOf(price),
		Status:    placed.Status,
		OrderType: models.OrderTypeStopLimit,
		Timestamp: time.Now(),
	}
	l.journal.Record(ctx, res)
	return &res, nil
}

// Cancel снимает ордер. Ошибку не пробрасываем: только false и лог.
func (l *Limit) Cancel(ctx context.Context, symbol string, orderID int64) bool {
	if err := l.gw.CancelOrder(ctx, symbol, orderID); err != nil {
		logger.Error("[CANCEL] %s order %d: %v", symbol, orderID, err)
		metrics.OrdersCancelled.WithLabelValues("error").Inc()
		return false
	}
	logger.Info("[CANCEL] %s order %d cancelled", symbol, orderID)
	metrics.OrdersCancelled.WithLabelValues("ok").Inc()
	return true
}

// WillExecuteImmediately: лимитка пересекает стакан (BUY не ниже рынка, SELL не выше).
func WillExecuteImmediately(side models.Side, price, current float64) bool {
	if side == models.SideBuy {
		return price >= current
	}
	return price <= current
}

func ValidateStopTrigger(side models.Side, trigger, current float64) error {
	switch {
	case side == models.SideBuy && trigger <= current:
		return models.NewValidationError("BUY stop price (%v) must be > current price (%v)", trigger, current)
	case side == models.SideSell && trigger >= current:
		return models.NewValidationError("SELL stop price (%v) must be < current price (%v)", trigger, current)
	}
	return nil
}

func logPrediction(side models.Side, price, current float64) {
	switch {
	case side == models.SideBuy && price >= current:
		logger.Warn("[LIMIT] BUY @ %v >= current %v - IMMEDIATE EXECUTION", price, current)
	case side == models.SideBuy:
		logger.Info("[LIMIT] BUY @ %v < current %v - WAITING for price drop", price, current)
	case price <= current:
		logger.Warn("[LIMIT] SELL @ %v <= current %v - IMMEDIATE EXECUTION", price, current)
	default:
		logger.Info("[LIMIT] SELL @ %v > current %v - WAITING for price rise", price, current)
	}
}

func qtyOr(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}
