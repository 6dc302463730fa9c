package service

import (
	"context"
	"time"

	"futures_bot/internal/exchange"
	"futures_bot/internal/metrics"
	"futures_bot/internal/models"
	"futures_bot/pkg/logger"
)

// Market выставляет рыночные ордера.
type Market struct {
	gw      exchange.Gateway
	cfg     Config
	rules   RulesFunc
	journal Journal
}

// NewMarket: rules может быть nil, тогда количество уходит на биржу без округления.
func NewMarket(gw exchange.Gateway, cfg Config, rules RulesFunc, j Journal) *Market {
	if j == nil {
		j = noopJournal{}
	}
	return &Market{gw: gw, cfg: cfg, rules: rules, journal: j}
}

// Place отправляет MARKET и один раз спрашивает статус, чтобы узнать цену исполнения.
// Ошибки биржи отдаются как есть, без повторов.
func (m *Market) Place(ctx context.Context, symbol string, side models.Side, qty float64) (*models.OrderResult, error) {
	if err := validate(symbol, side, qty); err != nil {
		return nil, err
	}
	qty, err := roundQty(symbolRules(ctx, m.rules, "MARKET", symbol), symbol, qty)
	if err != nil {
		return nil, err
	}

	// цена до ордера нужна только для лога проскальзывания
	refPrice, err := m.gw.CurrentPrice(ctx, symbol)
	if err != nil {
		logger.Warn("[MARKET] %s reference price unavailable: %v", symbol, err)
		refPrice = 0
	}

	logger.Info("[MARKET] placing %s %v %s", side, qty, symbol)

	placed, err := m.gw.PlaceOrder(ctx, models.OrderRequest{
		Symbol:   symbol,
		Side:     side,
		Type:     models.OrderTypeMarket,
		Quantity: qty,
	})
	if err != nil {
		logger.Error("[MARKET] %s %s place error: %v", side, symbol, err)
		return nil, err
	}
	metrics.OrdersPlaced.WithLabelValues(string(models.OrderTypeMarket), string(side)).Inc()

	// ордер уже на бирже: отмена ctx не должна терять его результат
	after := context.WithoutCancel(ctx)
	_ = sleep(after, m.cfg.settle())

	details, err := m.gw.GetOrder(after, symbol, placed.OrderID)
	if err != nil {
		logger.Error("[MARKET] %s order %d status error: %v", symbol, placed.OrderID, err)
		return nil, err
	}

	var price *float64
	switch {
	case details.AvgPrice > 0:
		price = models.PriceOf(details.AvgPrice)
	case details.Price > 0:
		price = models.PriceOf(details.Price)
	}

	if price != nil && refPrice > 0 {
		// для SELL рост цены: в плюс, поэтому знак меняем
		mult := 1.0
		if side == models.SideSell {
			mult = -1
		}
		change := mult * (*price - refPrice) / refPrice * 100
		logger.Info("[MARKET] %s executed at %v (ref %v, slippage %.2f%%)", symbol, *price, refPrice, change)
	} else {
		logger.Warn("[MARKET] %s order %d: execution price not known yet", symbol, placed.OrderID)
	}

	res := models.OrderResult{
		OrderID:   placed.OrderID,
		Symbol:    symbol,
		Side:      side,
		Quantity:  qtyOr(details.OrigQty, qty),
		Price:     price,
		Status:    details.Status,
		OrderType: models.OrderTypeMarket,
		Timestamp: time.Now(),
	}
	m.journal.Record(ctx, res)
	return &res, nil
}
