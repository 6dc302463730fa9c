package service

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"futures_bot/internal/models"
	"futures_bot/internal/notify"
	"futures_bot/pkg/logger"
)

const tagOCO = "OCO"

// OCO: пара лимитка + стоп на одно количество; исполнение одной снимает другую.
type OCO struct {
	limit    LimitPlacer
	gw       OrderQuerier
	sup      *Supervisor
	reg      *Registry[models.OCOPair]
	cfg      Config
	notifier notify.Notifier
}

func NewOCO(limit LimitPlacer, gw OrderQuerier, sup *Supervisor, cfg Config, n notify.Notifier) *OCO {
	return &OCO{
		limit:    limit,
		gw:       gw,
		sup:      sup,
		reg:      NewRegistry[models.OCOPair](),
		cfg:      cfg,
		notifier: notifierOr(n),
	}
}

// ValidateOCOPrices: у SELL лимит выше триггера, у BUY ниже. Иначе ноги не обрамляют цену.
func ValidateOCOPrices(side models.Side, limitPrice, stopTrigger float64) error {
	switch side {
	case models.SideSell:
		if limitPrice <= stopTrigger {
			return models.NewValidationError("SELL OCO: limit price (%v) must be > stop price (%v)", limitPrice, stopTrigger)
		}
	case models.SideBuy:
		if limitPrice >= stopTrigger {
			return models.NewValidationError("BUY OCO: limit price (%v) must be < stop price (%v)", limitPrice, stopTrigger)
		}
	default:
		return models.NewValidationError("side must be BUY or SELL, got %q", side)
	}
	return nil
}

// Place выставляет лимитную ногу, затем стоп-ногу, регистрирует пару и запускает мониторинг.
// Если упала стоп-нога, пара не регистрируется, а лимитка остаётся на бирже:
// вернётся *models.PartialFailureError с её данными. После Shutdown: models.ErrShuttingDown.
func (o *OCO) Place(ctx context.Context, symbol string, side models.Side, qty, limitPrice, stopTrigger, stopLimit float64) (string, error) {
	if err := (models.OrderIntent{Symbol: symbol, Side: side, Quantity: qty}).Validate(); err != nil {
		return "", err
	}
	if limitPrice <= 0 || stopTrigger <= 0 || stopLimit <= 0 {
		return "", models.NewValidationError("OCO prices must be > 0, got limit=%v stop=%v stop_limit=%v", limitPrice, stopTrigger, stopLimit)
	}
	if err := ValidateOCOPrices(side, limitPrice, stopTrigger); err != nil {
		return "", err
	}
	if o.sup.Closed() {
		return "", models.ErrShuttingDown
	}

	limitLeg, err := o.limit.Place(ctx, symbol, side, qty, limitPrice)
	if err != nil {
		return "", errors.Wrap(err, "oco limit leg")
	}

	stopLeg, err := o.limit.PlaceStop(ctx, symbol, side, qty, stopTrigger, stopLimit)
	if err != nil {
		logger.Error("[%s] %s stop leg failed, limit order %d left live: %v", tagOCO, symbol, limitLeg.OrderID, err)
		o.notifier.Sendf("OCO %s %s: stop leg failed, limit order %d is live and NOT monitored", side, symbol, limitLeg.OrderID)
		return "", &models.PartialFailureError{Placed: *limitLeg, Err: err}
	}

	id := newID(tagOCO)
	h := o.reg.Insert(id, models.OCOPair{
		ID:         id,
		Symbol:     symbol,
		Side:       side,
		Quantity:   qty,
		LimitOrder: *limitLeg,
		StopOrder:  *stopLeg,
		Status:     models.OCOActive,
		CreatedAt:  time.Now(),
	})
	if !o.sup.Go(id, func(ctx context.Context) { o.monitor(ctx, h) }) {
		// остановка началась, пока ставили ноги: без мониторинга пару не оставляем
		o.reg.remove(id)
		o.rollback(ctx, symbol, limitLeg.OrderID, stopLeg.OrderID)
		return "", models.ErrShuttingDown
	}
	transition(models.StrategyOCO, string(models.OCOActive))
	logger.Info("[%s] %s placed: limit=%d stop=%d", tagOCO, id, limitLeg.OrderID, stopLeg.OrderID)
	return id, nil
}

// rollback снимает обе ноги незарегистрированной пары.
func (o *OCO) rollback(ctx context.Context, symbol string, orderIDs ...int64) {
	ctx = context.WithoutCancel(ctx)
	for _, id := range orderIDs {
		if !o.limit.Cancel(ctx, symbol, id) {
			logger.Error("[%s] %s order %d left live after aborted placement", tagOCO, symbol, id)
			o.notifier.Sendf("OCO %s: order %d is live and NOT monitored", symbol, id)
		}
	}
}

// monitor опрашивает обе ноги, пока пара ACTIVE.
func (o *OCO) monitor(ctx context.Context, h *Handle[models.OCOPair]) {
	pair := h.Snapshot()
	wait := o.cfg.wait()
	fails := 0

	for {
		limitSt, stopSt, err := o.legs(ctx, pair)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			fails++
			if !pollErr(ctx, tagOCO, pair.ID, o.cfg.policy(), wait, fails, err) {
				return
			}
			continue
		}
		fails = 0

		switch {
		case limitSt.Filled():
			o.finish(ctx, h, pair.StopOrder.OrderID, models.OCOLimitFilled)
			return
		case stopSt.Filled():
			o.finish(ctx, h, pair.LimitOrder.OrderID, models.OCOStopFilled)
			return
		}

		if err := wait(ctx, o.cfg.interval()); err != nil {
			return
		}
	}
}

func (o *OCO) legs(ctx context.Context, p models.OCOPair) (*models.ExchangeOrder, *models.ExchangeOrder, error) {
	limitSt, err := o.gw.GetOrder(ctx, p.Symbol, p.LimitOrder.OrderID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "limit order %d", p.LimitOrder.OrderID)
	}
	stopSt, err := o.gw.GetOrder(ctx, p.Symbol, p.StopOrder.OrderID)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "stop order %d", p.StopOrder.OrderID)
	}
	return limitSt, stopSt, nil
}

// finish снимает вторую ногу (ровно один раз) и переводит пару в терминальный статус.
func (o *OCO) finish(ctx context.Context, h *Handle[models.OCOPair], cancelID int64, status models.OCOStatus) {
	pair := h.Snapshot()
	if !o.limit.Cancel(ctx, pair.Symbol, cancelID) {
		logger.Warn("[%s] %s could not cancel order %d", tagOCO, pair.ID, cancelID)
	}

	h.Update(func(p *models.OCOPair) { p.Status = status })
	transition(models.StrategyOCO, string(status))

	logger.Info("[%s] %s %s, cancelled order %d", tagOCO, pair.ID, status, cancelID)
	o.notifier.Sendf("OCO %s %s %v: %s", pair.Side, pair.Symbol, pair.Quantity, status)
}

func (o *OCO) Get(id string) (models.OCOPair, error) { return o.reg.Get(id) }

// All: снимки всех пар по id.
func (o *OCO) All() map[string]models.OCOPair { return o.reg.AllByID() }

// List: снимки в порядке создания.
func (o *OCO) List() []models.OCOPair { return o.reg.All() }
