package service

import (
	"context"
	"time"

	"futures_bot/internal/models"
	"futures_bot/internal/notify"
	"futures_bot/pkg/logger"
)

const tagTWAP = "TWAP"

// TWAP режет объём на равные рыночные срезы через фиксированный интервал.
type TWAP struct {
	market   MarketPlacer
	sup      *Supervisor
	reg      *Registry[models.TWAPJob]
	cfg      Config
	notifier notify.Notifier
}

func NewTWAP(market MarketPlacer, sup *Supervisor, cfg Config, n notify.Notifier) *TWAP {
	return &TWAP{
		market:   market,
		sup:      sup,
		reg:      NewRegistry[models.TWAPJob](),
		cfg:      cfg,
		notifier: notifierOr(n),
	}
}

// SlicePlan: число срезов (целочисленное деление) и объём на срез.
func SlicePlan(total float64, duration, interval time.Duration) (int, float64, error) {
	if duration <= 0 || interval <= 0 {
		return 0, 0, models.NewValidationError("duration and interval must be positive, got %v / %v", duration, interval)
	}
	slices := int(duration / interval)
	if slices < 1 {
		return 0, 0, models.NewValidationError("duration (%v) shorter than interval (%v): zero slices", duration, interval)
	}
	return slices, total / float64(slices), nil
}

// Start регистрирует задание в RUNNING и запускает исполнение.
func (t *TWAP) Start(ctx context.Context, symbol string, side models.Side, total float64, duration, interval time.Duration) (string, error) {
	if err := (models.OrderIntent{Symbol: symbol, Side: side, Quantity: total}).Validate(); err != nil {
		return "", err
	}
	slices, perSlice, err := SlicePlan(total, duration, interval)
	if err != nil {
		return "", err
	}
	if t.sup.Closed() {
		return "", models.ErrShuttingDown
	}

	id := newID(tagTWAP)
	h := t.reg.Insert(id, models.TWAPJob{
		ID:               id,
		Symbol:           symbol,
		Side:             side,
		TotalQuantity:    total,
		Slices:           slices,
		QuantityPerSlice: perSlice,
		Interval:         interval,
		Status:           models.TWAPRunning,
		StartedAt:        time.Now(),
	})
	if !t.sup.Go(id, func(ctx context.Context) { t.execute(ctx, h) }) {
		// ни одного слайса ещё не было, запись не нужна
		t.reg.remove(id)
		return "", models.ErrShuttingDown
	}
	transition(models.StrategyTWAP, string(models.TWAPRunning))
	logger.Info("[%s] %s started: %s %v %s in %d slices of %v every %v", tagTWAP, id, side, total, symbol, slices, perSlice, interval)
	return id, nil
}

func (t *TWAP) execute(ctx context.Context, h *Handle[models.TWAPJob]) {
	job := h.Snapshot()
	wait := t.cfg.wait()

	for i := 0; i < job.Slices; i++ {
		if h.Snapshot().Status != models.TWAPRunning {
			logger.Info("[%s] %s stopped before slice %d/%d", tagTWAP, job.ID, i+1, job.Slices)
			return
		}

		res, err := t.market.Place(ctx, job.Symbol, job.Side, job.QuantityPerSlice)
		if err != nil {
			if ctx.Err() != nil {
				t.end(h, models.TWAPCancelled, "shutdown")
				return
			}
			logger.Error("[%s] %s slice %d/%d failed: %v", tagTWAP, job.ID, i+1, job.Slices, err)
			t.end(h, models.TWAPFailed, err.Error())
			return
		}

		h.Update(func(j *models.TWAPJob) {
			j.Orders = append(j.Orders, *res)
			j.Completed++
		})
		logger.Info("[%s] %s slice %d/%d: order %d", tagTWAP, job.ID, i+1, job.Slices, res.OrderID)

		if i < job.Slices-1 {
			if err := wait(ctx, job.Interval); err != nil {
				t.end(h, models.TWAPCancelled, "shutdown")
				return
			}
		}
	}

	t.end(h, models.TWAPCompleted, "")
}

// end: терминальный переход, только из RUNNING.
func (t *TWAP) end(h *Handle[models.TWAPJob], status models.TWAPStatus, reason string) {
	changed := false
	h.Update(func(j *models.TWAPJob) {
		if j.Status != models.TWAPRunning {
			return
		}
		j.Status = status
		j.Error = reason
		changed = true
	})
	if !changed {
		return
	}
	transition(models.StrategyTWAP, string(status))

	job := h.Snapshot()
	logger.Info("[%s] %s %s: %d/%d slices", tagTWAP, job.ID, status, job.Completed, job.Slices)
	t.notifier.Sendf("TWAP %s %s: %s, %d/%d slices, %v of %v placed", job.Side, job.Symbol, status, job.Completed, job.Slices, job.PlacedQuantity(), job.TotalQuantity)
}

// Cancel действует только на RUNNING; текущий срез не прерывается.
func (t *TWAP) Cancel(id string) bool {
	h, ok := t.reg.handle(id)
	if !ok {
		return false
	}
	cancelled := false
	h.Update(func(j *models.TWAPJob) {
		if j.Status == models.TWAPRunning {
			j.Status = models.TWAPCancelled
			cancelled = true
		}
	})
	if cancelled {
		transition(models.StrategyTWAP, string(models.TWAPCancelled))
		logger.Info("[%s] %s cancelled", tagTWAP, id)
	}
	return cancelled
}

func (t *TWAP) Get(id string) (models.TWAPJob, error) { return t.reg.Get(id) }

func (t *TWAP) All() map[string]models.TWAPJob { return t.reg.AllByID() }

func (t *TWAP) List() []models.TWAPJob { return t.reg.All() }
