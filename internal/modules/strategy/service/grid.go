package service

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"futures_bot/internal/models"
	"futures_bot/internal/notify"
	"futures_bot/pkg/logger"
)

const tagGrid = "GRID"

// Grid: лестница лимиток между двумя ценами с учётом исполнений.
// Исполненные уровни не перевыставляются.
type Grid struct {
	limit    LimitPlacer
	gw       OrderQuerier
	sup      *Supervisor
	reg      *Registry[models.GridStrategy]
	cfg      Config
	notifier notify.Notifier

	// start/stop одной сетки не должны пересекаться
	cmdMu sync.Map // id -> *sync.Mutex
}

func NewGrid(limit LimitPlacer, gw OrderQuerier, sup *Supervisor, cfg Config, n notify.Notifier) *Grid {
	return &Grid{
		limit:    limit,
		gw:       gw,
		sup:      sup,
		reg:      NewRegistry[models.GridStrategy](),
		cfg:      cfg,
		notifier: notifierOr(n),
	}
}

// BuildLevels: price_i = lower + i*step, BUY для i < levels/2, остальные SELL.
func BuildLevels(lower, upper float64, levels int, total float64) ([]models.GridLevel, error) {
	if levels < 2 {
		return nil, models.NewValidationError("grid needs at least 2 levels, got %d", levels)
	}
	if lower <= 0 || lower >= upper {
		return nil, models.NewValidationError("grid bounds must satisfy 0 < lower < upper, got %v..%v", lower, upper)
	}
	if total <= 0 {
		return nil, models.NewValidationError("grid quantity must be > 0, got %v", total)
	}

	step := (upper - lower) / float64(levels-1)
	qty := total / float64(levels)
	half := levels / 2

	out := make([]models.GridLevel, levels)
	for i := range out {
		side := models.SideSell
		if i < half {
			side = models.SideBuy
		}
		out[i] = models.GridLevel{
			Price:    lower + float64(i)*step,
			Quantity: qty,
			Side:     side,
			Status:   models.GridLevelPending,
		}
	}
	return out, nil
}

// RestsAwayFromMarket: уровень ждёт движения цены к себе (BUY ниже текущей, SELL выше).
// Уровень ровно на текущей цене не выставляется.
func RestsAwayFromMarket(l models.GridLevel, current float64) bool {
	if l.Side == models.SideBuy {
		return l.Price < current
	}
	return l.Price > current
}

// Create строит уровни и регистрирует сетку в CREATED, ордеров не ставит.
func (g *Grid) Create(symbol string, lower, upper float64, levels int, total float64) (string, error) {
	if symbol == "" {
		return "", models.NewValidationError("symbol is required")
	}
	lv, err := BuildLevels(lower, upper, levels, total)
	if err != nil {
		return "", err
	}

	id := newID(tagGrid)
	g.reg.Insert(id, models.GridStrategy{
		ID:         id,
		Symbol:     symbol,
		LowerPrice: lower,
		UpperPrice: upper,
		Levels:     lv,
		Status:     models.GridCreated,
		CreatedAt:  time.Now(),
	})
	transition(models.StrategyGrid, string(models.GridCreated))
	logger.Info("[%s] %s created: %s %v..%v, %d levels", tagGrid, id, symbol, lower, upper, levels)
	return id, nil
}

func (g *Grid) lock(id string) func() {
	m, _ := g.cmdMu.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Start выставляет уровни, которые не исполнятся сразу, и запускает мониторинг.
// false: нет такой сетки или она уже не в CREATED. После Shutdown: models.ErrShuttingDown,
// уже выставленные уровни при этом снимаются.
func (g *Grid) Start(ctx context.Context, id string) (bool, error) {
	h, ok := g.reg.handle(id)
	if !ok {
		return false, nil
	}
	defer g.lock(id)()

	st := h.Snapshot()
	if st.Status != models.GridCreated {
		logger.Warn("[%s] %s start ignored: status %s", tagGrid, id, st.Status)
		return false, nil
	}
	if g.sup.Closed() {
		return false, models.ErrShuttingDown
	}

	current, err := g.gw.CurrentPrice(ctx, st.Symbol)
	if err != nil {
		return false, errors.Wrapf(err, "grid %s current price", id)
	}
	logger.Info("[%s] %s starting at current price %v", tagGrid, id, current)

	for i, l := range st.Levels {
		if !RestsAwayFromMarket(l, current) {
			logger.Debug("[%s] %s level %d %s @ %v skipped: would cross at %v", tagGrid, id, i, l.Side, l.Price, current)
			continue
		}
		res, err := g.limit.Place(ctx, st.Symbol, l.Side, l.Quantity, l.Price)
		if err != nil {
			logger.Error("[%s] %s level %d %s @ %v placement error: %v", tagGrid, id, i, l.Side, l.Price, err)
			continue
		}
		orderID := res.OrderID
		h.Update(func(s *models.GridStrategy) {
			s.Levels[i].OrderID = &orderID
			s.Levels[i].Status = models.GridLevelPlaced
			// после округления к шагу на бирже может стоять меньше
			if res.Quantity > 0 {
				s.Levels[i].Quantity = res.Quantity
			}
			s.ActiveOrders++
		})
	}

	h.Update(func(s *models.GridStrategy) { s.Status = models.GridRunning })
	if !g.sup.Go(id, func(ctx context.Context) { g.monitor(ctx, h) }) {
		logger.Warn("[%s] %s shutdown during start, cancelling placed levels", tagGrid, id)
		g.halt(context.WithoutCancel(ctx), h)
		return false, models.ErrShuttingDown
	}
	transition(models.StrategyGrid, string(models.GridRunning))

	snap := h.Snapshot()
	logger.Info("[%s] %s running: %d active orders", tagGrid, id, snap.ActiveOrders)
	return true, nil
}

type placedLevel struct {
	idx     int
	orderID int64
}

func placedLevels(s models.GridStrategy) []placedLevel {
	var out []placedLevel
	for i, l := range s.Levels {
		if l.Status == models.GridLevelPlaced && l.OrderID != nil {
			out = append(out, placedLevel{idx: i, orderID: *l.OrderID})
		}
	}
	return out
}

// monitor опрашивает выставленные уровни, пока сетка RUNNING.
func (g *Grid) monitor(ctx context.Context, h *Handle[models.GridStrategy]) {
	wait := g.cfg.wait()
	fails := 0

	for {
		st := h.Snapshot()
		if st.Status != models.GridRunning {
			return
		}

		if err := g.poll(ctx, h, st); err != nil {
			if ctx.Err() != nil {
				return
			}
			fails++
			if !pollErr(ctx, tagGrid, st.ID, g.cfg.policy(), wait, fails, err) {
				return
			}
			continue
		}
		fails = 0

		if err := wait(ctx, g.cfg.interval()); err != nil {
			return
		}
	}
}

// poll: уровни, исполнившиеся до ошибки, учитываются сразу.
func (g *Grid) poll(ctx context.Context, h *Handle[models.GridStrategy], st models.GridStrategy) error {
	for _, pl := range placedLevels(st) {
		order, err := g.gw.GetOrder(ctx, st.Symbol, pl.orderID)
		if err != nil {
			return errors.Wrapf(err, "level %d order %d", pl.idx, pl.orderID)
		}
		if !order.Filled() {
			continue
		}

		var filled models.GridLevel
		applied := false
		h.Update(func(s *models.GridStrategy) {
			if s.Status != models.GridRunning || s.Levels[pl.idx].Status != models.GridLevelPlaced {
				return
			}
			filled = applyFill(s, pl.idx)
			applied = true
		})
		if applied {
			logger.Info("[%s] %s level %d %s %v @ %v filled", tagGrid, st.ID, pl.idx, filled.Side, filled.Quantity, filled.Price)
		}
	}
	return nil
}

// applyFill учитывает исполнение уровня idx. Вызывать только внутри Handle.Update.
func applyFill(s *models.GridStrategy, idx int) models.GridLevel {
	l := &s.Levels[idx]
	l.Status = models.GridLevelFilled
	s.ActiveOrders--
	s.TotalTrades++
	if l.Side == models.SideSell {
		s.ProfitLoss += l.Quantity * l.Price
	} else {
		s.ProfitLoss -= l.Quantity * l.Price
	}
	return *l
}

// Stop снимает все выставленные уровни и переводит сетку в STOPPED.
// Повторный Stop возвращает true без действий, неизвестный id даёт false.
func (g *Grid) Stop(ctx context.Context, id string) bool {
	h, ok := g.reg.handle(id)
	if !ok {
		return false
	}
	defer g.lock(id)()

	g.halt(ctx, h)
	return true
}

// halt: STOPPED и снятие PLACED уровней. Если снять не вышло, ордер перезапрашивается:
// успевший исполниться уровень учитывается как сделка, остальные становятся CANCELLED.
func (g *Grid) halt(ctx context.Context, h *Handle[models.GridStrategy]) {
	var toCancel []placedLevel
	already := false
	h.Update(func(s *models.GridStrategy) {
		if s.Status == models.GridStopped {
			already = true
			return
		}
		s.Status = models.GridStopped
		toCancel = placedLevels(*s)
	})
	if already {
		return
	}

	st := h.Snapshot()
	filledBefore := make(map[int]bool)
	for _, pl := range toCancel {
		if g.limit.Cancel(ctx, st.Symbol, pl.orderID) {
			continue
		}
		order, err := g.gw.GetOrder(ctx, st.Symbol, pl.orderID)
		switch {
		case err != nil:
			logger.Error("[%s] %s level %d order %d: cancel failed, status unknown: %v", tagGrid, st.ID, pl.idx, pl.orderID, err)
		case order.Filled():
			filledBefore[pl.idx] = true
		default:
			logger.Error("[%s] %s level %d order %d: cancel failed, exchange status %s", tagGrid, st.ID, pl.idx, pl.orderID, order.Status)
		}
	}

	h.Update(func(s *models.GridStrategy) {
		for _, pl := range toCancel {
			if s.Levels[pl.idx].Status != models.GridLevelPlaced {
				continue
			}
			if filledBefore[pl.idx] {
				applyFill(s, pl.idx)
				continue
			}
			s.Levels[pl.idx].Status = models.GridLevelCancelled
		}
		s.ActiveOrders = 0
	})
	transition(models.StrategyGrid, string(models.GridStopped))

	st = h.Snapshot()
	logger.Info("[%s] %s stopped: cancelled %d orders, %d filled before cancel, trades=%d pnl=%.4f",
		tagGrid, st.ID, len(toCancel)-len(filledBefore), len(filledBefore), st.TotalTrades, st.ProfitLoss)
	g.notifier.Sendf("GRID %s stopped: %d trades, P&L %.4f", st.Symbol, st.TotalTrades, st.ProfitLoss)
}

func (g *Grid) Get(id string) (models.GridStrategy, error) { return g.reg.Get(id) }

func (g *Grid) All() map[string]models.GridStrategy { return g.reg.AllByID() }

func (g *Grid) List() []models.GridStrategy { return g.reg.All() }
