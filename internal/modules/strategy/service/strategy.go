package service

import (
	"context"
	"time"

	"futures_bot/internal/metrics"
	"futures_bot/internal/models"
	"futures_bot/internal/notify"
)

const defaultPollInterval = 5 * time.Second

// MarketPlacer: то, что нужно TWAP от рыночного плейсера.
type MarketPlacer interface {
	Place(ctx context.Context, symbol string, side models.Side, qty float64) (*models.OrderResult, error)
}

// LimitPlacer: то, что нужно OCO и Grid от лимитного плейсера.
type LimitPlacer interface {
	Place(ctx context.Context, symbol string, side models.Side, qty, price float64) (*models.OrderResult, error)
	PlaceStop(ctx context.Context, symbol string, side models.Side, qty, trigger, limit float64) (*models.OrderResult, error)
	Cancel(ctx context.Context, symbol string, orderID int64) bool
}

// OrderQuerier: опрос биржи из циклов мониторинга.
type OrderQuerier interface {
	GetOrder(ctx context.Context, symbol string, orderID int64) (*models.ExchangeOrder, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
}

type Config struct {
	PollInterval time.Duration
	Policy       PollPolicy
	// Wait: пауза между опросами и срезами, nil означает обычный таймер.
	Wait WaitFunc
}

func (c Config) interval() time.Duration {
	if c.PollInterval <= 0 {
		return defaultPollInterval
	}
	return c.PollInterval
}

func (c Config) policy() PollPolicy {
	if c.Policy == nil {
		return StopOnError{}
	}
	return c.Policy
}

func (c Config) wait() WaitFunc {
	if c.Wait == nil {
		return sleepCtx
	}
	return c.Wait
}

func transition(kind models.StrategyType, status string) {
	metrics.StrategyTransitions.WithLabelValues(string(kind), status).Inc()
}

func notifierOr(n notify.Notifier) notify.Notifier {
	if n == nil {
		return notify.NewLog()
	}
	return n
}
