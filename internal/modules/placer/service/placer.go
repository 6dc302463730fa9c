package service

import (
	"context"
	"time"

	"futures_bot/internal/models"
	"futures_bot/pkg/logger"
	"futures_bot/pkg/precision"
)

const defaultSettleDelay = 500 * time.Millisecond

type Config struct {
	// SettleDelay: пауза перед повторным запросом статуса, чтобы биржа успела исполнить ордер.
	SettleDelay time.Duration
}

func (c Config) settle() time.Duration {
	if c.SettleDelay <= 0 {
		return defaultSettleDelay
	}
	return c.SettleDelay
}

// RulesFunc отдаёт правила округления символа. Сама функция округления: precision.Rules.
type RulesFunc func(ctx context.Context, symbol string) (precision.Rules, error)

// symbolRules: без источника или при ошибке нулевые Rules, то есть значения уходят как есть.
func symbolRules(ctx context.Context, rules RulesFunc, tag, symbol string) precision.Rules {
	if rules == nil {
		return precision.Rules{}
	}
	r, err := rules(ctx, symbol)
	if err != nil {
		logger.Warn("[%s] %s precision unavailable, sending raw values: %v", tag, symbol, err)
		return precision.Rules{}
	}
	return r
}

// roundQty: количество вниз к stepSize. Меньше одного шага: отказ до запроса к бирже.
func roundQty(r precision.Rules, symbol string, qty float64) (float64, error) {
	q := r.Qty(qty)
	if q <= 0 {
		return 0, models.NewValidationError("quantity %v is below step size %v for %s", qty, r.StepSize, symbol)
	}
	return q, nil
}

// Journal: куда пишем каждый успешно выставленный ордер.
type Journal interface {
	Record(ctx context.Context, r models.OrderResult)
}

type noopJournal struct{}

func (noopJournal) Record(context.Context, models.OrderResult) {}

// sleep: пауза, которую можно прервать через ctx.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func validate(symbol string, side models.Side, qty float64) error {
	return models.OrderIntent{Symbol: symbol, Side: side, Quantity: qty}.Validate()
}
