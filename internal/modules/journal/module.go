package journal

import (
	"context"

	"go.uber.org/fx"

	"futures_bot/internal/modules/config"
	journal "futures_bot/internal/modules/journal/service"
	placer "futures_bot/internal/modules/placer/service"
	"futures_bot/pkg/db"
	"futures_bot/pkg/logger"
)

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg *config.Config
}

// NewJournal: без DATABASE_DSN ордера только логируются.
func NewJournal(p Params) (placer.Journal, error) {
	if p.Cfg.DB == "" {
		logger.Info("[JOURNAL] DATABASE_DSN not set, journal goes to log only")
		return journal.Log{}, nil
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, db.PoolConfig{DSN: p.Cfg.DB})
	if err != nil {
		return nil, err
	}
	tm := db.NewPgTxManager(pool)

	j := journal.NewJournal(tm)
	if err := j.Migrate(ctx); err != nil {
		tm.Close()
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			tm.Close()
			return nil
		},
	})
	logger.Info("[JOURNAL] postgres journal ready")
	return j, nil
}

func Module() fx.Option {
	return fx.Module("journal",
		fx.Provide(
			NewJournal,
		),
	)
}
