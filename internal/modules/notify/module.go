package notify

import (
	"context"

	"go.uber.org/fx"

	"futures_bot/internal/modules/config"
	strategy "futures_bot/internal/modules/strategy/service"
	"futures_bot/internal/notify"
	"futures_bot/pkg/logger"
)

// NewTelegram: nil без токена, тогда работает notify.Log.
func NewTelegram(cfg *config.Config) *notify.Telegram {
	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == 0 {
		logger.Info("[NOTIFY] telegram not configured, notifications go to log")
		return nil
	}
	t, err := notify.NewTelegram(cfg.Telegram.Token, cfg.Telegram.ChatID)
	if err != nil {
		logger.Error("[NOTIFY] telegram init error, falling back to log: %v", err)
		return nil
	}
	return t
}

func NewNotifier(t *notify.Telegram) notify.Notifier {
	if t == nil {
		return notify.NewLog()
	}
	return t
}

func Module() fx.Option {
	return fx.Module("notify",
		fx.Provide(
			NewTelegram,
			NewNotifier,
		),

		fx.Invoke(func(lc fx.Lifecycle, t *notify.Telegram, o *strategy.OCO, tw *strategy.TWAP, g *strategy.Grid) {
			if t == nil {
				return
			}
			t.SetStatus(func(context.Context) string { return strategy.Summary(o, tw, g) })

			// OnStart ctx живёт только на время старта
			ctx, cancel := context.WithCancel(context.Background())
			lc.Append(fx.Hook{
				OnStart: func(context.Context) error {
					return t.Start(ctx)
				},
				OnStop: func(context.Context) error {
					cancel()
					t.Stop()
					return nil
				},
			})
		}),
	)
}
