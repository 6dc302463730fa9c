package strategy

import (
	"context"

	"go.uber.org/fx"

	"futures_bot/internal/exchange"
	"futures_bot/internal/modules/config"
	placer "futures_bot/internal/modules/placer/service"
	"futures_bot/internal/modules/strategy/service"
	"futures_bot/internal/notify"
	"futures_bot/pkg/logger"
)

func NewConfig(cfg *config.Config) service.Config {
	return service.Config{
		PollInterval: cfg.Strategy.PollInterval,
		Policy:       service.PolicyByName(cfg.Strategy.PollPolicy, cfg.Strategy.PollRetries),
	}
}

func newOCO(limit *placer.Limit, gw exchange.Gateway, sup *service.Supervisor, cfg service.Config, n notify.Notifier) *service.OCO {
	return service.NewOCO(limit, gw, sup, cfg, n)
}

func newTWAP(market *placer.Market, sup *service.Supervisor, cfg service.Config, n notify.Notifier) *service.TWAP {
	return service.NewTWAP(market, sup, cfg, n)
}

func newGrid(limit *placer.Limit, gw exchange.Gateway, sup *service.Supervisor, cfg service.Config, n notify.Notifier) *service.Grid {
	return service.NewGrid(limit, gw, sup, cfg, n)
}

// Module: координаторы OCO/TWAP/Grid и общий супервизор задач.
func Module() fx.Option {
	return fx.Module("strategy",
		fx.Provide(
			NewConfig,
			service.NewSupervisor,
			newOCO,
			newTWAP,
			newGrid,
		),

		fx.Invoke(func(lc fx.Lifecycle, sup *service.Supervisor, cfg *config.Config) {
			lc.Append(fx.Hook{
				OnStop: func(ctx context.Context) error {
					logger.Info("[STRAT] stopping monitoring tasks: %v", sup.Running())
					if cfg.Strategy.ShutdownWait > 0 {
						var cancel context.CancelFunc
						ctx, cancel = context.WithTimeout(ctx, cfg.Strategy.ShutdownWait)
						defer cancel()
					}
					return sup.Shutdown(ctx)
				},
			})
		}),
	)
}
