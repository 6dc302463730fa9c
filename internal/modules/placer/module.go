package placer

import (
	"go.uber.org/fx"

	"futures_bot/internal/exchange"
	"futures_bot/internal/modules/config"
	"futures_bot/internal/modules/placer/service"
)

func NewConfig(cfg *config.Config) service.Config {
	return service.Config{SettleDelay: cfg.Strategy.SettleDelay}
}

func newMarket(gw exchange.Gateway, cfg service.Config, fc *exchange.FilterCache, j service.Journal) *service.Market {
	return service.NewMarket(gw, cfg, fc.Rules, j)
}

func newLimit(gw exchange.Gateway, cfg service.Config, fc *exchange.FilterCache, j service.Journal) *service.Limit {
	return service.NewLimit(gw, cfg, fc.Rules, j)
}

// Module: рыночный и лимитный плейсеры. Journal приходит из модуля journal.
func Module() fx.Option {
	return fx.Module("placer",
		fx.Provide(
			NewConfig,
			newMarket,
			newLimit,
		),
	)
}
