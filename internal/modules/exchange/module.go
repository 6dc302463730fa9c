package exchange

import (
	"go.uber.org/fx"

	"futures_bot/internal/exchange"
	"futures_bot/internal/modules/config"
	"futures_bot/pkg/logger"
)

func NewClient(cfg *config.Config) (*exchange.Client, error) {
	if err := cfg.RequireCredentials(); err != nil {
		return nil, err
	}
	c := exchange.NewClient(exchange.Config{
		APIKey:     cfg.Exchange.APIKey,
		APISecret:  cfg.Exchange.APISecret,
		Testnet:    cfg.Exchange.Testnet,
		BaseURL:    cfg.Exchange.BaseURL,
		WSURL:      cfg.Exchange.WSURL,
		Timeout:    cfg.Exchange.Timeout,
		RecvWindow: cfg.Exchange.RecvWindow,
	})
	if cfg.Exchange.Testnet {
		logger.Info("[EXCHANGE] using TESTNET")
	} else {
		logger.Warn("[EXCHANGE] using MAINNET - real funds")
	}
	return c, nil
}

func asGateway(c *exchange.Client) exchange.Gateway { return c }

func newFilterCache(c *exchange.Client) *exchange.FilterCache { return exchange.NewFilterCache(c) }

// Module: клиент биржи, он же Gateway для плейсеров и стратегий, и кеш фильтров.
func Module() fx.Option {
	return fx.Module("exchange",
		fx.Provide(
			NewClient,
			asGateway,
			newFilterCache,
		),
	)
}
