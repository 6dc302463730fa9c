package api

import (
	"github.com/gorilla/mux"
	"go.uber.org/fx"

	"futures_bot/internal/exchange"
	"futures_bot/internal/modules/api/service"
	placer "futures_bot/internal/modules/placer/service"
	strategy "futures_bot/internal/modules/strategy/service"
)

func NewHandler(
	market *placer.Market,
	limit *placer.Limit,
	oco *strategy.OCO,
	twap *strategy.TWAP,
	grid *strategy.Grid,
	client *exchange.Client,
	filters *exchange.FilterCache,
) *service.Handler {
	return service.NewHandler(service.Deps{
		Market:  market,
		Limit:   limit,
		OCO:     oco,
		TWAP:    twap,
		Grid:    grid,
		Account: client,
		Filters: filters,
	})
}

// Module: HTTP-ручки ордеров и стратегий на общем роутере из health.
func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(NewHandler),
		fx.Invoke(func(r *mux.Router, h *service.Handler) {
			r.Use(service.Recovery, service.Logging)
			h.Register(r)
		}),
	)
}
