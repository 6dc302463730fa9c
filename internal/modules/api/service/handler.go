package service

import (
	"context"
	"time"

	"github.com/gorilla/mux"

	"futures_bot/internal/models"
)

type MarketPlacer interface {
	Place(ctx context.Context, symbol string, side models.Side, qty float64) (*models.OrderResult, error)
}

type LimitPlacer interface {
	Place(ctx context.Context, symbol string, side models.Side, qty, price float64) (*models.OrderResult, error)
}

type OCOService interface {
	Place(ctx context.Context, symbol string, side models.Side, qty, limitPrice, stopTrigger, stopLimit float64) (string, error)
	Get(id string) (models.OCOPair, error)
	List() []models.OCOPair
}

type TWAPService interface {
	Start(ctx context.Context, symbol string, side models.Side, total float64, duration, interval time.Duration) (string, error)
	Cancel(id string) bool
	Get(id string) (models.TWAPJob, error)
	List() []models.TWAPJob
}

type GridService interface {
	Create(symbol string, lower, upper float64, levels int, total float64) (string, error)
	Start(ctx context.Context, id string) (bool, error)
	Stop(ctx context.Context, id string) bool
	Get(id string) (models.GridStrategy, error)
	List() []models.GridStrategy
}

// Account: чтение рынка и счёта напрямую у биржи.
type Account interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	Balances(ctx context.Context) ([]models.Balance, error)
}

// Filters: фильтры символа (из кеша).
type Filters interface {
	Get(ctx context.Context, symbol string) (models.SymbolFilters, error)
}

// Handler: HTTP-обёртка над плейсерами и координаторами.
type Handler struct {
	market  MarketPlacer
	limit   LimitPlacer
	oco     OCOService
	twap    TWAPService
	grid    GridService
	account Account
	filters Filters
}

type Deps struct {
	Market  MarketPlacer
	Limit   LimitPlacer
	OCO     OCOService
	TWAP    TWAPService
	Grid    GridService
	Account Account
	Filters Filters
}

func NewHandler(d Deps) *Handler {
	return &Handler{
		market:  d.Market,
		limit:   d.Limit,
		oco:     d.OCO,
		twap:    d.TWAP,
		grid:    d.Grid,
		account: d.Account,
		filters: d.Filters,
	}
}

// Register вешает маршруты на общий роутер.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/orders/market", h.PlaceMarket).Methods("POST")
	r.HandleFunc("/orders/limit", h.PlaceLimit).Methods("POST")

	r.HandleFunc("/oco", h.PlaceOCO).Methods("POST")
	r.HandleFunc("/oco", h.ListOCO).Methods("GET")
	r.HandleFunc("/oco/{id}", h.GetOCO).Methods("GET")

	r.HandleFunc("/twap", h.StartTWAP).Methods("POST")
	r.HandleFunc("/twap", h.ListTWAP).Methods("GET")
	r.HandleFunc("/twap/{id}", h.GetTWAP).Methods("GET")
	r.HandleFunc("/twap/{id}", h.CancelTWAP).Methods("DELETE")

	r.HandleFunc("/grid", h.CreateGrid).Methods("POST")
	r.HandleFunc("/grid", h.ListGrid).Methods("GET")
	r.HandleFunc("/grid/{id}", h.GetGrid).Methods("GET")
	r.HandleFunc("/grid/{id}/start", h.StartGrid).Methods("POST")
	r.HandleFunc("/grid/{id}/stop", h.StopGrid).Methods("POST")

	r.HandleFunc("/price/{symbol}", h.Price).Methods("GET")
	r.HandleFunc("/symbols/{symbol}", h.Symbol).Methods("GET")
	r.HandleFunc("/balance", h.Balance).Methods("GET")
}
