package service

import (
	"context"
	"net/http"

	"futures_bot/internal/models"
	"futures_bot/pkg/precision"
)

type orderRequest struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`
	Price    float64 `json:"price,omitempty"`
}

func (req orderRequest) parse() (string, models.Side, error) {
	symbol, err := normSymbol(req.Symbol)
	if err != nil {
		return "", "", err
	}
	side, err := models.ParseSide(req.Side)
	if err != nil {
		return "", "", err
	}
	if req.Quantity <= 0 {
		return "", "", models.NewValidationError("quantity must be > 0, got %v", req.Quantity)
	}
	return symbol, side, nil
}

// checkFilters: количество и цена против LOT_SIZE/PRICE_FILTER символа.
func (h *Handler) checkFilters(ctx context.Context, symbol string, qty float64, price *float64) error {
	if h.filters == nil {
		return nil
	}
	f, err := h.filters.Get(ctx, symbol)
	if err != nil {
		return err
	}
	return precision.FromFilters(f).Check(qty, price)
}

// PlaceMarket POST /orders/market {"symbol","side","quantity"}
func (h *Handler) PlaceMarket(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	symbol, side, err := req.parse()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.checkFilters(r.Context(), symbol, req.Quantity, nil); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.market.Place(r.Context(), symbol, side, req.Quantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}

// PlaceLimit POST /orders/limit {"symbol","side","quantity","price"}
func (h *Handler) PlaceLimit(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	symbol, side, err := req.parse()
	if err != nil {
		respondError(w, r, err)
		return
	}
	if req.Price <= 0 {
		respondError(w, r, models.NewValidationError("price must be > 0, got %v", req.Price))
		return
	}
	if err := h.checkFilters(r.Context(), symbol, req.Quantity, &req.Price); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := h.limit.Place(r.Context(), symbol, side, req.Quantity, req.Price)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, res)
}
