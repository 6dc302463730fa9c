package service

import (
	"net/http"

	"github.com/gorilla/mux"

	"futures_bot/internal/models"
)

type priceResponse struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

func (h *Handler) Price(w http.ResponseWriter, r *http.Request) {
	symbol, err := normSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	p, err := h.account.CurrentPrice(r.Context(), symbol)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, priceResponse{Symbol: symbol, Price: p})
}

func (h *Handler) Symbol(w http.ResponseWriter, r *http.Request) {
	symbol, err := normSymbol(mux.Vars(r)["symbol"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	f, err := h.filters.Get(r.Context(), symbol)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, f)
}

// Balance: только активы с ненулевым балансом.
func (h *Handler) Balance(w http.ResponseWriter, r *http.Request) {
	all, err := h.account.Balances(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	out := make([]models.Balance, 0, len(all))
	for _, b := range all {
		if b.Wallet != 0 || b.Available != 0 {
			out = append(out, b)
		}
	}
	respondJSON(w, http.StatusOK, out)
}
