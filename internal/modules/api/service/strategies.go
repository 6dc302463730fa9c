package service

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"futures_bot/internal/models"
)

type idResponse struct {
	ID string `json:"id"`
}

type okResponse struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

// ===== OCO =====

type ocoRequest struct {
	Symbol         string  `json:"symbol"`
	Side           string  `json:"side"`
	Quantity       float64 `json:"quantity"`
	LimitPrice     float64 `json:"limit_price"`
	StopPrice      float64 `json:"stop_price"`
	StopLimitPrice float64 `json:"stop_limit_price"`
}

// PlaceOCO POST /oco
func (h *Handler) PlaceOCO(w http.ResponseWriter, r *http.Request) {
	var req ocoRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	symbol, err := normSymbol(req.Symbol)
	if err != nil {
		respondError(w, r, err)
		return
	}
	side, err := models.ParseSide(req.Side)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id, err := h.oco.Place(r.Context(), symbol, side, req.Quantity, req.LimitPrice, req.StopPrice, req.StopLimitPrice)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *Handler) ListOCO(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.oco.List())
}

func (h *Handler) GetOCO(w http.ResponseWriter, r *http.Request) {
	p, err := h.oco.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

// ===== TWAP =====

// duration/interval в формате time.ParseDuration ("30m", "1m").
type twapRequest struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"`
	TotalQuantity float64 `json:"total_quantity"`
	Duration      string  `json:"duration"`
	Interval      string  `json:"interval"`
}

// StartTWAP POST /twap
func (h *Handler) StartTWAP(w http.ResponseWriter, r *http.Request) {
	var req twapRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	symbol, err := normSymbol(req.Symbol)
	if err != nil {
		respondError(w, r, err)
		return
	}
	side, err := models.ParseSide(req.Side)
	if err != nil {
		respondError(w, r, err)
		return
	}
	duration, err := time.ParseDuration(req.Duration)
	if err != nil {
		respondError(w, r, models.NewValidationError("duration: %v", err))
		return
	}
	interval := time.Minute
	if req.Interval != "" {
		if interval, err = time.ParseDuration(req.Interval); err != nil {
			respondError(w, r, models.NewValidationError("interval: %v", err))
			return
		}
	}

	// задание живёт дольше запроса
	id, err := h.twap.Start(r.Context(), symbol, side, req.TotalQuantity, duration, interval)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *Handler) ListTWAP(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.twap.List())
}

func (h *Handler) GetTWAP(w http.ResponseWriter, r *http.Request) {
	j, err := h.twap.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, j)
}

// CancelTWAP DELETE /twap/{id}: 404 если нет такого, 409 если уже не RUNNING.
func (h *Handler) CancelTWAP(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.twap.Get(id); err != nil {
		respondError(w, r, err)
		return
	}
	if !h.twap.Cancel(id) {
		respondJSON(w, http.StatusConflict, okResponse{ID: id, OK: false})
		return
	}
	respondJSON(w, http.StatusOK, okResponse{ID: id, OK: true})
}

// ===== Grid =====

type gridRequest struct {
	Symbol        string  `json:"symbol"`
	LowerPrice    float64 `json:"lower_price"`
	UpperPrice    float64 `json:"upper_price"`
	Levels        int     `json:"levels"`
	TotalQuantity float64 `json:"total_quantity"`
}

// CreateGrid POST /grid: только создаёт, старт отдельным запросом.
func (h *Handler) CreateGrid(w http.ResponseWriter, r *http.Request) {
	var req gridRequest
	if err := decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	symbol, err := normSymbol(req.Symbol)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id, err := h.grid.Create(symbol, req.LowerPrice, req.UpperPrice, req.Levels, req.TotalQuantity)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h *Handler) StartGrid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.grid.Get(id); err != nil {
		respondError(w, r, err)
		return
	}
	ok, err := h.grid.Start(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !ok {
		respondJSON(w, http.StatusConflict, okResponse{ID: id, OK: false})
		return
	}
	respondJSON(w, http.StatusOK, okResponse{ID: id, OK: true})
}

func (h *Handler) StopGrid(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !h.grid.Stop(r.Context(), id) {
		respondError(w, r, models.ErrNotFound)
		return
	}
	respondJSON(w, http.StatusOK, okResponse{ID: id, OK: true})
}

func (h *Handler) ListGrid(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.grid.List())
}

func (h *Handler) GetGrid(w http.ResponseWriter, r *http.Request) {
	g, err := h.grid.Get(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, g)
}
