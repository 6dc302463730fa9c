package service

import (
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"futures_bot/internal/models"
	"futures_bot/pkg/logger"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	// Placed: живая лимитка при частичном провале OCO
	Placed *models.OrderResult `json:"placed,omitempty"`
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"failed to marshal response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// respondError: ValidationError -> 400, нет стратегии -> 404, остановка сервиса -> 503,
// биржа -> 502, остальное -> 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: err.Error()}
	code := http.StatusInternalServerError

	var pf *models.PartialFailureError
	switch {
	case models.IsValidation(err):
		code = http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, models.ErrShuttingDown):
		code = http.StatusServiceUnavailable
	case errors.As(err, &pf):
		code = http.StatusBadGateway
		placed := pf.Placed
		resp.Placed = &placed
	case models.IsGateway(err):
		code = http.StatusBadGateway
	}

	if code >= http.StatusInternalServerError {
		logger.Error("[API] %s %s: %v", r.Method, r.URL.Path, err)
	} else {
		logger.Warn("[API] %s %s: %v", r.Method, r.URL.Path, err)
	}
	respondJSON(w, code, resp)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return models.NewValidationError("read body: %v", err)
	}
	if err := sonic.Unmarshal(body, dst); err != nil {
		return models.NewValidationError("invalid request body: %v", err)
	}
	return nil
}

func normSymbol(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", models.NewValidationError("symbol is required")
	}
	return s, nil
}
