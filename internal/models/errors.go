package models

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrNotFound: стратегии с таким id нет в реестре.
var ErrNotFound = errors.New("strategy not found")

// ErrShuttingDown: сервис останавливается, новые стратегии не запускаются.
var ErrShuttingDown = errors.New("shutting down")

// ValidationError: параметры не прошли проверку, в сеть ничего не ушло.
type ValidationError struct {
	Msg string
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// GatewayError: ошибка сети или биржи при размещении, отмене или запросе статуса.
type GatewayError struct {
	Op         string
	HTTPStatus int
	Code       int
	Msg        string
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("%s: exchange error code=%d msg=%s", e.Op, e.Code, e.Msg)
	case e.HTTPStatus != 0:
		return fmt.Sprintf("%s: http %d: %s", e.Op, e.HTTPStatus, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": " + e.Msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

// PartialFailureError: лимитная нога OCO выставлена, стоп-нога упала.
// Лимитная нога остаётся живой на бирже, снимать её должен вызывающий.
type PartialFailureError struct {
	Placed OrderResult
	Err    error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("oco partial failure: limit order %d is live and unregistered: %v", e.Placed.OrderID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

func IsGateway(err error) bool {
	var g *GatewayError
	return errors.As(err, &g)
}

func IsPartialFailure(err error) bool {
	var p *PartialFailureError
	return errors.As(err, &p)
}
