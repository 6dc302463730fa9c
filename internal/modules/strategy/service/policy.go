package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"futures_bot/internal/metrics"
	"futures_bot/pkg/logger"
)

const (
	PolicyStopOnError      = "stop_on_error"
	PolicyRetryWithBackoff = "retry_backoff"

	backoffBase = 1 * time.Second
	backoffMax  = 60 * time.Second
)

// PollPolicy решает, что делать с ошибкой опроса биржи.
// attempt: номер ошибки подряд, с 1. ok=false завершает цикл мониторинга.
type PollPolicy interface {
	Retry(attempt int) (wait time.Duration, ok bool)
}

// StopOnError: залогировать и остановить мониторинг, статус стратегии не трогать.
type StopOnError struct{}

func (StopOnError) Retry(int) (time.Duration, bool) { return 0, false }

// RetryWithBackoff: до MaxAttempts повторов, пауза 1s*2^(n-1), не больше 60s.
type RetryWithBackoff struct {
	MaxAttempts int
}

func (p RetryWithBackoff) Retry(attempt int) (time.Duration, bool) {
	if attempt > p.MaxAttempts {
		return 0, false
	}
	return Backoff(attempt - 1), true
}

// Backoff: base * 2^retry, с потолком.
func Backoff(retry int) time.Duration {
	if retry < 0 {
		return backoffBase
	}
	if retry > 30 {
		return backoffMax
	}
	d := backoffBase * time.Duration(1<<retry)
	if d > backoffMax {
		return backoffMax
	}
	return d
}

// PolicyByName: политика из конфига; неизвестное имя даёт StopOnError.
func PolicyByName(name string, retries int) PollPolicy {
	if name == PolicyRetryWithBackoff {
		return RetryWithBackoff{MaxAttempts: retries}
	}
	return StopOnError{}
}

// WaitFunc: пауза между опросами, подменяется в тестах.
type WaitFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// pollErr прогоняет ошибку через политику; true значит продолжать цикл.
func pollErr(ctx context.Context, tag, id string, p PollPolicy, wait WaitFunc, attempt int, err error) bool {
	metrics.PollErrors.WithLabelValues(strings.ToLower(tag)).Inc()

	d, ok := p.Retry(attempt)
	if !ok {
		logger.Error("[%s] %s monitoring stopped: %v", tag, id, err)
		return false
	}
	logger.Warn("[%s] %s poll error (attempt %d), retry in %v: %v", tag, id, attempt, d, err)
	return wait(ctx, d) == nil
}

func newID(prefix string) string {
	return prefix + "_" + uuid.NewString()
}
