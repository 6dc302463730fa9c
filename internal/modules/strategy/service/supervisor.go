package service

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"futures_bot/internal/metrics"
	"futures_bot/pkg/logger"
)

// Supervisor держит все фоновые задачи стратегий: общий корневой ctx,
// перечисление живых задач и остановка при завершении процесса.
type Supervisor struct {
	ctx    context.Context
	cancel context.CancelFunc

	wg conc.WaitGroup

	mu      sync.Mutex
	closed  bool
	running map[string]struct{}
}

func NewSupervisor() *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())
	return &Supervisor{
		ctx:     ctx,
		cancel:  cancel,
		running: make(map[string]struct{}),
	}
}

// Go запускает задачу name. После Shutdown возвращает false и ничего не запускает.
// Паника внутри задачи логируется и не валит процесс.
func (s *Supervisor) Go(name string, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		logger.Warn("[SUPERVISOR] %s not started: shutting down", name)
		return false
	}
	s.running[name] = struct{}{}
	metrics.MonitorTasks.Inc()

	s.wg.Go(func() {
		defer s.done(name)

		var pc panics.Catcher
		pc.Try(func() { fn(s.ctx) })
		if r := pc.Recovered(); r != nil {
			logger.Error("[SUPERVISOR] task %s panicked: %v\n%s", name, r.Value, r.Stack)
		}
	})
	return true
}

// Closed: true после Shutdown. Проверяется до выставления ордеров.
func (s *Supervisor) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Supervisor) done(name string) {
	s.mu.Lock()
	delete(s.running, name)
	s.mu.Unlock()
	metrics.MonitorTasks.Dec()
}

// Running: имена живых задач.
func (s *Supervisor) Running() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.running))
	for name := range s.running {
		out = append(out, name)
	}
	return out
}

// Shutdown отменяет корневой ctx и ждёт задачи, но не дольше ctx.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("[SUPERVISOR] all tasks stopped")
		return nil
	case <-ctx.Done():
		logger.Warn("[SUPERVISOR] shutdown timeout, still running: %v", s.Running())
		return ctx.Err()
	}
}
