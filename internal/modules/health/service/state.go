package service

import (
	"sync/atomic"
	"time"
)

// TaskLister: кто знает про живые фоновые задачи (супервизор стратегий).
type TaskLister interface {
	Running() []string
}

type State struct {
	ready     atomic.Bool
	startedAt time.Time
	tasks     TaskLister

	lastPriceUnix atomic.Int64 // unix seconds последнего успешного ответа биржи
}

func NewState(tasks TaskLister) *State {
	s := &State{startedAt: time.Now(), tasks: tasks}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) TouchExchange(t time.Time) { s.lastPriceUnix.Store(t.Unix()) }
func (s *State) LastExchange() time.Time {
	u := s.lastPriceUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

// Tasks: имена задач мониторинга; nil-lister даёт пустой список.
func (s *State) Tasks() []string {
	if s.tasks == nil {
		return nil
	}
	return s.tasks.Running()
}
