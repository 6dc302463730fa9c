package service

import (
	"context"
	"testing"
	"time"
)

func TestSupervisor_ShutdownCancelsTasks(t *testing.T) {
	sup := NewSupervisor()
	started := make(chan struct{}, 2)

	for _, name := range []string{"a", "b"} {
		ok := sup.Go(name, func(ctx context.Context) {
			started <- struct{}{}
			<-ctx.Done()
		})
		if !ok {
			t.Fatalf("Go(%s) = false", name)
		}
	}
	<-started
	<-started

	if got := len(sup.Running()); got != 2 {
		t.Errorf("Running() = %d, want 2", got)
	}
	if sup.Closed() {
		t.Error("Closed() = true before Shutdown")
	}

	shutdown(t, sup)

	if !sup.Closed() {
		t.Error("Closed() = false after Shutdown")
	}

	if got := len(sup.Running()); got != 0 {
		t.Errorf("Running() after shutdown = %d", got)
	}
	if sup.Go("late", func(context.Context) {}) {
		t.Error("Go() after Shutdown must be false")
	}
}

func TestSupervisor_PanicIsRecovered(t *testing.T) {
	sup := NewSupervisor()
	sup.Go("boom", func(context.Context) { panic("boom") })

	eventually(t, "task exit", func() bool { return len(sup.Running()) == 0 })
	shutdown(t, sup)
}

func TestSupervisor_ShutdownTimeout(t *testing.T) {
	sup := NewSupervisor()
	release := make(chan struct{})
	sup.Go("stuck", func(context.Context) { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := sup.Shutdown(ctx); err == nil {
		t.Error("Shutdown() must report timeout for a stuck task")
	}
	close(release)
	eventually(t, "stuck task exit", func() bool { return len(sup.Running()) == 0 })
}

func TestBackoffAndPolicies(t *testing.T) {
	tests := []struct {
		retry int
		want  time.Duration
	}{
		{-1, time.Second},
		{0, time.Second},
		{1, 2 * time.Second},
		{5, 32 * time.Second},
		{6, 60 * time.Second},
		{40, 60 * time.Second},
	}
	for _, tt := range tests {
		if got := Backoff(tt.retry); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.retry, got, tt.want)
		}
	}

	if _, ok := (StopOnError{}).Retry(1); ok {
		t.Error("StopOnError must never retry")
	}
	p := RetryWithBackoff{MaxAttempts: 2}
	if d, ok := p.Retry(1); !ok || d != time.Second {
		t.Errorf("Retry(1) = %v, %v", d, ok)
	}
	if _, ok := p.Retry(3); ok {
		t.Error("Retry past MaxAttempts must give up")
	}

	if _, ok := PolicyByName("stop_on_error", 3).(StopOnError); !ok {
		t.Error("stop_on_error must map to StopOnError")
	}
	if rp, ok := PolicyByName("retry_backoff", 4).(RetryWithBackoff); !ok || rp.MaxAttempts != 4 {
		t.Error("retry_backoff must map to RetryWithBackoff{4}")
	}
}
