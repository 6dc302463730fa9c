package service

import (
	"context"
	"errors"
	"testing"

	"futures_bot/internal/models"
)

func newTestOCO(limit *fakeLimit, q *fakeQuerier, policy PollPolicy) (*OCO, *Supervisor, *recordWait) {
	sup := NewSupervisor()
	w := &recordWait{}
	o := NewOCO(limit, q, sup, Config{Policy: policy, Wait: w.Wait}, &captureNotifier{})
	return o, sup, w
}

func TestValidateOCOPrices(t *testing.T) {
	tests := []struct {
		name    string
		side    models.Side
		limit   float64
		trigger float64
		wantErr bool
	}{
		{"sell bracket", models.SideSell, 105, 95, false},
		{"sell limit below trigger", models.SideSell, 104, 105, true},
		{"sell equal prices", models.SideSell, 100, 100, true},
		{"buy bracket", models.SideBuy, 95, 105, false},
		{"buy limit above trigger", models.SideBuy, 106, 105, true},
		{"buy equal prices", models.SideBuy, 100, 100, true},
		{"bad side", models.Side("HOLD"), 100, 90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOCOPrices(tt.side, tt.limit, tt.trigger)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateOCOPrices() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !models.IsValidation(err) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestOCO_RejectsBadOrderingBeforeAnyOrder(t *testing.T) {
	limit := newFakeLimit()
	o, sup, _ := newTestOCO(limit, newFakeQuerier(100), nil)
	defer shutdown(t, sup)

	_, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 104, 105, 104)
	if !models.IsValidation(err) {
		t.Fatalf("Place() error = %v, want ValidationError", err)
	}
	if limit.placedCount() != 0 || len(limit.stops) != 0 {
		t.Error("no order must be placed on validation failure")
	}
	if len(o.All()) != 0 {
		t.Error("nothing must be registered")
	}
}

func TestOCO_LimitFillCancelsStop(t *testing.T) {
	limit := newFakeLimit()
	q := newFakeQuerier(100)
	o, sup, _ := newTestOCO(limit, q, nil)
	defer shutdown(t, sup)

	id, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 0.5, 110, 95, 94)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	pair, err := o.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if pair.Status != models.OCOActive {
		t.Fatalf("status = %s, want ACTIVE", pair.Status)
	}

	eventually(t, "a few polls", func() bool { return q.callCount() >= 4 })
	q.setStatus(pair.LimitOrder.OrderID, models.OrderStatusFilled)

	eventually(t, "LIMIT_FILLED", func() bool {
		p, _ := o.Get(id)
		return p.Status == models.OCOLimitFilled
	})
	eventually(t, "monitor exit", func() bool { return len(sup.Running()) == 0 })

	canceled := limit.canceledIDs()
	if len(canceled) != 1 || canceled[0] != pair.StopOrder.OrderID {
		t.Errorf("canceled = %v, want exactly [%d]", canceled, pair.StopOrder.OrderID)
	}
}

func TestOCO_StopFillCancelsLimit(t *testing.T) {
	limit := newFakeLimit()
	q := newFakeQuerier(100)
	o, sup, _ := newTestOCO(limit, q, nil)
	defer shutdown(t, sup)

	id, err := o.Place(context.Background(), "ETHUSDT", models.SideBuy, 2, 90, 105, 106)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}
	pair, _ := o.Get(id)
	q.setStatus(pair.StopOrder.OrderID, models.OrderStatusFilled)

	eventually(t, "STOP_FILLED", func() bool {
		p, _ := o.Get(id)
		return p.Status == models.OCOStopFilled
	})
	eventually(t, "monitor exit", func() bool { return len(sup.Running()) == 0 })

	canceled := limit.canceledIDs()
	if len(canceled) != 1 || canceled[0] != pair.LimitOrder.OrderID {
		t.Errorf("canceled = %v, want exactly [%d]", canceled, pair.LimitOrder.OrderID)
	}
}

func TestOCO_BothFilledLimitWins(t *testing.T) {
	limit := newFakeLimit()
	q := newFakeQuerier(100)
	// до регистрации пары id ещё неизвестны: лимитка получит 101, стоп 102
	q.setStatus(101, models.OrderStatusFilled)
	q.setStatus(102, models.OrderStatusFilled)
	o, sup, _ := newTestOCO(limit, q, nil)
	defer shutdown(t, sup)

	id, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	eventually(t, "terminal", func() bool {
		p, _ := o.Get(id)
		return p.Status.Terminal()
	})
	p, _ := o.Get(id)
	if p.Status != models.OCOLimitFilled {
		t.Errorf("status = %s, want LIMIT_FILLED", p.Status)
	}
	eventually(t, "monitor exit", func() bool { return len(sup.Running()) == 0 })
	if got := limit.canceledIDs(); len(got) != 1 {
		t.Errorf("cancel called %d times, want 1", len(got))
	}
}

func TestOCO_StopLegFailureIsPartial(t *testing.T) {
	limit := newFakeLimit()
	limit.stopErr = errGateway
	o, sup, _ := newTestOCO(limit, newFakeQuerier(100), nil)
	defer shutdown(t, sup)

	_, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89)
	if !models.IsPartialFailure(err) {
		t.Fatalf("Place() error = %v, want PartialFailureError", err)
	}

	var pf *models.PartialFailureError
	if !errors.As(err, &pf) || pf.Placed.OrderID != 101 {
		t.Errorf("partial failure must carry the live limit leg, got %+v", pf)
	}
	if len(o.All()) != 0 {
		t.Error("pair must not be registered")
	}
	if len(limit.canceledIDs()) != 0 {
		t.Error("limit leg must be left live")
	}
}

func TestOCO_PlaceAfterShutdown(t *testing.T) {
	limit := newFakeLimit()
	o, sup, _ := newTestOCO(limit, newFakeQuerier(100), nil)
	shutdown(t, sup)

	_, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89)
	if !errors.Is(err, models.ErrShuttingDown) {
		t.Fatalf("Place() error = %v, want ErrShuttingDown", err)
	}
	if limit.placedCount() != 0 || len(limit.stops) != 0 {
		t.Error("no order must be placed after shutdown")
	}
	if len(o.List()) != 0 {
		t.Error("pair must not be registered")
	}
}

func TestOCO_ShutdownDuringPlacementCancelsLegs(t *testing.T) {
	limit := newFakeLimit()
	o, sup, _ := newTestOCO(limit, newFakeQuerier(100), nil)
	// остановка приходит между выставлением ног и запуском мониторинга
	limit.onStop = func() { shutdown(t, sup) }

	_, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89)
	if !errors.Is(err, models.ErrShuttingDown) {
		t.Fatalf("Place() error = %v, want ErrShuttingDown", err)
	}
	got := limit.canceledIDs()
	if len(got) != 2 || got[0] != 101 || got[1] != 102 {
		t.Errorf("cancelled = %v, want both legs [101 102]", got)
	}
	if len(o.List()) != 0 {
		t.Error("unmonitored pair must not stay registered")
	}
}

func TestOCO_PollErrorStopsMonitoringLeavesActive(t *testing.T) {
	limit := newFakeLimit()
	q := newFakeQuerier(100)
	q.err = errGateway
	o, sup, _ := newTestOCO(limit, q, StopOnError{})
	defer shutdown(t, sup)

	id, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	eventually(t, "monitor exit", func() bool { return len(sup.Running()) == 0 })
	p, _ := o.Get(id)
	if p.Status != models.OCOActive {
		t.Errorf("status = %s, want ACTIVE", p.Status)
	}
	if q.callCount() != 1 {
		t.Errorf("GetOrder called %d times, want 1", q.callCount())
	}
}

func TestOCO_RetryPolicyRecovers(t *testing.T) {
	limit := newFakeLimit()
	q := newFakeQuerier(100)
	q.err = errGateway
	q.errCalls = 2
	q.setStatus(102, models.OrderStatusFilled)
	o, sup, w := newTestOCO(limit, q, RetryWithBackoff{MaxAttempts: 3})
	defer shutdown(t, sup)

	id, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89)
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	eventually(t, "STOP_FILLED", func() bool {
		p, _ := o.Get(id)
		return p.Status == models.OCOStopFilled
	})

	waits := w.all()
	if len(waits) < 2 || waits[0] != Backoff(0) || waits[1] != Backoff(1) {
		t.Errorf("waits = %v, want backoff 1s then 2s", waits)
	}
}
