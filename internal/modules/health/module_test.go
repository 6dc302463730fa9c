package health

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"futures_bot/internal/modules/health/service"
)

type fakeTasks []string

func (f fakeTasks) Running() []string { return f }

func TestRouter_Probes(t *testing.T) {
	state := service.NewState(fakeTasks{"OCO_1", "GRID_2"})
	r := NewRouter(state)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/livez"); rec.Code != http.StatusOK {
		t.Errorf("/livez = %d", rec.Code)
	}
	if rec := get("/readyz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before ready = %d, want 503", rec.Code)
	}

	state.SetReady(true)
	if rec := get("/readyz"); rec.Code != http.StatusOK {
		t.Errorf("/readyz after ready = %d", rec.Code)
	}

	rec := get("/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("/healthz = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"runningTasks":2`) || !strings.Contains(body, "OCO_1") {
		t.Errorf("/healthz body = %s", body)
	}

	if rec := get("/metrics"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Errorf("/metrics = %d", rec.Code)
	}
}
