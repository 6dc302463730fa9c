package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"futures_bot/internal/models"
)

func TestSummary(t *testing.T) {
	sup := NewSupervisor()
	defer shutdown(t, sup)
	w := &recordWait{}
	cfg := Config{Wait: w.Wait}

	o := NewOCO(newFakeLimit(), newFakeQuerier(100), sup, cfg, nil)
	tw := NewTWAP(&fakeMarket{}, sup, cfg, nil)
	g := NewGrid(newFakeLimit(), newFakeQuerier(100), sup, cfg, nil)

	if _, err := o.Place(context.Background(), "BTCUSDT", models.SideSell, 1, 110, 90, 89); err != nil {
		t.Fatal(err)
	}
	if _, err := tw.Start(context.Background(), "ETHUSDT", models.SideBuy, 2, 2*time.Second, time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := g.Create("SOLUSDT", 10, 20, 4, 4); err != nil {
		t.Fatal(err)
	}

	out := Summary(o, tw, g)
	for _, want := range []string{"OCO: 1", "TWAP: 1", "GRID: 1", "BTCUSDT", "ETHUSDT", "SOLUSDT", "[CREATED]"} {
		if !strings.Contains(out, want) {
			t.Errorf("Summary() missing %q:\n%s", want, out)
		}
	}
}
