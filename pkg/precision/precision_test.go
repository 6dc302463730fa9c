package precision

import (
	"math"
	"testing"

	"futures_bot/internal/models"
)

func TestRoundToStep(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		step float64
		want float64
	}{
		{name: "tick 0.1 rounds up", v: 100.06, step: 0.1, want: 100.1},
		{name: "tick 0.1 rounds down", v: 100.04, step: 0.1, want: 100.0},
		{name: "tick 0.01 exact", v: 25.37, step: 0.01, want: 25.37},
		{name: "tick 0.5", v: 101.3, step: 0.5, want: 101.5},
		{name: "zero step keeps value", v: 1.23456, step: 0, want: 1.23456},
		{name: "negative step keeps value", v: 7.7, step: -1, want: 7.7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundToStep(tt.v, tt.step); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("RoundToStep(%v, %v) = %v, want %v", tt.v, tt.step, got, tt.want)
			}
		})
	}
}

func TestFloorToStep(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		step float64
		want float64
	}{
		{name: "cuts extra digits", v: 0.0379, step: 0.001, want: 0.037},
		{name: "float noise", v: 3.3333333333333335, step: 0.001, want: 3.333},
		{name: "exact multiple", v: 0.5, step: 0.1, want: 0.5},
		{name: "below one step", v: 0.0009, step: 0.001, want: 0},
		{name: "zero step keeps value", v: 1.23456, step: 0, want: 1.23456},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FloorToStep(tt.v, tt.step); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("FloorToStep(%v, %v) = %v, want %v", tt.v, tt.step, got, tt.want)
			}
		})
	}
}

func TestRules_PriceAndQty(t *testing.T) {
	r := Rules{TickSize: 0.1, StepSize: 0.001}

	if got := r.Price(65000.04); math.Abs(got-65000.0) > 1e-9 {
		t.Errorf("Price = %v, want 65000.0", got)
	}
	if got := r.Qty(0.0129); math.Abs(got-0.012) > 1e-12 {
		t.Errorf("Qty = %v, want 0.012", got)
	}
}

func TestRules_Check(t *testing.T) {
	r := FromFilters(models.SymbolFilters{
		MinQty:   0.001,
		MaxQty:   1000,
		StepSize: 0.001,
		MinPrice: 10,
		MaxPrice: 0,
		TickSize: 0.1,
	})

	tests := []struct {
		name    string
		qty     float64
		price   *float64
		wantErr bool
	}{
		{name: "ok without price", qty: 0.01},
		{name: "ok with price", qty: 0.01, price: models.PriceOf(50000)},
		{name: "qty below min", qty: 0.0001, wantErr: true},
		{name: "qty above max", qty: 1001, wantErr: true},
		{name: "price below min", qty: 1, price: models.PriceOf(5), wantErr: true},
		{name: "no max price means unbounded", qty: 1, price: models.PriceOf(1e9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Check(tt.qty, tt.price)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !models.IsValidation(err) {
				t.Errorf("Check() err = %T, want *models.ValidationError", err)
			}
		})
	}
}
