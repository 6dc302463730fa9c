// Package precision приводит цены и количества к шагам биржи (tickSize / stepSize).
// Все функции чистые: фильтры передаются параметром, сети тут нет.
package precision

import (
	"fmt"

	"github.com/shopspring/decimal"

	"futures_bot/internal/models"
)

// Rules: шаги и границы одного символа.
type Rules struct {
	TickSize float64
	StepSize float64
	MinQty   float64
	MaxQty   float64 // 0: без ограничения
	MinPrice float64
	MaxPrice float64 // 0: без ограничения
}

func FromFilters(f models.SymbolFilters) Rules {
	return Rules{
		TickSize: f.TickSize,
		StepSize: f.StepSize,
		MinQty:   f.MinQty,
		MaxQty:   f.MaxQty,
		MinPrice: f.MinPrice,
		MaxPrice: f.MaxPrice,
	}
}

// RoundToStep округляет к ближайшему кратному step. step <= 0: значение без изменений.
func RoundToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	s := decimal.NewFromFloat(step)
	f, _ := decimal.NewFromFloat(v).Div(s).Round(0).Mul(s).Float64()
	return f
}

// FloorToStep: вниз к кратному step (для количества: не продать больше, чем есть).
func FloorToStep(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	s := decimal.NewFromFloat(step)
	f, _ := decimal.NewFromFloat(v).Div(s).Floor().Mul(s).Float64()
	return f
}

func (r Rules) Price(p float64) float64 { return RoundToStep(p, r.TickSize) }

func (r Rules) Qty(q float64) float64 { return FloorToStep(q, r.StepSize) }

// Check проверяет количество и (если задана) цену на границы символа.
func (r Rules) Check(qty float64, price *float64) error {
	if qty < r.MinQty {
		return models.NewValidationError("quantity %v too low, min %v", qty, r.MinQty)
	}
	if r.MaxQty > 0 && qty > r.MaxQty {
		return models.NewValidationError("quantity %v too high, max %v", qty, r.MaxQty)
	}
	if price != nil {
		if *price < r.MinPrice {
			return models.NewValidationError("price %v too low, min %v", *price, r.MinPrice)
		}
		if r.MaxPrice > 0 && *price > r.MaxPrice {
			return models.NewValidationError("price %v too high, max %v", *price, r.MaxPrice)
		}
	}
	return nil
}

func (r Rules) String() string {
	return fmt.Sprintf("tick=%v step=%v qty=[%v..%v] price=[%v..%v]",
		r.TickSize, r.StepSize, r.MinQty, r.MaxQty, r.MinPrice, r.MaxPrice)
}
