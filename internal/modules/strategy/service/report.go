package service

import (
	"fmt"
	"strings"
)

// Summary: короткий текст по всем стратегиям, для /status в Telegram.
func Summary(o *OCO, t *TWAP, g *Grid) string {
	var b strings.Builder

	pairs := o.List()
	fmt.Fprintf(&b, "OCO: %d\n", len(pairs))
	for _, p := range pairs {
		fmt.Fprintf(&b, "- %s %s %s %v [%s]\n", p.ID, p.Symbol, p.Side, p.Quantity, p.Status)
	}

	jobs := t.List()
	fmt.Fprintf(&b, "TWAP: %d\n", len(jobs))
	for _, j := range jobs {
		fmt.Fprintf(&b, "- %s %s %s %d/%d [%s]\n", j.ID, j.Symbol, j.Side, j.Completed, j.Slices, j.Status)
	}

	grids := g.List()
	fmt.Fprintf(&b, "GRID: %d\n", len(grids))
	for _, s := range grids {
		fmt.Fprintf(&b, "- %s %s active=%d trades=%d pnl=%.4f [%s]\n", s.ID, s.Symbol, s.ActiveOrders, s.TotalTrades, s.ProfitLoss, s.Status)
	}
	return b.String()
}
