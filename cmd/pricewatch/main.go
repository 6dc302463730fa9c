// pricewatch печатает поток mark price символа. Ключи API не нужны.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"futures_bot/internal/exchange"
	"futures_bot/internal/modules/config"
	"futures_bot/pkg/logger"
)

func main() {
	symbol := flag.String("symbol", "BTCUSDT", "futures symbol")
	duration := flag.Duration("duration", 0, "stop after this long (0 = until Ctrl+C)")
	flag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	syncLog, err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: "console"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer syncLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	c := exchange.NewClient(exchange.Config{
		Testnet: cfg.Exchange.Testnet,
		BaseURL: cfg.Exchange.BaseURL,
		WSURL:   cfg.Exchange.WSURL,
		Timeout: cfg.Exchange.Timeout,
	})

	sym := strings.ToUpper(*symbol)
	var first decimal.Decimal
	n := 0
	for tick := range c.StreamPrices(ctx, sym) {
		p := decimal.NewFromFloat(tick.Price)
		if n == 0 {
			first = p
		}
		n++
		// изменение от первого тика в процентах
		chg := p.Sub(first).Div(first).Mul(decimal.NewFromInt(100)).StringFixed(3)
		fmt.Printf("%s %s %s (%s%%)\n", tick.Time.Format(time.TimeOnly), tick.Symbol, p.String(), chg)
	}
	if last, ok := c.LastPrice(sym); ok {
		logger.Info("[PRICEWATCH] %s: %d ticks, last %v", sym, n, last)
		return
	}
	logger.Warn("[PRICEWATCH] %s: no ticks received", sym)
}
