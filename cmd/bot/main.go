package main

import (
	"log"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"futures_bot/internal/modules/api"
	"futures_bot/internal/modules/config"
	"futures_bot/internal/modules/exchange"
	"futures_bot/internal/modules/health"
	"futures_bot/internal/modules/journal"
	"futures_bot/internal/modules/notify"
	"futures_bot/internal/modules/placer"
	"futures_bot/internal/modules/strategy"
	"futures_bot/pkg/logger"
	"futures_bot/pkg/tracing"
)

const serviceName = "futures_bot"

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.SetServiceName(serviceName)
	syncLog, err := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, File: cfg.Log.File})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer syncLog()
	logger.Info("config:\n%s", cfg.Dump())

	tracing.SetServiceName(serviceName)
	_, closeTracer, err := tracing.InitTracer(tracing.Config{
		Host:       cfg.Tracing.Host,
		Port:       cfg.Tracing.Port,
		SampleRate: cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Fatal("tracer: %v", err)
	}
	defer closeTracer()

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.InfoLogger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))}
		}),
		config.Module(cfg),
		exchange.Module(),
		journal.Module(),
		placer.Module(),
		strategy.Module(),
		notify.Module(),
		api.Module(),
		health.Module(),
	)
	app.Run()
}
