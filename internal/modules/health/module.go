package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"futures_bot/internal/exchange"
	"futures_bot/internal/modules/config"
	"futures_bot/internal/modules/health/service"
	strategy "futures_bot/internal/modules/strategy/service"
	"futures_bot/pkg/logger"
)

type Config struct {
	Addr string // например ":8080"
}

func NewConfig(cfg *config.Config) Config {
	return Config{Addr: cfg.Service.HTTPAddr}
}

func newState(sup *strategy.Supervisor) *service.State {
	return service.NewState(sup)
}

// NewRouter: общий роутер сервиса (пробы, /metrics), остальные модули докидывают свои ручки.
func NewRouter(state *service.State) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		// liveness: процесс жив
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods("GET")

	r.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		// readiness: биржа ответила хотя бы раз
		if !state.Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}).Methods("GET")

	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		tasks := state.Tasks()
		resp := map[string]any{
			"ready":        state.Ready(),
			"uptimeSec":    int64(state.Uptime().Seconds()),
			"runningTasks": len(tasks),
			"tasks":        tasks,
			"lastExchangeUnix": func() int64 {
				t := state.LastExchange()
				if t.IsZero() {
					return 0
				}
				return t.Unix()
			}(),
		}
		body, _ := sonic.Marshal(resp)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return r
}

// Probe: при старте спрашивает у биржи цену; успех делает сервис ready.
func Probe(lc fx.Lifecycle, state *service.State, gw exchange.Gateway) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if _, err := gw.CurrentPrice(ctx, "BTCUSDT"); err != nil {
					logger.Error("[HEALTH] exchange probe failed: %v", err)
					return
				}
				state.TouchExchange(time.Now())
				state.SetReady(true)
				logger.Info("[HEALTH] exchange reachable, service ready")
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			state.SetReady(false)
			return nil
		},
	})
}

func RunHTTP(lc fx.Lifecycle, cfg Config, r *mux.Router) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", cfg.Addr)
			if err != nil {
				return err
			}
			logger.Info("[HTTP] listening on %s", cfg.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("[HTTP] serve error: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func Module() fx.Option {
	return fx.Module("health",
		fx.Provide(
			newState,
			NewConfig,
			NewRouter,
		),
		fx.Invoke(Probe, RunHTTP),
	)
}
