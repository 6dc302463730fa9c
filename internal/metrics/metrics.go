package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ============ Шлюз биржи ============

// GatewayLatency: время запроса к бирже по операции, мс.
var GatewayLatency = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "futures_bot",
		Subsystem: "gateway",
		Name:      "request_latency_ms",
		Help:      "Exchange REST request latency in milliseconds",
		Buckets:   []float64{25, 50, 100, 200, 300, 500, 1000, 2000, 5000},
	},
	[]string{"op"},
)

var GatewayErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "futures_bot",
		Subsystem: "gateway",
		Name:      "errors_total",
		Help:      "Exchange REST request errors",
	},
	[]string{"op"},
)

// ============ Ордера ============

var OrdersPlaced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "futures_bot",
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders accepted by the exchange",
	},
	[]string{"type", "side"},
)

var OrdersCancelled = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "futures_bot",
		Subsystem: "orders",
		Name:      "cancel_total",
		Help:      "Cancel attempts by result",
	},
	[]string{"result"},
)

// ============ Стратегии ============

// StrategyTransitions: переходы стратегий в новый статус.
var StrategyTransitions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "futures_bot",
		Subsystem: "strategy",
		Name:      "transitions_total",
		Help:      "Strategy status transitions",
	},
	[]string{"kind", "status"},
)

// MonitorTasks: сколько задач мониторинга сейчас крутится.
var MonitorTasks = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: "futures_bot",
		Subsystem: "strategy",
		Name:      "monitor_tasks",
		Help:      "Running strategy monitoring tasks",
	},
)

var PollErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "futures_bot",
		Subsystem: "strategy",
		Name:      "poll_errors_total",
		Help:      "Order status poll errors inside monitoring tasks",
	},
	[]string{"kind"},
)

// ============ HTTP ============

var APIRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "futures_bot",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "HTTP API requests by route and status code",
	},
	[]string{"route", "code"},
)
