package models

import "time"

type StrategyType string

const (
	StrategyOCO  StrategyType = "oco"
	StrategyTWAP StrategyType = "twap"
	StrategyGrid StrategyType = "grid"
)

// ===== Grid =====

type GridLevelStatus string

const (
	GridLevelPending   GridLevelStatus = "PENDING"
	GridLevelPlaced    GridLevelStatus = "PLACED"
	GridLevelFilled    GridLevelStatus = "FILLED"
	GridLevelCancelled GridLevelStatus = "CANCELLED"
)

type GridLevel struct {
	Price    float64         `json:"price"`
	Quantity float64         `json:"quantity"`
	Side     Side            `json:"side"`
	OrderID  *int64          `json:"order_id,omitempty"`
	Status   GridLevelStatus `json:"status"`
}

type GridStatus string

const (
	GridCreated GridStatus = "CREATED"
	GridRunning GridStatus = "RUNNING"
	GridStopped GridStatus = "STOPPED"
)

type GridStrategy struct {
	ID           string      `json:"id"`
	Symbol       string      `json:"symbol"`
	LowerPrice   float64     `json:"lower_price"`
	UpperPrice   float64     `json:"upper_price"`
	Levels       []GridLevel `json:"levels"`
	Status       GridStatus  `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	ActiveOrders int         `json:"active_orders"`
	TotalTrades  int         `json:"total_trades"`
	ProfitLoss   float64     `json:"profit_loss"`
}

func (g GridStrategy) Clone() GridStrategy {
	levels := make([]GridLevel, len(g.Levels))
	for i, l := range g.Levels {
		if l.OrderID != nil {
			id := *l.OrderID
			l.OrderID = &id
		}
		levels[i] = l
	}
	g.Levels = levels
	return g
}

// ===== OCO =====

type OCOStatus string

const (
	OCOActive      OCOStatus = "ACTIVE"
	OCOLimitFilled OCOStatus = "LIMIT_FILLED"
	OCOStopFilled  OCOStatus = "STOP_FILLED"
)

func (s OCOStatus) Terminal() bool { return s == OCOLimitFilled || s == OCOStopFilled }

type OCOPair struct {
	ID         string      `json:"id"`
	Symbol     string      `json:"symbol"`
	Side       Side        `json:"side"`
	Quantity   float64     `json:"quantity"`
	LimitOrder OrderResult `json:"limit_order"`
	StopOrder  OrderResult `json:"stop_order"`
	Status     OCOStatus   `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
}

func (p OCOPair) Clone() OCOPair {
	p.LimitOrder = p.LimitOrder.Clone()
	p.StopOrder = p.StopOrder.Clone()
	return p
}

// ===== TWAP =====

type TWAPStatus string

const (
	TWAPRunning   TWAPStatus = "RUNNING"
	TWAPCompleted TWAPStatus = "COMPLETED"
	TWAPCancelled TWAPStatus = "CANCELLED"
	TWAPFailed    TWAPStatus = "FAILED"
)

type TWAPJob struct {
	ID               string        `json:"id"`
	Symbol           string        `json:"symbol"`
	Side             Side          `json:"side"`
	TotalQuantity    float64       `json:"total_quantity"`
	Slices           int           `json:"slices"`
	QuantityPerSlice float64       `json:"quantity_per_slice"`
	Interval         time.Duration `json:"interval"`
	Completed        int           `json:"completed"`
	Status           TWAPStatus    `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	Orders           []OrderResult `json:"orders"`
	Error            string        `json:"error,omitempty"`
}

// PlacedQuantity: сколько уже отправлено срезами.
func (j TWAPJob) PlacedQuantity() float64 {
	return float64(j.Completed) * j.QuantityPerSlice
}

func (j TWAPJob) Clone() TWAPJob {
	orders := make([]OrderResult, len(j.Orders))
	for i, o := range j.Orders {
		orders[i] = o.Clone()
	}
	j.Orders = orders
	return j
}
