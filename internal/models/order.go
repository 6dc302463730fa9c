package models

import (
	"strings"
	"time"
)

// Side как у биржи: "BUY"/"SELL".
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// ParseSide нормализует ввод пользователя ("buy", " Sell ").
func ParseSide(raw string) (Side, error) {
	switch Side(strings.ToUpper(strings.TrimSpace(raw))) {
	case SideBuy:
		return SideBuy, nil
	case SideSell:
		return SideSell, nil
	}
	return "", NewValidationError("side must be BUY or SELL, got %q", raw)
}

func (s Side) Valid() bool { return s == SideBuy || s == SideSell }

type OrderType string

const (
	OrderTypeMarket    OrderType = "MARKET"
	OrderTypeLimit     OrderType = "LIMIT"
	OrderTypeStop      OrderType = "STOP"
	OrderTypeStopLimit OrderType = "STOP_LIMIT" // так отображаем стоп-ногу в результатах
)

// OrderStatus: статус ордера как его отдаёт биржа.
type OrderStatus string

const (
	OrderStatusNew             OrderStatus = "NEW"
	OrderStatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	OrderStatusFilled          OrderStatus = "FILLED"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusRejected        OrderStatus = "REJECTED"
	OrderStatusExpired         OrderStatus = "EXPIRED"
)

const TimeInForceGTC = "GTC"

// OrderIntent: запрос пользователя на сделку.
type OrderIntent struct {
	Symbol    string   `json:"symbol"`
	Side      Side     `json:"side"`
	Quantity  float64  `json:"quantity"`
	Price     *float64 `json:"price,omitempty"`
	StopPrice *float64 `json:"stop_price,omitempty"`
}

func (i OrderIntent) Validate() error {
	if strings.TrimSpace(i.Symbol) == "" {
		return NewValidationError("symbol is required")
	}
	if !i.Side.Valid() {
		return NewValidationError("side must be BUY or SELL, got %q", i.Side)
	}
	if i.Quantity <= 0 {
		return NewValidationError("quantity must be > 0, got %v", i.Quantity)
	}
	if i.Price != nil && *i.Price <= 0 {
		return NewValidationError("price must be > 0, got %v", *i.Price)
	}
	if i.StopPrice != nil && *i.StopPrice <= 0 {
		return NewValidationError("stop price must be > 0, got %v", *i.StopPrice)
	}
	return nil
}

// OrderRequest: то, что уходит в шлюз биржи.
type OrderRequest struct {
	Symbol      string
	Side        Side
	Type        OrderType
	Quantity    float64
	Price       float64 // 0: не передаём
	StopPrice   float64 // 0: не передаём
	TimeInForce string
}

// ExchangeOrder: ордер в представлении биржи (ответ на создание и на запрос статуса).
type ExchangeOrder struct {
	OrderID     int64
	Symbol      string
	Side        Side
	Type        OrderType
	Status      OrderStatus
	OrigQty     float64
	ExecutedQty float64
	Price       float64
	AvgPrice    float64
	StopPrice   float64
	UpdateTime  time.Time
}

func (o *ExchangeOrder) Filled() bool { return o != nil && o.Status == OrderStatusFilled }

// OrderResult: нормализованный итог одного размещения. После создания не меняется.
type OrderResult struct {
	OrderID   int64       `json:"order_id"`
	Symbol    string      `json:"symbol"`
	Side      Side        `json:"side"`
	Quantity  float64     `json:"quantity"`
	Price     *float64    `json:"price"` // nil: цена ещё неизвестна
	Status    OrderStatus `json:"status"`
	OrderType OrderType   `json:"order_type"`
	Timestamp time.Time   `json:"timestamp"`
}

// Clone копирует указатель на цену, чтобы снимки не делили память.
func (r OrderResult) Clone() OrderResult {
	if r.Price != nil {
		p := *r.Price
		r.Price = &p
	}
	return r
}

func PriceOf(v float64) *float64 { return &v }
