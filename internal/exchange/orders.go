package exchange

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"futures_bot/internal/models"
)

type orderResponse struct {
	OrderID     int64  `json:"orderId"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	OrigQty     string `json:"origQty"`
	ExecutedQty string `json:"executedQty"`
	Price       string `json:"price"`
	AvgPrice    string `json:"avgPrice"`
	StopPrice   string `json:"stopPrice"`
	UpdateTime  int64  `json:"updateTime"`
}

func (r orderResponse) toModel() *models.ExchangeOrder {
	o := &models.ExchangeOrder{
		OrderID:     r.OrderID,
		Symbol:      r.Symbol,
		Side:        models.Side(r.Side),
		Type:        models.OrderType(r.Type),
		Status:      models.OrderStatus(r.Status),
		OrigQty:     parseFloat(r.OrigQty),
		ExecutedQty: parseFloat(r.ExecutedQty),
		Price:       parseFloat(r.Price),
		AvgPrice:    parseFloat(r.AvgPrice),
		StopPrice:   parseFloat(r.StopPrice),
	}
	if r.UpdateTime > 0 {
		o.UpdateTime = time.UnixMilli(r.UpdateTime)
	}
	return o
}

// PlaceOrder: POST /fapi/v1/order
func (c *Client) PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.ExchangeOrder, error) {
	params := url.Values{}
	params.Set("symbol", req.Symbol)
	params.Set("side", string(req.Side))
	params.Set("type", string(req.Type))
	params.Set("quantity", formatFloat(req.Quantity))
	if req.TimeInForce != "" {
		params.Set("timeInForce", req.TimeInForce)
	}
	if req.Price > 0 {
		params.Set("price", formatFloat(req.Price))
	}
	if req.StopPrice > 0 {
		params.Set("stopPrice", formatFloat(req.StopPrice))
	}

	var resp orderResponse
	if err := c.do(ctx, "PlaceOrder", http.MethodPost, "/fapi/v1/order", params, true, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}

// CancelOrder: DELETE /fapi/v1/order
func (c *Client) CancelOrder(ctx context.Context, symbol string, orderID int64) error {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderID, 10))
	return c.do(ctx, "CancelOrder", http.MethodDelete, "/fapi/v1/order", params, true, nil)
}

// GetOrder: GET /fapi/v1/order
func (c *Client) GetOrder(ctx context.Context, symbol string, orderID int64) (*models.ExchangeOrder, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("orderId", strconv.FormatInt(orderID, 10))

	var resp orderResponse
	if err := c.do(ctx, "GetOrder", http.MethodGet, "/fapi/v1/order", params, true, &resp); err != nil {
		return nil, err
	}
	return resp.toModel(), nil
}
