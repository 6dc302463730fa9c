package exchange

import (
	"context"

	"futures_bot/internal/models"
)

// Gateway: всё, что слою стратегий нужно от биржи. Единственный источник правды о статусе ордеров.
type Gateway interface {
	PlaceOrder(ctx context.Context, req models.OrderRequest) (*models.ExchangeOrder, error)
	CancelOrder(ctx context.Context, symbol string, orderID int64) error
	GetOrder(ctx context.Context, symbol string, orderID int64) (*models.ExchangeOrder, error)
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	SymbolFilters(ctx context.Context, symbol string) (*models.SymbolFilters, error)
}

var _ Gateway = (*Client)(nil)
