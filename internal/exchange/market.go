package exchange

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"futures_bot/internal/models"
	"futures_bot/pkg/precision"
)

// CurrentPrice: GET /fapi/v1/ticker/price
func (c *Client) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	var resp struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := c.do(ctx, "CurrentPrice", http.MethodGet, "/fapi/v1/ticker/price", params, false, &resp); err != nil {
		return 0, err
	}
	p := parseFloat(resp.Price)
	if p <= 0 {
		return 0, &models.GatewayError{Op: "CurrentPrice", Msg: fmt.Sprintf("bad price %q for %s", resp.Price, symbol)}
	}
	c.SetPrice(symbol, p)
	return p, nil
}

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol            string `json:"symbol"`
		Status            string `json:"status"`
		BaseAsset         string `json:"baseAsset"`
		QuoteAsset        string `json:"quoteAsset"`
		PricePrecision    int    `json:"pricePrecision"`
		QuantityPrecision int    `json:"quantityPrecision"`
		Filters           []struct {
			FilterType string `json:"filterType"`
			MinQty     string `json:"minQty"`
			MaxQty     string `json:"maxQty"`
			StepSize   string `json:"stepSize"`
			MinPrice   string `json:"minPrice"`
			MaxPrice   string `json:"maxPrice"`
			TickSize   string `json:"tickSize"`
		} `json:"filters"`
	} `json:"symbols"`
}

// SymbolFilters: GET /fapi/v1/exchangeInfo, разбираем LOT_SIZE и PRICE_FILTER.
func (c *Client) SymbolFilters(ctx context.Context, symbol string) (*models.SymbolFilters, error) {
	var resp exchangeInfoResponse
	if err := c.do(ctx, "SymbolFilters", http.MethodGet, "/fapi/v1/exchangeInfo", nil, false, &resp); err != nil {
		return nil, err
	}

	for _, s := range resp.Symbols {
		if s.Symbol != symbol {
			continue
		}
		f := &models.SymbolFilters{
			Symbol:            s.Symbol,
			Status:            s.Status,
			BaseAsset:         s.BaseAsset,
			QuoteAsset:        s.QuoteAsset,
			PricePrecision:    s.PricePrecision,
			QuantityPrecision: s.QuantityPrecision,
		}
		for _, fl := range s.Filters {
			switch fl.FilterType {
			case "LOT_SIZE":
				f.MinQty = parseFloat(fl.MinQty)
				f.MaxQty = parseFloat(fl.MaxQty)
				f.StepSize = parseFloat(fl.StepSize)
			case "PRICE_FILTER":
				f.MinPrice = parseFloat(fl.MinPrice)
				f.MaxPrice = parseFloat(fl.MaxPrice)
				f.TickSize = parseFloat(fl.TickSize)
			}
		}
		return f, nil
	}
	return nil, &models.GatewayError{Op: "SymbolFilters", Msg: fmt.Sprintf("symbol %s not found", symbol)}
}

// Balances: GET /fapi/v2/balance
func (c *Client) Balances(ctx context.Context) ([]models.Balance, error) {
	var resp []struct {
		Asset            string `json:"asset"`
		Balance          string `json:"balance"`
		AvailableBalance string `json:"availableBalance"`
	}
	if err := c.do(ctx, "Balances", http.MethodGet, "/fapi/v2/balance", nil, true, &resp); err != nil {
		return nil, err
	}

	res := make([]models.Balance, 0, len(resp))
	for _, b := range resp {
		res = append(res, models.Balance{
			Asset:     b.Asset,
			Available: parseFloat(b.AvailableBalance),
			Wallet:    parseFloat(b.Balance),
		})
	}
	return res, nil
}

// FilterSource: откуда FilterCache берёт фильтры.
type FilterSource interface {
	SymbolFilters(ctx context.Context, symbol string) (*models.SymbolFilters, error)
}

// FilterCache кеширует фильтры символов на время жизни процесса.
type FilterCache struct {
	src FilterSource

	mu sync.RWMutex
	m  map[string]models.SymbolFilters
}

func NewFilterCache(src FilterSource) *FilterCache {
	return &FilterCache{src: src, m: make(map[string]models.SymbolFilters)}
}

func (fc *FilterCache) Get(ctx context.Context, symbol string) (models.SymbolFilters, error) {
	fc.mu.RLock()
	f, ok := fc.m[symbol]
	fc.mu.RUnlock()
	if ok {
		return f, nil
	}

	got, err := fc.src.SymbolFilters(ctx, symbol)
	if err != nil {
		return models.SymbolFilters{}, err
	}

	fc.mu.Lock()
	fc.m[symbol] = *got
	fc.mu.Unlock()
	return *got, nil
}

// Rules: правила округления символа; подходит как источник правил для плейсеров.
func (fc *FilterCache) Rules(ctx context.Context, symbol string) (precision.Rules, error) {
	f, err := fc.Get(ctx, symbol)
	if err != nil {
		return precision.Rules{}, err
	}
	return precision.FromFilters(f), nil
}
