package models

// SymbolFilters: торговые ограничения символа (LOT_SIZE + PRICE_FILTER).
// Нулевой Max* значит «без ограничения».
type SymbolFilters struct {
	Symbol            string  `json:"symbol"`
	Status            string  `json:"status"`
	BaseAsset         string  `json:"base_asset"`
	QuoteAsset        string  `json:"quote_asset"`
	MinQty            float64 `json:"min_qty"`
	MaxQty            float64 `json:"max_qty"`
	StepSize          float64 `json:"step_size"`
	MinPrice          float64 `json:"min_price"`
	MaxPrice          float64 `json:"max_price"`
	TickSize          float64 `json:"tick_size"`
	PricePrecision    int     `json:"price_precision"`
	QuantityPrecision int     `json:"quantity_precision"`
}

type Balance struct {
	Asset     string  `json:"asset"`
	Available float64 `json:"available"`
	Wallet    float64 `json:"wallet"`
}
