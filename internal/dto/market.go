package dto

// Quote is the standardized shape returned by the market data adapter,
// whatever the upstream provider's field names are.
type Quote struct {
	Symbol         string  `json:"symbol"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	ChangeAbsolute float64 `json:"changeAbsolute"`
	ChangePercent  float64 `json:"changePercent"`
	Currency       string  `json:"currency"`
	MarketState    string  `json:"marketState,omitempty"`
}

// KeyAsset is one entry of the market overview widget.
type KeyAsset struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Currency      string  `json:"currency"`
	PercentChange float64 `json:"percentChange"`
	IsUp          bool    `json:"isUp"`
}
