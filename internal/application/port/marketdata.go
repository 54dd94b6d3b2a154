package port

import "context"

// Ticker24h is one exchange ticker row, already parsed to numbers. Symbol
// stays in exchange format ("BTCUSDT"); normalization happens above.
type Ticker24h struct {
	Symbol      string
	LastPrice   float64
	ChangePct   float64
	Volume      float64
	QuoteVolume float64
}

// SymbolPrice is one row of the bulk price endpoint.
type SymbolPrice struct {
	Symbol string
	Price  float64
}

// MarketAPI is the raw public market-data surface of one exchange.
type MarketAPI interface {
	// Ticker24h fetches 24h stats for a single exchange-format symbol.
	Ticker24h(ctx context.Context, symbol string) (Ticker24h, error)
	// AllPrices fetches the bulk last-price table for every symbol.
	AllPrices(ctx context.Context) ([]SymbolPrice, error)
	// AllTickers fetches the full 24h ticker set.
	AllTickers(ctx context.Context) ([]Ticker24h, error)
}
