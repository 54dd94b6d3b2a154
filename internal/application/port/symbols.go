package port

// SymbolConverter translates between base coins and exchange trading pairs.
// One converter instance is shared by the fetch, stream and aggregation
// paths so that symbol normalization cannot drift between them.
type SymbolConverter interface {
	// Symbol2Coin strips the quote suffix: BTCUSDT -> BTC.
	Symbol2Coin(symbol string) string
	// Coin2Symbol appends the quote suffix: BTC -> BTCUSDT.
	Coin2Symbol(coin string) string
	// SymbolSuffix returns the quote suffix, e.g. USDT.
	SymbolSuffix() string
}
