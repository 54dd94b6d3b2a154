package exchange

import "strings"

// CommonSymbolConverter translates between base coins and quote-suffixed
// trading pairs. The same instance is shared by fetch, stream and portfolio
// paths so symbol normalization cannot drift between them.
type CommonSymbolConverter struct {
	suffix string
}

func NewCommonSymbolConverter(suffix string) *CommonSymbolConverter {
	return &CommonSymbolConverter{suffix: strings.ToUpper(strings.TrimSpace(suffix))}
}

func (c *CommonSymbolConverter) SymbolSuffix() string {
	return c.suffix
}

// Symbol2Coin strips the quote suffix: BTCUSDT -> BTC. A bare coin passes
// through unchanged.
func (c *CommonSymbolConverter) Symbol2Coin(symbol string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	if sym == "" {
		return ""
	}
	return strings.ReplaceAll(sym, c.suffix, "")
}

// Coin2Symbol appends the quote suffix: BTC -> BTCUSDT. An already-suffixed
// pair passes through unchanged.
func (c *CommonSymbolConverter) Coin2Symbol(coin string) string {
	coin = strings.ToUpper(strings.TrimSpace(coin))
	if coin == "" {
		return ""
	}
	if strings.HasSuffix(coin, c.suffix) {
		return coin
	}
	return coin + c.suffix
}
