package application

// Exchange display names used in PriceRecord.Exchange and for routing orders.
const (
	ExchangeBinance  = "Binance"
	ExchangeCoinbase = "Coinbase"
)

// DefaultWatchedCoins is the fixed, user-independent symbol list that is
// always tracked when the config does not override it.
var DefaultWatchedCoins = []string{
	"BTC",
	"ETH",
	"SOL",
	"ADA",
	"DOT",
	"FET",
	"LINK",
	"AVAX",
}

const (
	// MoversLimit caps GetMarketMovers output.
	MoversLimit = 25
	// LosersLimit caps GetLosers output.
	LosersLimit = 15
)
