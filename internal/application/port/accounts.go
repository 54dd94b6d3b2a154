package port

import (
	"context"

	"cryptofolio/internal/domain"
)

// ExchangeKeys is one exchange's API credential pair. Keys are loaded on
// demand for a single aggregation call and never cached in the services.
type ExchangeKeys struct {
	APIKey    string
	SecretKey string
}

// Credentials holds the per-exchange keys read from the user's profile.
// A nil entry means that exchange is not configured.
type Credentials struct {
	Binance  *ExchangeKeys
	Coinbase *ExchangeKeys
}

// CredentialSource loads the authenticated user's exchange keys.
type CredentialSource interface {
	APIKeys(ctx context.Context, userID string) (Credentials, error)
}

// Balance is one positive asset amount reported by an exchange. Asset stays
// in exchange format; normalization happens in the aggregator.
type Balance struct {
	Asset  string
	Amount float64
}

// BalanceFetcher fetches the signed account-balance snapshot of one exchange.
type BalanceFetcher interface {
	Balances(ctx context.Context, keys ExchangeKeys) ([]Balance, error)
}

// OrderPlacer submits one signed order and reports the remote order id.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, keys ExchangeKeys, order domain.OrderRequest) (orderID string, err error)
}
