package port

import "context"

type Repository interface {
	// Price operations
	UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error

	// Snapshot operations
	InsertSnapshot(ctx context.Context, ts int64, payload string) error

	// Portfolio operations
	InsertPortfolioValue(ctx context.Context, ts int64, userID string, total float64, payload string) error

	// Order log
	InsertOrder(ctx context.Context, ts int64, exchange, symbol, side string, quantity, price float64, orderID string) error
}
