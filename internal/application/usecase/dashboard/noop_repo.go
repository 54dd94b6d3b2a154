package dashboard

import (
	"context"

	"cryptofolio/internal/application/port"
)

type noopRepo struct{}

func NewNoopRepo() port.Repository { return &noopRepo{} }

func (n *noopRepo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	return nil
}
func (n *noopRepo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	return nil
}
func (n *noopRepo) InsertPortfolioValue(ctx context.Context, ts int64, userID string, total float64, payload string) error {
	return nil
}
func (n *noopRepo) InsertOrder(ctx context.Context, ts int64, exchange, symbol, side string, quantity, price float64, orderID string) error {
	return nil
}
