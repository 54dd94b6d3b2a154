package postgres

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"cryptofolio/internal/application/port"
)

type Repo struct {
	db *sql.DB
}

func New(dsn string) (*Repo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS snapshots (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_ms);

CREATE TABLE IF NOT EXISTS portfolio_values (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  user_id TEXT NOT NULL,
  total DOUBLE PRECISION NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_portfolio_ts ON portfolio_values(ts_ms);
CREATE INDEX IF NOT EXISTS idx_portfolio_user ON portfolio_values(user_id);

CREATE TABLE IF NOT EXISTS orders (
  id BIGSERIAL PRIMARY KEY,
  ts_ms BIGINT NOT NULL,
  exchange TEXT NOT NULL,
  symbol TEXT NOT NULL,
  side TEXT NOT NULL,
  quantity DOUBLE PRECISION NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  order_id TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orders_ts ON orders(ts_ms);
`)
	return err
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	// latest prices live in redis/sqlite; postgres keeps history only
	return nil
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots(ts_ms, payload) VALUES($1, $2)`, ts, payload)
	return err
}

func (r *Repo) InsertPortfolioValue(ctx context.Context, ts int64, userID string, total float64, payload string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portfolio_values(ts_ms, user_id, total, payload) VALUES($1, $2, $3, $4)
	`, ts, userID, total, payload)
	return err
}

func (r *Repo) InsertOrder(ctx context.Context, ts int64, exchange, symbol, side string, quantity, price float64, orderID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO orders(ts_ms, exchange, symbol, side, quantity, price, order_id)
		VALUES($1, $2, $3, $4, $5, $6, $7)
	`, ts, exchange, symbol, side, quantity, price, orderID)
	return err
}

var _ port.Repository = (*Repo)(nil)
