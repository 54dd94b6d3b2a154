package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"cryptofolio/internal/application/port"

	"github.com/redis/go-redis/v9"
)

type Repo struct {
	rdb         *redis.Client
	prefix      string
	ttl         time.Duration
	keyLatest   string // prefix + ":latest"
	valueStream string
	valueChan   string
}

type LatestPrice struct {
	Exchange string  `json:"exchange"`
	Symbol   string  `json:"symbol"`
	Price    float64 `json:"price"`
	Ts       int64   `json:"ts"`
}

func New(rdb *redis.Client, prefix string, ttl time.Duration, valueStream, valueChan string) *Repo {
	if strings.TrimSpace(valueStream) == "" {
		valueStream = prefix + ":portfolio"
	}
	if strings.TrimSpace(valueChan) == "" {
		valueChan = prefix + ":portfolio:pub"
	}
	return &Repo{
		rdb:         rdb,
		prefix:      prefix,
		ttl:         ttl,
		keyLatest:   prefix + ":latest",
		valueStream: valueStream,
		valueChan:   valueChan,
	}
}

func (r *Repo) UpsertLatestPrice(ctx context.Context, ex, symbol string, price float64, ts int64) error {
	if price <= 0 {
		return nil
	}
	lp := LatestPrice{Exchange: ex, Symbol: symbol, Price: price, Ts: ts}
	b, _ := json.Marshal(lp)

	// Hash: field = "Binance:BTC" -> json
	field := fmt.Sprintf("%s:%s", ex, symbol)
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyLatest, field, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyLatest, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	// dashboard snapshots live in sqlite/postgres; redis only keeps latest
	return nil
}

func (r *Repo) InsertPortfolioValue(ctx context.Context, ts int64, userID string, total float64, payload string) error {
	// 1) Stream: XADD <stream> * ts user total payload
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.valueStream,
		Values: map[string]any{
			"ts_ms":   ts,
			"user":    userID,
			"total":   total,
			"payload": payload,
		},
	}).Result()
	if err != nil {
		return err
	}

	// 2) PubSub: PUBLISH <channel> json
	msg := fmt.Sprintf(`{"ts_ms":%d,"user":"%s","total":%.8f,"payload":%q}`, ts, userID, total, payload)
	return r.rdb.Publish(ctx, r.valueChan, msg).Err()
}

func (r *Repo) InsertOrder(ctx context.Context, ts int64, exchange, symbol, side string, quantity, price float64, orderID string) error {
	// the durable order log lives in sqlite
	return nil
}

var _ port.Repository = (*Repo)(nil)
