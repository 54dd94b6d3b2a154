package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"cryptofolio/internal/application"
	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// PriceSource is the slice of MarketService the aggregator needs.
type PriceSource interface {
	GetPrices(ctx context.Context, symbols []string) ([]domain.PriceRecord, error)
}

// PortfolioServiceDeps wires the two hardcoded exchange providers plus the
// credential source. Keys are loaded fresh on every call and dropped when the
// call returns.
type PortfolioServiceDeps struct {
	Credentials      port.CredentialSource
	Prices           PriceSource
	Converter        port.SymbolConverter
	WatchedCoins     []string
	BinanceBalances  port.BalanceFetcher
	CoinbaseBalances port.BalanceFetcher
	BinanceOrders    port.OrderPlacer
	CoinbaseOrders   port.OrderPlacer
	Repo             port.Repository
}

type PortfolioService struct {
	deps PortfolioServiceDeps
}

func NewPortfolioService(deps PortfolioServiceDeps) *PortfolioService {
	if len(deps.WatchedCoins) == 0 {
		deps.WatchedCoins = application.DefaultWatchedCoins
	}
	return &PortfolioService{deps: deps}
}

// GetPortfolio combines per-exchange balance snapshots into one valuation.
// An exchange without configured credentials is silently skipped; no
// configured exchange at all yields an empty, zero-valued portfolio.
func (s *PortfolioService) GetPortfolio(ctx context.Context, userID string) (*domain.PortfolioSnapshot, error) {
	if s.deps.Credentials == nil {
		return nil, application.ErrAuthRequired
	}
	keys, err := s.deps.Credentials.APIKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.PortfolioSnapshot{}
	if keys.Binance == nil && keys.Coinbase == nil {
		return snapshot, nil
	}

	prices, err := s.deps.Prices.GetPrices(ctx, s.deps.WatchedCoins)
	if err != nil {
		return nil, err
	}
	priceBySymbol := make(map[string]float64, len(prices))
	for _, p := range prices {
		priceBySymbol[p.Symbol] = p.Price
	}

	if keys.Binance != nil {
		if err := s.mergeBalances(ctx, snapshot, s.deps.BinanceBalances, *keys.Binance, priceBySymbol); err != nil {
			return nil, err
		}
	}
	if keys.Coinbase != nil {
		if err := s.mergeBalances(ctx, snapshot, s.deps.CoinbaseBalances, *keys.Coinbase, priceBySymbol); err != nil {
			return nil, err
		}
	}

	snapshot.Finalize()

	if s.deps.Repo != nil {
		now := time.Now().UnixMilli()
		payload := fmt.Sprintf(`{"assets":%d}`, len(snapshot.Assets))
		_ = s.deps.Repo.InsertPortfolioValue(ctx, now, userID, snapshot.TotalValue, payload)
	}
	return snapshot, nil
}

func (s *PortfolioService) mergeBalances(
	ctx context.Context,
	snapshot *domain.PortfolioSnapshot,
	fetcher port.BalanceFetcher,
	keys port.ExchangeKeys,
	priceBySymbol map[string]float64,
) error {
	balances, err := fetcher.Balances(ctx, keys)
	if err != nil {
		return err
	}
	for _, b := range balances {
		if b.Amount <= 0 {
			continue
		}
		symbol := s.deps.Converter.Symbol2Coin(b.Asset)
		price := priceBySymbol[symbol]
		snapshot.Add(symbol, b.Amount, b.Amount*price)
	}
	return nil
}

// ExecuteTrade resolves the target exchange, signs and submits the order
// once, and reports the remote order id. Fire and forget: no retry, no
// idempotency key, no local order state.
func (s *PortfolioService) ExecuteTrade(ctx context.Context, userID string, order domain.OrderRequest) (string, error) {
	if s.deps.Credentials == nil {
		return "", application.ErrAuthRequired
	}
	keys, err := s.deps.Credentials.APIKeys(ctx, userID)
	if err != nil {
		return "", err
	}

	exchange := order.Exchange
	if exchange == "" {
		exchange = application.ExchangeBinance
	}

	var placer port.OrderPlacer
	var exchangeKeys *port.ExchangeKeys
	switch {
	case strings.EqualFold(exchange, application.ExchangeBinance):
		placer, exchangeKeys = s.deps.BinanceOrders, keys.Binance
	case strings.EqualFold(exchange, application.ExchangeCoinbase):
		placer, exchangeKeys = s.deps.CoinbaseOrders, keys.Coinbase
	default:
		return "", fmt.Errorf("%w: %s", application.ErrUnsupportedExchange, exchange)
	}
	if exchangeKeys == nil {
		return "", fmt.Errorf("%w: %s", application.ErrMissingCredentials, exchange)
	}

	orderID, err := placer.PlaceOrder(ctx, *exchangeKeys, order)
	if err != nil {
		return "", err
	}

	if s.deps.Repo != nil {
		_ = s.deps.Repo.InsertOrder(ctx, time.Now().UnixMilli(),
			exchange, order.Symbol, string(order.Side), order.Quantity, order.Price, orderID)
	}

	log.Info().
		Str("exchange", exchange).
		Str("symbol", order.Symbol).
		Str("side", string(order.Side)).
		Float64("quantity", order.Quantity).
		Float64("price", order.Price).
		Str("orderID", orderID).
		Msg("order placed")

	return orderID, nil
}
