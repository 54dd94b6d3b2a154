package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/infrastructure/exchange"
)

// MarketClient serves the public (unsigned) ticker endpoints. Calls are
// rate-limited and bounded by the configured request timeout.
type MarketClient struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

func NewMarketClient(baseURL string, timeout time.Duration, requestsPerSecond int) *MarketClient {
	if baseURL == "" {
		baseURL = "https://api.binance.com"
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	return &MarketClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond),
		timeout: timeout,
	}
}

// tickerResp is the /api/v3/ticker/24hr row; numeric fields arrive as strings.
type tickerResp struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
}

type priceResp struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

func (c *MarketClient) Ticker24h(ctx context.Context, symbol string) (port.Ticker24h, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.baseURL, url.QueryEscape(symbol))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return port.Ticker24h{}, err
	}

	var resp tickerResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return port.Ticker24h{}, fmt.Errorf("decode ticker failed: %w", err)
	}
	return normalizeTicker(resp), nil
}

func (c *MarketClient) AllPrices(ctx context.Context) ([]port.SymbolPrice, error) {
	body, err := c.get(ctx, c.baseURL+"/api/v3/ticker/price")
	if err != nil {
		return nil, err
	}

	var rows []priceResp
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode price table failed: %w", err)
	}

	out := make([]port.SymbolPrice, 0, len(rows))
	for _, r := range rows {
		price, _ := strconv.ParseFloat(r.Price, 64)
		out = append(out, port.SymbolPrice{Symbol: r.Symbol, Price: price})
	}
	return out, nil
}

func (c *MarketClient) AllTickers(ctx context.Context) ([]port.Ticker24h, error) {
	body, err := c.get(ctx, c.baseURL+"/api/v3/ticker/24hr")
	if err != nil {
		return nil, err
	}

	var rows []tickerResp
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode ticker set failed: %w", err)
	}

	out := make([]port.Ticker24h, 0, len(rows))
	for _, r := range rows {
		out = append(out, normalizeTicker(r))
	}
	return out, nil
}

func (c *MarketClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, exchange.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &exchange.APIError{Exchange: "binance", Status: resp.StatusCode, Message: remoteMessage(body)}
	}
	return body, nil
}

func normalizeTicker(r tickerResp) port.Ticker24h {
	last, _ := strconv.ParseFloat(r.LastPrice, 64)
	change, _ := strconv.ParseFloat(r.PriceChangePercent, 64)
	volume, _ := strconv.ParseFloat(r.Volume, 64)
	quote, _ := strconv.ParseFloat(r.QuoteVolume, 64)
	return port.Ticker24h{
		Symbol:      r.Symbol,
		LastPrice:   last,
		ChangePct:   change,
		Volume:      volume,
		QuoteVolume: quote,
	}
}

// remoteMessage extracts Binance's {"code":..,"msg":".."} error body, falling
// back to the raw body.
func remoteMessage(body []byte) string {
	var e struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Msg != "" {
		return e.Msg
	}
	return string(body)
}
