package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"cryptofolio/internal/application/port"
)

// BalanceProxy forwards a signed account request through a server-side
// function instead of calling the exchange directly.
type BalanceProxy interface {
	Forward(ctx context.Context, endpoint, method string, params url.Values, headers map[string]string) ([]byte, error)
}

// AccountClient fetches spot balances, either directly or through the
// configured proxy. A fresh client is built per call from loaded keys.
type AccountClient struct {
	baseURL string
	timeout time.Duration
	proxy   BalanceProxy // nil means direct calls
}

func NewAccountClient(baseURL string, timeout time.Duration, proxy BalanceProxy) *AccountClient {
	return &AccountClient{baseURL: baseURL, timeout: timeout, proxy: proxy}
}

type accountResp struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// Balances returns the strictly-positive free+locked amounts of the account.
func (c *AccountClient) Balances(ctx context.Context, keys port.ExchangeKeys) ([]port.Balance, error) {
	body, err := c.fetchAccount(ctx, keys)
	if err != nil {
		return nil, err
	}

	var resp accountResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode account response failed: %w", err)
	}

	out := make([]port.Balance, 0, len(resp.Balances))
	for _, b := range resp.Balances {
		free, _ := strconv.ParseFloat(b.Free, 64)
		locked, _ := strconv.ParseFloat(b.Locked, 64)
		total := free + locked
		if total <= 0 {
			continue
		}
		out = append(out, port.Balance{Asset: b.Asset, Amount: total})
	}
	return out, nil
}

func (c *AccountClient) fetchAccount(ctx context.Context, keys port.ExchangeKeys) ([]byte, error) {
	if c.proxy == nil {
		client := NewAPIClient(keys.APIKey, keys.SecretKey, c.baseURL, c.timeout)
		return client.signedRequest(ctx, http.MethodGet, "/api/v3/account", nil)
	}

	// proxy path: the request is signed here, the proxy only forwards it
	creds := NewCredentials(keys.APIKey, keys.SecretKey)
	params := url.Values{}
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
	params.Set("signature", creds.Sign(params.Encode()))

	headers := map[string]string{"X-MBX-APIKEY": keys.APIKey}
	return c.proxy.Forward(ctx, "/api/v3/account", http.MethodGet, params, headers)
}
