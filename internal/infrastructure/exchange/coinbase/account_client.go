package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cryptofolio/internal/application/port"
)

// AccountClient fetches wallet balances. A fresh client is built per call
// from loaded keys.
type AccountClient struct {
	baseURL string
	timeout time.Duration
}

func NewAccountClient(baseURL string, timeout time.Duration) *AccountClient {
	return &AccountClient{baseURL: baseURL, timeout: timeout}
}

type accountsResp struct {
	Accounts []struct {
		Currency         string `json:"currency"`
		AvailableBalance struct {
			Value string `json:"value"`
		} `json:"available_balance"`
	} `json:"accounts"`
}

// Balances returns the strictly-positive available amounts of the account.
func (c *AccountClient) Balances(ctx context.Context, keys port.ExchangeKeys) ([]port.Balance, error) {
	client := NewAPIClient(keys.APIKey, keys.SecretKey, c.baseURL, c.timeout)
	body, err := client.signedGetRequest(ctx, "/accounts")
	if err != nil {
		return nil, err
	}

	var resp accountsResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode accounts response failed: %w", err)
	}

	out := make([]port.Balance, 0, len(resp.Accounts))
	for _, a := range resp.Accounts {
		amount, _ := strconv.ParseFloat(a.AvailableBalance.Value, 64)
		if amount <= 0 {
			continue
		}
		out = append(out, port.Balance{Asset: a.Currency, Amount: amount})
	}
	return out, nil
}
