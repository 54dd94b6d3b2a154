package coinbase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cryptofolio/internal/application/port"
	"cryptofolio/internal/domain"
)

// OrderClient submits one-shot limit orders. Success is judged purely by the
// presence of an order id in the response body.
type OrderClient struct {
	baseURL   string
	timeout   time.Duration
	converter port.SymbolConverter
}

func NewOrderClient(baseURL string, timeout time.Duration, converter port.SymbolConverter) *OrderClient {
	return &OrderClient{baseURL: baseURL, timeout: timeout, converter: converter}
}

type orderPayload struct {
	ProductID string `json:"product_id"`
	Side      string `json:"side"`
	Price     string `json:"price"`
	Size      string `json:"size"`
	Type      string `json:"type"`
}

type orderResp struct {
	ID string `json:"id"`
}

func (c *OrderClient) PlaceOrder(ctx context.Context, keys port.ExchangeKeys, order domain.OrderRequest) (string, error) {
	payload := orderPayload{
		ProductID: productID(order.Symbol, c.converter.SymbolSuffix()),
		Side:      strings.ToLower(string(order.Side)),
		Price:     fmt.Sprintf("%.8g", order.Price),
		Size:      fmt.Sprintf("%.8g", order.Quantity),
		Type:      "limit",
	}

	client := NewAPIClient(keys.APIKey, keys.SecretKey, c.baseURL, c.timeout)
	body, err := client.signedJSONRequest(ctx, http.MethodPost, "/orders", payload)
	if err != nil {
		return "", fmt.Errorf("place order failed: %w", err)
	}

	var resp orderResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse order response failed: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("order rejected: %s", string(body))
	}
	return resp.ID, nil
}

// productID renders the dash-separated pair Coinbase expects: BTC -> BTC-USDT.
func productID(coin, quote string) string {
	return strings.ToUpper(strings.TrimSpace(coin)) + "-" + strings.ToUpper(quote)
}
