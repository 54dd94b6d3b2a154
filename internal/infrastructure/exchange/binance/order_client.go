package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
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

type orderResp struct {
	OrderID int64  `json:"orderId"`
	Status  string `json:"status"`
}

func (c *OrderClient) PlaceOrder(ctx context.Context, keys port.ExchangeKeys, order domain.OrderRequest) (string, error) {
	params := url.Values{}
	params.Set("symbol", c.converter.Coin2Symbol(order.Symbol))
	params.Set("side", strings.ToUpper(string(order.Side)))
	params.Set("type", "LIMIT")
	params.Set("timeInForce", "GTC")
	params.Set("quantity", fmt.Sprintf("%.8g", order.Quantity))
	params.Set("price", fmt.Sprintf("%.8g", order.Price))

	client := NewAPIClient(keys.APIKey, keys.SecretKey, c.baseURL, c.timeout)
	body, err := client.signedRequest(ctx, http.MethodPost, "/api/v3/order", params)
	if err != nil {
		return "", fmt.Errorf("place order failed: %w", err)
	}

	var resp orderResp
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse order response failed: %w", err)
	}
	if resp.OrderID == 0 {
		return "", fmt.Errorf("order rejected: %s", string(body))
	}
	return fmt.Sprintf("%d", resp.OrderID), nil
}
