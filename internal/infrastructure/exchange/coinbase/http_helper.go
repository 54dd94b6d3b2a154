package coinbase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cryptofolio/internal/infrastructure/exchange"
)

// signedJSONRequest sends a signed request carrying a JSON payload.
func (c *APIClient) signedJSONRequest(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doSignedRequest(req, path, string(body))
}

// signedGetRequest sends a signed request with an empty body.
func (c *APIClient) signedGetRequest(ctx context.Context, path string) ([]byte, error) {
	endpoint := strings.TrimRight(c.baseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return c.doSignedRequest(req, path, "")
}

func (c *APIClient) doSignedRequest(req *http.Request, path, payload string) ([]byte, error) {
	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	// Coinbase signature
	// message = timestamp + method + requestPath + body
	signStr := timestamp + req.Method + path + payload
	signature := c.credentials.Sign(signStr)

	req.Header.Set("CB-ACCESS-KEY", c.credentials.APIKey())
	req.Header.Set("CB-ACCESS-SIGN", signature)
	req.Header.Set("CB-ACCESS-TIMESTAMP", timestamp)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exchange.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &exchange.APIError{Exchange: "coinbase", Status: resp.StatusCode, Message: string(body)}
	}

	return body, nil
}
