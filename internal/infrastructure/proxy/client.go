package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptofolio/internal/infrastructure/exchange"
)

// Client forwards pre-signed exchange requests through a server-side relay
// function. The request is already signed by the caller; the relay only
// replays it against the exchange, so the secret key never travels here.
type Client struct {
	functionsURL string
	httpClient   *http.Client
}

func NewClient(functionsURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		functionsURL: strings.TrimRight(functionsURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type forwardPayload struct {
	Endpoint string            `json:"endpoint"`
	Method   string            `json:"method"`
	Params   map[string]string `json:"params,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
}

// Forward relays one request and returns the upstream body verbatim.
func (c *Client) Forward(ctx context.Context, endpoint, method string, params url.Values, headers map[string]string) ([]byte, error) {
	flat := make(map[string]string, len(params))
	for k := range params {
		flat[k] = params.Get(k)
	}

	body, err := json.Marshal(forwardPayload{
		Endpoint: endpoint,
		Method:   method,
		Params:   flat,
		Headers:  headers,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.functionsURL+"/binance-proxy", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, exchange.ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("proxy http %d: %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
