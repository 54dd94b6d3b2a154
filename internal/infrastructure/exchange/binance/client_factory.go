package binance

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"
)

// Credentials holds one API credential pair and its signing method. The
// secret never leaves this struct and is never logged.
type Credentials struct {
	apiKey    string
	apiSecret string
}

func NewCredentials(apiKey, apiSecret string) *Credentials {
	return &Credentials{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// Sign computes the hex HMAC-SHA256 of the canonical query string. Binance
// verifies the signature against the exact byte sequence it receives, so the
// caller must sign the same encoded string it sends.
func (c *Credentials) Sign(data string) string {
	h := hmac.New(sha256.New, []byte(c.apiSecret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}

func (c *Credentials) APIKey() string {
	return c.apiKey
}

// APIClient is the shared transport for signed Binance REST calls. One
// client is built per aggregation call from freshly loaded keys.
type APIClient struct {
	credentials *Credentials
	httpClient  *http.Client
	baseURL     string
}

func NewAPIClient(apiKey, apiSecret, baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &APIClient{
		credentials: NewCredentials(apiKey, apiSecret),
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
	}
}
