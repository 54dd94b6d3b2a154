package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"
)

func TestForwardShapesPayload(t *testing.T) {
	var got forwardPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/binance-proxy" {
			t.Errorf("path = %s, want /binance-proxy", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"balances":[]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	params := url.Values{}
	params.Set("timestamp", "1700000000000")
	params.Set("signature", "abc")
	headers := map[string]string{"X-MBX-APIKEY": "key"}

	body, err := client.Forward(context.Background(), "/api/v3/account", http.MethodGet, params, headers)
	if err != nil {
		t.Fatal(err)
	}
	if string(body) != `{"balances":[]}` {
		t.Fatalf("body = %s", body)
	}

	if got.Endpoint != "/api/v3/account" || got.Method != http.MethodGet {
		t.Fatalf("payload = %+v", got)
	}
	if got.Params["timestamp"] != "1700000000000" || got.Params["signature"] != "abc" {
		t.Fatalf("params = %+v", got.Params)
	}
	if got.Headers["X-MBX-APIKEY"] != "key" {
		t.Fatalf("headers = %+v", got.Headers)
	}
}

func TestForwardSurfacesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("relay unavailable"))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	if _, err := client.Forward(context.Background(), "/api/v3/account", http.MethodGet, nil, nil); err == nil {
		t.Fatal("expected error on non-200 relay response")
	}
}
