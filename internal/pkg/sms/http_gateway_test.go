package sms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewHTTPGateway(t *testing.T) {
	if _, err := NewHTTPGateway(HTTPGatewayConfig{}); !errors.Is(err, ErrGatewayURLRequired) {
		t.Fatalf("expected ErrGatewayURLRequired, got %v", err)
	}

	gw, err := NewHTTPGateway(HTTPGatewayConfig{URL: "http://localhost:9"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gw.client.Timeout != defaultGatewayTimeout {
		t.Fatalf("expected default timeout, got %v", gw.client.Timeout)
	}
}

func TestHTTPGatewaySend(t *testing.T) {
	t.Run("DeliversPayload", func(t *testing.T) {
		var got map[string]string
		var auth string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
				t.Errorf("failed to decode payload: %v", err)
			}
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		gw, err := NewHTTPGateway(HTTPGatewayConfig{
			URL:    srv.URL,
			APIKey: "secret-key",
			Sender: "OtpGate",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err = gw.Send(context.Background(), Message{To: "+15550001111", Body: "Your verification code is 482913"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if auth != "Bearer secret-key" {
			t.Fatalf("expected bearer auth header, got %q", auth)
		}
		if got["to"] != "+15550001111" || got["from"] != "OtpGate" || got["message"] == "" {
			t.Fatalf("unexpected payload: %v", got)
		}
	})

	t.Run("RejectedStatus", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		gw, err := NewHTTPGateway(HTTPGatewayConfig{URL: srv.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err = gw.Send(context.Background(), Message{To: "+15550001111", Body: "code"})
		if !errors.Is(err, ErrGatewayRejected) {
			t.Fatalf("expected ErrGatewayRejected, got %v", err)
		}
	})
}

func TestNewFromDriver(t *testing.T) {
	if _, err := NewFromDriver("log", HTTPGatewayConfig{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewFromDriver("http", HTTPGatewayConfig{URL: "http://localhost:9"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewFromDriver("smoke-signal", HTTPGatewayConfig{}); !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}
