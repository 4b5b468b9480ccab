package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrGatewayURLRequired is returned when the gateway URL is missing.
	ErrGatewayURLRequired = errors.New("sms gateway url is required")
	// ErrGatewayRejected is returned when the gateway responds non-2xx.
	ErrGatewayRejected = errors.New("sms gateway rejected the message")
)

const defaultGatewayTimeout = 5 * time.Second

// HTTPGateway is an Sms implementation backed by a JSON-over-HTTP provider.
type HTTPGateway struct {
	client *http.Client
	url    string
	apiKey string
	sender string
}

// HTTPGatewayConfig configures the HTTP gateway implementation.
type HTTPGatewayConfig struct {
	// URL is the provider's dispatch endpoint.
	URL string
	// APIKey is the bearer credential for the provider, optional.
	APIKey string
	// Sender is the sender ID attached to outgoing messages.
	Sender string
	// Timeout bounds each dispatch call.
	Timeout time.Duration
}

// NewHTTPGateway constructs an Sms sender backed by an HTTP provider.
func NewHTTPGateway(cfg HTTPGatewayConfig) (*HTTPGateway, error) {
	if cfg.URL == "" {
		return nil, ErrGatewayURLRequired
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultGatewayTimeout
	}

	return &HTTPGateway{
		client: &http.Client{Timeout: timeout},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		sender: cfg.Sender,
	}, nil
}

// Send delivers the message through the HTTP provider.
func (s *HTTPGateway) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"to":      msg.To,
		"from":    s.sender,
		"message": msg.Body,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck // drain for connection reuse
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}

	return nil
}

// Close releases idle provider connections.
func (s *HTTPGateway) Close() error {
	s.client.CloseIdleConnections()

	return nil
}
