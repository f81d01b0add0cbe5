package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sri5hat/aptdetection/internal/domain"
)

// HTTPSinkConfig configures the HTTP forwarder.
type HTTPSinkConfig struct {
	URL     string
	Timeout time.Duration
	Headers map[string]string
}

// HTTPSink POSTs each alert as JSON to a remote endpoint.
type HTTPSink struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// NewHTTPSink creates an HTTP sink.
func NewHTTPSink(cfg HTTPSinkConfig) (*HTTPSink, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("http sink URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSink{
		url:     cfg.URL,
		headers: cfg.Headers,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// WriteAlert posts one alert.
func (s *HTTPSink) WriteAlert(ctx context.Context, a *domain.Alert) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("http request failed with status %s", resp.Status)
	}
	return nil
}

// Name identifies the sink in logs.
func (s *HTTPSink) Name() string { return "http" }

// Close releases HTTP resources.
func (s *HTTPSink) Close() error { return nil }
