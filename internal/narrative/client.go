package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ClientConfig configures the HTTP narrator.
type ClientConfig struct {
	URL     string
	Timeout time.Duration
}

// Client posts narration requests to an external text-generation service.
type Client struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewClient creates an HTTP narrator.
func NewClient(cfg ClientConfig, log *zap.Logger) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("narrative service URL is empty")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}, nil
}

type generateRequest struct {
	Task   string `json:"task"`
	Prompt string `json:"prompt"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate asks the narration service for text. Any transport or decode
// failure is returned to the caller, who falls back to local text.
func (c *Client) Generate(ctx context.Context, task, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Task: task, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("failed to marshal narration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create narration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("narration request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("narration request failed with status %s", resp.Status)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode narration response: %w", err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("narration response contained no text")
	}
	return out.Text, nil
}
