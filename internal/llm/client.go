// Package llm is a minimal client for OpenAI-compatible chat completion
// APIs. Both pipeline stages that talk to the model (SQL generation and
// answer formatting) go through it.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	BaseURL     string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

type Client struct {
	baseURL     string
	apiKey      string
	temperature float64
	client      *http.Client
}

// Request is one completion exchange. Model selection is per call since
// the pipeline uses a stronger model for SQL than for prose.
type Request struct {
	Model  string
	System string
	User   string
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

// Complete sends one system+user exchange and returns the assistant text.
// Error text from the API is surfaced verbatim so callers can categorize
// timeout and rate limit failures.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Model) == "" {
		return "", fmt.Errorf("model is required")
	}
	payload := map[string]any{
		"model": req.Model,
		"messages": []map[string]string{
			{"role": "system", "content": req.System},
			{"role": "user", "content": req.User},
		},
		"temperature": c.temperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request chat completion: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read chat response body: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("chat completion rate limit exceeded: status=%d body=%s", resp.StatusCode, string(rawBody))
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("chat completion rejected API key: status=%d body=%s", resp.StatusCode, string(rawBody))
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("chat completion failed: status=%d body=%s", resp.StatusCode, string(rawBody))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawBody, &parsed); err != nil {
		return "", fmt.Errorf("decode chat completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty chat completion choices")
	}
	content := parsed.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("model returned empty content")
	}
	return content, nil
}
