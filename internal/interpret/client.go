package interpret

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client is the HTTP-based interpreter. Works with any OpenAI-compatible
// chat completions API (OpenAI, Ollama, vLLM, Together, Groq, etc.).
type Client struct {
	baseURL string
	apiKey  string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a new interpretation client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if cfg.APIKey == "" && strings.Contains(cfg.BaseURL, "api.openai.com") {
		return nil, ErrNoAPIKey
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		config:  cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  cfg.Logger.With("component", "interpret.client"),
	}, nil
}

// Interpret analyzes a single gesture snapshot.
func (c *Client) Interpret(ctx context.Context, req *Request) (*Interpretation, error) {
	if req == nil || len(req.Gestures) == 0 {
		return nil, ErrNoGestures
	}
	return c.complete(ctx, buildPrompt(req))
}

// InterpretTimeline analyzes the emotional arc across a session.
func (c *Client) InterpretTimeline(ctx context.Context, moments []Moment) (*Interpretation, error) {
	if len(moments) == 0 {
		return nil, ErrEmptyTimeline
	}
	return c.complete(ctx, buildTimelinePrompt(moments))
}

// Health checks API connectivity.
func (c *Client) Health(ctx context.Context) error {
	url := c.baseURL + "/models"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return wrapErr(fmt.Errorf("create request: %w", err))
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapErr(fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return parseError(resp)
	}
	return nil
}

// Close releases resources.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) complete(ctx context.Context, prompt string) (*Interpretation, error) {
	start := time.Now()

	payload := map[string]interface{}{
		"model": c.config.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"max_tokens": c.config.MaxTokens,
	}
	if c.config.Temperature > 0 {
		payload["temperature"] = c.config.Temperature
	}

	resp, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, parseError(resp)
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, wrapErr(fmt.Errorf("decode response: %w", err))
	}

	if len(result.Choices) == 0 {
		return nil, wrapErr(fmt.Errorf("no choices returned"))
	}

	return &Interpretation{
		Text:      truncateWords(result.Choices[0].Message.Content, c.config.MaxWords),
		Model:     result.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

// post makes a POST request with retries.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapErr(fmt.Errorf("marshal payload: %w", err))
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, wrapErr(fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	return c.doWithRetry(ctx, req, body)
}

// doWithRetry performs the request with bounded, linearly backed-off
// retries on transient failures.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, body []byte) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay * time.Duration(attempt)):
			}
			// Reset body for retry
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = wrapErr(err)
			c.logger.Warn("request failed, retrying",
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			apiErr := parseError(resp)
			resp.Body.Close()
			lastErr = apiErr

			if ae, ok := apiErr.(*APIError); ok && !ae.IsRetryable() {
				return nil, apiErr
			}
			c.logger.Warn("retrying request",
				"attempt", attempt+1,
				"status", resp.StatusCode,
			)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// parseError reads and parses an error response.
func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	// Try to parse OpenAI-style error
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := ""
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Code:       code,
	}
}

// API response types
type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// Verify Client implements Interpreter at compile time.
var _ Interpreter = (*Client)(nil)
