package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultEndpoint  = "https://api.anthropic.com/v1/messages"
	apiVersion       = "2023-06-01"
	maxResponseBytes = 1 << 20
)

// Request is one oracle query. An explicit Model wins; otherwise the speed
// hint picks between the client's standard and fast models.
type Request struct {
	Prompt      string
	System      string
	Model       string
	Fast        bool
	MaxTokens   int
	Temperature float64
}

// Oracle is the external text-generation service the pipeline delegates
// single-prompt queries to. Implementations must be safe for concurrent
// use.
type Oracle interface {
	Query(ctx context.Context, req Request) (string, error)
}

// Client calls the Anthropic Messages API.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	fastModel  string
	httpClient *http.Client

	// Stats aggregates call latencies and failures for the stats endpoint.
	Stats *Stats
}

var _ Oracle = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the Messages API URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithModels sets the standard and fast model identifiers.
func WithModels(standard, fast string) Option {
	return func(c *Client) {
		if standard != "" {
			c.model = standard
		}
		if fast != "" {
			c.fastModel = fast
		}
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:    apiKey,
		endpoint:  defaultEndpoint,
		model:     ModelDefault,
		fastModel: ModelFast,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		Stats: NewStats(time.Hour),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the standard model identifier the client queries.
func (c *Client) Model() string { return c.model }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Query sends one prompt and returns the reply text.
func (c *Client) Query(ctx context.Context, req Request) (string, error) {
	start := time.Now()
	text, err := c.query(ctx, req)
	c.Stats.Record(time.Since(start).Milliseconds(), err != nil)
	return text, err
}

func (c *Client) query(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
		if req.Fast {
			model = c.fastModel
		}
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages: []anthropicMessage{
			{Role: "user", Content: req.Prompt},
		},
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("claude api: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &TransportError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claude api status %d: %s", resp.StatusCode, string(respBody))
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Error != nil {
		return "", fmt.Errorf("claude error: %s: %s", apiResp.Error.Type, apiResp.Error.Message)
	}
	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}

	return apiResp.Content[0].Text, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
