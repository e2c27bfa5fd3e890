package serper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultURL           = "https://google.serper.dev/search"
	defaultResultCount   = 5
	maxResponseSizeBytes = 2 << 20
)

var ErrNotConfigured = errors.New("serper api key is not configured")

type Config struct {
	APIKey      string        `envconfig:"API_KEY" split_words:"true"`
	URL         string        `envconfig:"URL" split_words:"true" default:"https://google.serper.dev/search"`
	ResultCount int           `envconfig:"RESULT_COUNT" split_words:"true" default:"5"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

type Client struct {
	url         string
	apiKey      string
	resultCount int
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num,omitempty"`
}

type searchResponse struct {
	Organic []Result `json:"organic"`
}

// NewClient returns nil without error when no api key is configured, so
// callers can treat search as an optional capability.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, nil
	}

	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		baseURL = defaultURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid serper url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	count := cfg.ResultCount
	if count <= 0 {
		count = defaultResultCount
	}

	client := &Client{
		url:         baseURL,
		apiKey:      apiKey,
		resultCount: count,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

func MustNew(cfg Config, opts ...Option) *Client {
	client, err := NewClient(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return client
}

func (c *Client) Search(ctx context.Context, query string) ([]Result, error) {
	if c == nil {
		return nil, ErrNotConfigured
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("search query is empty")
	}

	body, err := json.Marshal(searchRequest{Q: query, Num: c.resultCount})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSizeBytes))
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("search http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if len(parsed.Organic) > c.resultCount {
		parsed.Organic = parsed.Organic[:c.resultCount]
	}
	return parsed.Organic, nil
}
