package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/poiesic/juris/core"
)

// DefaultTavilyURL is the Tavily search endpoint.
const DefaultTavilyURL = "https://api.tavily.com/search"

// Searcher runs one web search.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]core.WebResult, error)
}

// TavilyClient is a minimal client for the Tavily search API.
type TavilyClient struct {
	apiKey      string
	url         string
	searchDepth string
	client      *http.Client
}

var _ Searcher = (*TavilyClient)(nil)

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient) error

// WithURL overrides the endpoint. Used by tests.
func WithURL(url string) TavilyOption {
	return func(c *TavilyClient) error {
		c.url = url
		return nil
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) TavilyOption {
	return func(c *TavilyClient) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		c.client = client
		return nil
	}
}

// WithSearchDepth sets "basic" or "advanced". Default is "advanced".
func WithSearchDepth(depth string) TavilyOption {
	return func(c *TavilyClient) error {
		if depth != "basic" && depth != "advanced" {
			return fmt.Errorf("unknown search depth %q", depth)
		}
		c.searchDepth = depth
		return nil
	}
}

// NewTavilyClient creates a client authenticated with apiKey.
func NewTavilyClient(apiKey string, opts ...TavilyOption) (*TavilyClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &TavilyClient{
		apiKey:      apiKey,
		url:         DefaultTavilyURL,
		searchDepth: "advanced",
		client:      &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []core.WebResult `json:"results"`
}

// Search posts query to the API and returns its results.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]core.WebResult, error) {
	body, err := json.Marshal(tavilyRequest{
		Query:       query,
		SearchDepth: c.searchDepth,
		MaxResults:  maxResults,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var out tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return out.Results, nil
}
