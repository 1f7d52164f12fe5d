package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Result limits accepted by the search endpoint.
const (
	MinResults = 1
	MaxResults = 50
)

// Item is a single search hit.
type Item struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
	Channel string `json:"channel,omitempty"`
	URL     string `json:"url"`
}

// Searcher resolves a query into at most maxResults items.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]Item, error)
}

// searchResponse models the subset of search.list used here.
type searchResponse struct {
	Items []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
		} `json:"snippet"`
	} `json:"items"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client queries the YouTube Data API.
type Client struct {
	apiKey     string
	baseURL    string
	watchURL   string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// New creates a search client. watchURL is the prefix joined with each video id.
func New(apiKey, baseURL, watchURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("youtube api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("youtube base url required")
	}
	watchURL = strings.TrimSpace(watchURL)
	if watchURL == "" {
		watchURL = "https://www.youtube.com/watch?v="
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		watchURL:   watchURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search lists videos matching query.
func (c *Client) Search(ctx context.Context, query string, maxResults int) ([]Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if maxResults < MinResults || maxResults > MaxResults {
		return nil, fmt.Errorf("max results must be between %d and %d, got %d", MinResults, MaxResults, maxResults)
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse youtube url: %w", err)
	}
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("key", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("youtube search returned %d: %s (latency=%v)", resp.StatusCode, apiErr.Error.Message, latency)
		}
		return nil, fmt.Errorf("youtube search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode youtube response: %w", err)
	}

	items := make([]Item, 0, len(payload.Items))
	for _, entry := range payload.Items {
		id := strings.TrimSpace(entry.ID.VideoID)
		if id == "" {
			continue
		}
		items = append(items, Item{
			VideoID: id,
			Title:   entry.Snippet.Title,
			Channel: entry.Snippet.ChannelTitle,
			URL:     c.watchURL + id,
		})
	}
	return items, nil
}

// URLs extracts the watch URLs of items in order.
func URLs(items []Item) []string {
	urls := make([]string, len(items))
	for i, item := range items {
		urls[i] = item.URL
	}
	return urls
}
