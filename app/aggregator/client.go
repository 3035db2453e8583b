package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// Client talks to the upstream content aggregator. Scoring and source
// normalization happen upstream; this client only moves typed responses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

func NewClient(baseURL string, httpClient *http.Client, userAgent string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// FetchFeed requests the flat item pool plus the pre-windowed fresh and today
// buckets used by feed composition.
func (c *Client) FetchFeed(ctx context.Context, limit int) (*FeedResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	data, err := c.get(ctx, "/v1/feed", query)
	if err != nil {
		return nil, err
	}

	var resp FeedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid feed response shape: %v", ErrLogical, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrLogical, resp.Error)
	}
	if resp.Feed == nil {
		return nil, fmt.Errorf("%w: invalid feed response shape: missing feed field", ErrLogical)
	}

	return &resp, nil
}

// FetchExplore requests one explore page. An empty cursor requests the first
// page; filter selects a content kind and may be empty.
func (c *Client) FetchExplore(ctx context.Context, limit int, cursor, filter string) (*ExploreResponse, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if filter != "" {
		query.Set("filter", filter)
	}

	data, err := c.get(ctx, "/v1/explore", query)
	if err != nil {
		return nil, err
	}

	var resp ExploreResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: invalid explore response shape: %v", ErrLogical, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrLogical, resp.Error)
	}
	if resp.Items == nil {
		return nil, fmt.Errorf("%w: invalid explore response shape: missing items field", ErrLogical)
	}

	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d %s", ErrUnavailable, resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrUnavailable, err)
	}

	return data, nil
}
