package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	rt "github.com/jamespfennell/gtfs/proto"
	"google.golang.org/protobuf/proto"
)

// Client fetches GTFS-RT protobuf feeds from an upstream API that selects
// the feed with a feed_id query parameter and authenticates with a key
// query parameter.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a feed client. timeout bounds each request including
// body read.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves and decodes one feed.
func (c *Client) Fetch(ctx context.Context, feedID string) (*rt.FeedMessage, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("bad feed base URL %q: %w", c.baseURL, err)
	}
	q := u.Query()
	q.Set("feed_id", feedID)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedID, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d fetching feed %s", resp.StatusCode, feedID)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading feed %s: %w", feedID, err)
	}
	var msg rt.FeedMessage
	if err := proto.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("decoding feed %s: %w", feedID, err)
	}
	return &msg, nil
}
