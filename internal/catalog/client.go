package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher abstracts the outbound catalog request. Implementations return the
// response body for a 2xx status and an error for anything else; no retries.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Config carries the catalog provider settings. It is injected explicitly at
// construction; nothing in this package reads the environment.
type Config struct {
	BaseURL string // e.g. https://www.googleapis.com or .../books/v1
	APIKey  string // optional, appended as ?key= when set
}

const defaultBaseURL = "https://www.googleapis.com/books/v1"

// normalizedBaseURL accepts either the API host or the full /books/v1 prefix
// and always returns the latter, so volume URLs never 404 on a missing path.
func (c Config) normalizedBaseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	if strings.HasSuffix(strings.ToLower(base), "/books/v1") {
		return base
	}
	return base + "/books/v1"
}

// Client fetches documents from the Google Books API.
type Client struct {
	http *http.Client
}

// NewClient creates a catalog HTTP client.
func NewClient() *Client {
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Fetch performs a GET against the catalog and returns the body on 2xx.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}
