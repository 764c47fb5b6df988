// Package images fetches an accompanying CC-licensed image for a post from
// the Openverse API. Failure here is never fatal; the pipeline falls back to
// a text-only publish.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/futbot/futbot/internal/news"
)

// Renderer produces image bytes for a post, or an error the pipeline treats
// as non-fatal.
type Renderer interface {
	Render(ctx context.Context, title string, category news.Category) ([]byte, error)
}

const (
	defaultBaseURL = "https://api.openverse.org"
	maxImageBytes  = 4 << 20
	resultCacheTTL = 6 * time.Hour
	searchPageSize = 5
)

// OpenverseClient searches Openverse for a commercially-usable football
// image matching the headline.
type OpenverseClient struct {
	baseURL string
	client  *http.Client
	cache   *queryCache
}

var _ Renderer = (*OpenverseClient)(nil)

func NewOpenverseClient(timeout time.Duration) *OpenverseClient {
	return &OpenverseClient{
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
		cache:   newQueryCache(resultCacheTTL),
	}
}

// NewOpenverseClientWithBase is used by tests to point at a stub server.
func NewOpenverseClientWithBase(baseURL string, timeout time.Duration) *OpenverseClient {
	c := NewOpenverseClient(timeout)
	c.baseURL = baseURL
	return c
}

type searchResponse struct {
	Results []struct {
		URL     string `json:"url"`
		License string `json:"license"`
	} `json:"results"`
}

func (c *OpenverseClient) Render(ctx context.Context, title string, category news.Category) ([]byte, error) {
	query := buildQuery(title)

	imageURL, ok := c.cache.get(query)
	if !ok {
		found, err := c.search(ctx, query)
		if err != nil {
			return nil, err
		}
		imageURL = found
		c.cache.set(query, imageURL)
	}

	return c.download(ctx, imageURL)
}

func (c *OpenverseClient) search(ctx context.Context, query string) (string, error) {
	u := fmt.Sprintf("%s/v1/images/?q=%s&license_type=commercial&page_size=%d",
		c.baseURL, url.QueryEscape(query), searchPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("openverse search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openverse search: status %d", resp.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return "", fmt.Errorf("openverse search: %w", err)
	}
	for _, r := range sr.Results {
		if r.URL != "" {
			return r.URL, nil
		}
	}
	return "", fmt.Errorf("openverse search: no usable result for %q", query)
}

func (c *OpenverseClient) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("download image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download image: empty body")
	}
	return data, nil
}

// buildQuery keeps the first few meaningful title words and anchors the
// search to football.
func buildQuery(title string) string {
	words := strings.Fields(news.NormalizeText(title))
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(append(words, "football"), " ")
}
