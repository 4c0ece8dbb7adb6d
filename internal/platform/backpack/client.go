// Package backpack is the marketplace REST client: the community price
// catalog, classifieds search, and listing publication.
package backpack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/unusualtrade/hatbot/internal/economy"
)

// Client is the marketplace REST client. Classifieds search responses are
// cached for a short TTL, so repricing the sell and buy listing of the same
// item in one pass costs a single API call.
type Client struct {
	baseURL    string
	apiKey     string
	token      string
	httpClient *http.Client
	search     *gocache.Cache
	logger     *slog.Logger
}

// NewClient creates a marketplace client.
//
// baseURL is the API root, e.g. "https://backpack.tf". apiKey authorizes the
// read APIs; token authorizes listing publication. searchTTL bounds how long
// a classifieds search result may be reused.
func NewClient(baseURL, apiKey, token string, searchTTL time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		search: gocache.New(searchTTL, 2*searchTTL),
		logger: logger.With(slog.String("component", "backpack")),
	}
}

// GetCatalog fetches the full community price catalog.
func (c *Client) GetCatalog(ctx context.Context) (*economy.Catalog, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("raw", "1")

	body, err := c.get(ctx, "/api/IGetPrices/v4", params)
	if err != nil {
		return nil, fmt.Errorf("backpack: get catalog: %w", err)
	}
	return economy.ParseCatalog(body)
}

// ClassifiedsForItem searches the live classifieds for one unusual item.
// Results come from the TTL cache when fresh; each call returns a freshly
// parsed document, so callers may filter it in place.
func (c *Client) ClassifiedsForItem(ctx context.Context, item economy.Item) (*economy.Classifieds, error) {
	cacheKey := item.String()
	if raw, ok := c.search.Get(cacheKey); ok {
		return economy.ParseClassifieds(raw.([]byte))
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("item", item.Name)
	params.Set("quality", strconv.Itoa(int(economy.QualityUnusual)))
	params.Set("particle", strconv.Itoa(item.EffectCode))
	params.Set("fold", "0")

	body, err := c.get(ctx, "/api/classifieds/search/v1", params)
	if err != nil {
		return nil, fmt.Errorf("backpack: search classifieds for %s: %w", item, err)
	}

	c.search.SetDefault(cacheKey, body)
	return economy.ParseClassifieds(body)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	fullURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

func (c *Client) post(ctx context.Context, path string, reqBody any) ([]byte, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(body))
	}
	return body, nil
}

func truncate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
