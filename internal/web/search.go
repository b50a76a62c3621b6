package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ppiankov/claimlens/internal/cache"
	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/util"
)

// searchResponse mirrors the provider's JSON envelope
type searchResponse struct {
	OrganicResults []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic_results"`
	Error string `json:"error,omitempty"`
}

// SearchClient queries an external web search API and caches the
// results. Queries are cached under their text, so repeated claims in
// one batch hit the network once.
type SearchClient struct {
	endpoint   string
	apiKey     string
	maxResults int
	httpClient *http.Client
	store      cache.Cache
	cacheTTL   time.Duration
}

// NewSearchClient builds a client for a SerpAPI-compatible endpoint.
// store may be nil to disable caching.
func NewSearchClient(cfg model.WebConfig, store cache.Cache) *SearchClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxResults := cfg.MaxResults
	if maxResults < 1 {
		maxResults = 3
	}
	return &SearchClient{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		maxResults: maxResults,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		store:    store,
		cacheTTL: 6 * time.Hour,
	}
}

// Search returns up to the configured number of results for the query.
// Callers treat failures as missing evidence, so errors are returned
// but never cached.
func (c *SearchClient) Search(ctx context.Context, query string) ([]model.WebResult, error) {
	if query == "" {
		return nil, nil
	}

	cacheKey := cache.Key("search:" + query)
	if c.store != nil {
		if data, found := c.store.Get(cacheKey); found {
			var cached []model.WebResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	reqURL, err := c.buildURL(query)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("web search: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("web search: %s", parsed.Error)
	}

	results := make([]model.WebResult, 0, c.maxResults)
	for _, r := range parsed.OrganicResults {
		if r.Link == "" {
			continue
		}
		results = append(results, model.WebResult{
			Title:   r.Title,
			Snippet: r.Snippet,
			Link:    r.Link,
		})
		if len(results) == c.maxResults {
			break
		}
	}

	if c.store != nil {
		if data, err := json.Marshal(results); err == nil {
			_ = c.store.Set(cacheKey, data, c.cacheTTL)
		}
	}
	return results, nil
}

func (c *SearchClient) buildURL(query string) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("num", strconv.Itoa(c.maxResults))
	if c.apiKey != "" {
		q.Set("api_key", c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
