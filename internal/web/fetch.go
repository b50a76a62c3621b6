package web

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/claimlens/internal/cache"
	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/util"
	"github.com/ppiankov/claimlens/internal/worker"
)

// maxSnippetChars bounds the text kept from a fetched page
const maxSnippetChars = 1200

// SnippetFetcher pulls readable text from result pages to enrich thin
// search snippets. Fetches honor robots.txt, per-domain rate limits,
// and the shared cache. Every failure path returns an empty string;
// page enrichment never blocks verification.
type SnippetFetcher struct {
	httpClient *http.Client
	robots     *robotsGate
	limiter    *worker.Limiter
	store      cache.Cache
	userAgent  string
	maxBytes   int64
	cacheTTL   time.Duration
}

// NewSnippetFetcher builds a fetcher from web configuration.
// store may be nil to disable caching.
func NewSnippetFetcher(cfg model.WebConfig, store cache.Cache) *SnippetFetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	return &SnippetFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    newRobotsGate(cfg.UserAgent, timeout),
		limiter:   worker.NewLimiter(rps, cfg.BurstSize),
		store:     store,
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		cacheTTL:  24 * time.Hour,
	}
}

// Snippet fetches the page and returns its leading visible text, or an
// empty string when the page is disallowed or unreachable.
func (f *SnippetFetcher) Snippet(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return ""
	}

	cacheKey := cache.Key("page:" + rawURL)
	if f.store != nil {
		if data, found := f.store.Get(cacheKey); found {
			return string(data)
		}
	}

	allowed, delay := f.robots.allows(ctx, rawURL)
	if !allowed {
		return ""
	}
	if err := f.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
		return ""
	}

	body, err := f.fetch(ctx, rawURL)
	if err != nil {
		return ""
	}

	snippet := visibleText(body)
	if len(snippet) > maxSnippetChars {
		snippet = snippet[:maxSnippetChars]
	}

	if f.store != nil && snippet != "" {
		_ = f.store.Set(cacheKey, []byte(snippet), f.cacheTTL)
	}
	return snippet
}

func (f *SnippetFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// visibleText extracts readable text from HTML, skipping script, style,
// and navigation chrome.
func visibleText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "nav", "header", "footer":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(buf.String())
}
