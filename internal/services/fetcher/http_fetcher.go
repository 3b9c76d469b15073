// -----------------------------------------------------------------------
// HTTP Fetcher - Stateless GET for pages that render server side
// -----------------------------------------------------------------------

package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	gcache "github.com/patrickmn/go-cache"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/httpclient"
	"github.com/ternarybob/leadhound/internal/models"
)

// HTTPFetcherConfig holds the fixed request settings
type HTTPFetcherConfig struct {
	UserAgent   string
	Timeout     time.Duration
	CacheTTL    time.Duration // 0 disables the page cache
	MaxBodySize int64
}

// NewHTTPFetcherConfig resolves the fetcher section of the application config
func NewHTTPFetcherConfig(config common.FetcherConfig) HTTPFetcherConfig {
	return HTTPFetcherConfig{
		UserAgent:   config.UserAgent,
		Timeout:     common.ParseDuration(config.Timeout, 15*time.Second),
		CacheTTL:    common.ParseDuration(config.CacheTTL, 0),
		MaxBodySize: config.MaxBodySize,
	}
}

// HTTPFetcher performs plain GET requests with a fixed user agent.
// Identical URLs within CacheTTL are served from memory.
type HTTPFetcher struct {
	config HTTPFetcherConfig
	client *http.Client
	cache  *gcache.Cache
	logger arbor.ILogger
}

// NewHTTPFetcher creates a fetcher with its own HTTP client
func NewHTTPFetcher(config HTTPFetcherConfig, logger arbor.ILogger) *HTTPFetcher {
	return NewHTTPFetcherWithClient(config, httpclient.NewSearchHTTPClient(config.Timeout), logger)
}

// NewHTTPFetcherWithClient creates a fetcher around an existing client
func NewHTTPFetcherWithClient(config HTTPFetcherConfig, client *http.Client, logger arbor.ILogger) *HTTPFetcher {
	f := &HTTPFetcher{
		config: config,
		client: client,
		logger: logger,
	}
	if config.CacheTTL > 0 {
		f.cache = gcache.New(config.CacheTTL, 2*config.CacheTTL)
	}
	return f
}

// Fetch returns the body of url. Network failures, timeouts and non-2xx
// responses are wrapped in models.ErrTransientFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.cache != nil {
		if cached, found := f.cache.Get(url); found {
			f.logger.Debug().Str("url", url).Msg("Page served from cache")
			return cached.(string), nil
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	startTime := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrTransientFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s returned status %d", models.ErrTransientFetch, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize))
	if err != nil {
		return "", fmt.Errorf("%w: reading body: %v", models.ErrTransientFetch, err)
	}

	html := string(body)
	f.logger.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("duration", time.Since(startTime)).
		Msg("Page fetched")

	if f.cache != nil {
		f.cache.SetDefault(url, html)
	}

	return html, nil
}
