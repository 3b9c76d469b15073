package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/models"
)

func testFetcherConfig() HTTPFetcherConfig {
	return HTTPFetcherConfig{
		UserAgent:   "leadhound-test",
		Timeout:     2 * time.Second,
		MaxBodySize: 1024,
	}
}

func TestHTTPFetcher_SendsUserAgent(t *testing.T) {
	var gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, "<html>results</html>")
	}))
	defer server.Close()

	f := NewHTTPFetcher(testFetcherConfig(), arbor.NewLogger())
	html, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "<html>results</html>", html)
	assert.Equal(t, "leadhound-test", gotAgent)
}

func TestHTTPFetcher_BadStatusIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	f := NewHTTPFetcher(testFetcherConfig(), arbor.NewLogger())
	_, err := f.Fetch(context.Background(), server.URL)

	assert.ErrorIs(t, err, models.ErrTransientFetch)
}

func TestHTTPFetcher_ConnectionFailureIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	f := NewHTTPFetcher(testFetcherConfig(), arbor.NewLogger())
	_, err := f.Fetch(context.Background(), url)

	assert.ErrorIs(t, err, models.ErrTransientFetch)
}

func TestHTTPFetcher_TimeoutIsTransient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	config := testFetcherConfig()
	config.Timeout = 50 * time.Millisecond
	f := NewHTTPFetcher(config, arbor.NewLogger())

	_, err := f.Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, models.ErrTransientFetch)
}

func TestHTTPFetcher_TruncatesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("a", 4096))
	}))
	defer server.Close()

	f := NewHTTPFetcher(testFetcherConfig(), arbor.NewLogger())
	html, err := f.Fetch(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Len(t, html, 1024)
}

func TestHTTPFetcher_CachesWithinTTL(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, "<html>cached</html>")
	}))
	defer server.Close()

	config := testFetcherConfig()
	config.CacheTTL = time.Minute
	f := NewHTTPFetcher(config, arbor.NewLogger())

	for i := 0; i < 3; i++ {
		html, err := f.Fetch(context.Background(), server.URL+"/results?search_query=x")
		require.NoError(t, err)
		assert.Equal(t, "<html>cached</html>", html)
	}
	assert.Equal(t, int32(1), hits.Load())
}

type mockNavigator struct {
	pages map[string]string
}

func (n *mockNavigator) SafeNavigate(ctx context.Context, url string) (string, bool) {
	html, ok := n.pages[url]
	return html, ok
}

func TestSessionFetcher(t *testing.T) {
	f := NewSessionFetcher(&mockNavigator{pages: map[string]string{
		"https://soundcloud.com/search?q=storm": "<html>rendered</html>",
	}})

	html, err := f.Fetch(context.Background(), "https://soundcloud.com/search?q=storm")
	require.NoError(t, err)
	assert.Equal(t, "<html>rendered</html>", html)

	_, err = f.Fetch(context.Background(), "https://soundcloud.com/missing")
	assert.ErrorIs(t, err, models.ErrTransientFetch)
}
