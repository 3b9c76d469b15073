package leads

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/leadhound/internal/services/parsers"
)

const testVideoSearchURL = "https://www.youtube.com/results"

func newTestProducerDiscovery(f *mockFetcher) *ProducerDiscovery {
	return NewProducerDiscovery(f, parsers.NewYouTubeParser(), testVideoSearchURL, NewPacer(0), testLogger())
}

func TestProducerDiscovery_FiltersAndDeduplicates(t *testing.T) {
	f := &mockFetcher{handler: func(rawURL string) (string, error) {
		return bylinePage(
			"Drake - Topic",
			"Boi-1da",
			"@typebeats",
			"Boi-1da",
			"OVO Records",
			"ab",
			"Tay Keith",
			"Wheezy Outta Here",
		), nil
	}}

	producers := newTestProducerDiscovery(f).Discover(context.Background(), "drake", 3)

	assert.Equal(t, []string{"Boi-1da", "Tay Keith", "Wheezy Outta Here"}, producers)
}

func TestProducerDiscovery_StopsAtTwiceTarget(t *testing.T) {
	f := &mockFetcher{handler: func(rawURL string) (string, error) {
		return bylinePage("Alpha Beats", "Bravo Beats", "Charlie Beats", "Delta Beats", "Echo Beats"), nil
	}}

	producers := newTestProducerDiscovery(f).Discover(context.Background(), "drake", 2)

	assert.Equal(t, []string{"Alpha Beats", "Bravo Beats"}, producers)
	// Four candidates came from the first page, so no further variants were fetched
	assert.Len(t, f.calls, 1)
}

func TestProducerDiscovery_QueryVariantsInOrder(t *testing.T) {
	var queries []string
	f := &mockFetcher{}
	f.handler = func(rawURL string) (string, error) {
		queries = append(queries, searchQuery(t, rawURL, "search_query"))
		return "<html>nothing</html>", nil
	}

	producers := newTestProducerDiscovery(f).Discover(context.Background(), "drake", 3)

	assert.Empty(t, producers)
	assert.Equal(t, []string{"drake type beat", "drake style beat", "drake instrumental"}, queries)
}

func TestProducerDiscovery_FailedQueryMovesOn(t *testing.T) {
	f := &mockFetcher{}
	f.handler = func(rawURL string) (string, error) {
		if searchQuery(t, rawURL, "search_query") == "drake type beat" {
			return "", errors.New("connection reset")
		}
		return bylinePage("Hit-Boy"), nil
	}

	producers := newTestProducerDiscovery(f).Discover(context.Background(), "drake", 1)

	assert.Equal(t, []string{"Hit-Boy"}, producers)
}

func TestProducerDiscovery_AllFetchesFail(t *testing.T) {
	f := &mockFetcher{}

	producers := newTestProducerDiscovery(f).Discover(context.Background(), "drake", 3)

	assert.Empty(t, producers)
	assert.Len(t, f.calls, 3)
}

func TestProducerDiscovery_NeverExceedsTarget(t *testing.T) {
	names := []string{"One Beats", "Two Beats", "Three Beats", "Four Beats", "Five Beats", "Six Beats", "Seven Beats"}
	f := &mockFetcher{handler: func(rawURL string) (string, error) {
		return bylinePage(names...), nil
	}}

	for target := 1; target <= 5; target++ {
		producers := newTestProducerDiscovery(f).Discover(context.Background(), "drake", target)
		require.LessOrEqual(t, len(producers), target)

		seen := make(map[string]bool)
		for _, producer := range producers {
			assert.False(t, seen[producer])
			seen[producer] = true
			assert.True(t, IsValidProducerName(producer))
		}
	}
}
