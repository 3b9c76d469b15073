package leads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/models"
)

var errNoRoute = errors.New("no route for url")

// mockFetcher routes requests to handler and records every URL it was asked for
type mockFetcher struct {
	handler func(rawURL string) (string, error)
	calls   []string
}

func (f *mockFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	f.calls = append(f.calls, rawURL)
	if f.handler == nil {
		return "", errNoRoute
	}
	return f.handler(rawURL)
}

// searchQuery returns the decoded value of param in rawURL
func searchQuery(t *testing.T, rawURL, param string) string {
	t.Helper()
	parsed, err := url.Parse(rawURL)
	require.NoError(t, err)
	return parsed.Query().Get(param)
}

// bylinePage renders a search page carrying only byline names
func bylinePage(names ...string) string {
	var b strings.Builder
	b.WriteString("<html><script>var ytInitialData = {\"items\":[")
	for i, name := range names {
		if i > 0 {
			b.WriteString(",")
		}
		encoded, _ := json.Marshal(name)
		fmt.Fprintf(&b, `{"ownerText":{"runs":[{"text":%s}]}}`, encoded)
	}
	b.WriteString("]};</script></html>")
	return b.String()
}

// trackPage renders a search page with one videoRenderer per track
func trackPage(tracks ...models.CandidateTrack) string {
	items := make([]map[string]interface{}, 0, len(tracks))
	for _, track := range tracks {
		items = append(items, map[string]interface{}{
			"videoRenderer": map[string]interface{}{
				"videoId": track.VideoID,
				"title": map[string]interface{}{
					"runs": []map[string]string{{"text": track.Title}},
				},
				"ownerText": map[string]interface{}{
					"runs": []map[string]interface{}{{
						"text": track.ChannelName,
						"navigationEndpoint": map[string]interface{}{
							"browseEndpoint": map[string]string{"browseId": track.ChannelID},
						},
					}},
				},
			},
		})
	}
	data, _ := json.Marshal(map[string]interface{}{"contents": items})
	return "<html><script>var ytInitialData = " + string(data) + ";</script></html>"
}

func track(id, title, channel string) models.CandidateTrack {
	return models.CandidateTrack{VideoID: id, Title: title, ChannelName: channel, ChannelID: "UC" + id}
}

func testLogger() arbor.ILogger {
	return arbor.NewLogger()
}

func seededRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
