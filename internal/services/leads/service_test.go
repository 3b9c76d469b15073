package leads

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/models"
)

// mockSession serves audio platform pages and records its release
type mockSession struct {
	handler  func(rawURL string) (string, error)
	closeErr error
	closed   bool
}

func (s *mockSession) SafeNavigate(ctx context.Context, rawURL string) (string, bool) {
	html, err := s.handler(rawURL)
	return html, err == nil
}

func (s *mockSession) Close() error {
	s.closed = true
	return s.closeErr
}

// stubVideoParser returns fixed producers and tracks whatever the page holds
type stubVideoParser struct {
	channels []string
	tracks   []models.CandidateTrack
}

func (p *stubVideoParser) ExtractChannelNames(html string) []string {
	return p.channels
}

func (p *stubVideoParser) ExtractTracks(html string) []models.CandidateTrack {
	return p.tracks
}

func testServiceConfig(mode models.DiscoveryMode, path models.ArtistPath) *common.Config {
	config := common.NewDefaultConfig()
	config.Discovery.Mode = string(mode)
	config.Discovery.ArtistPath = string(path)
	config.Discovery.QueryDelay = "0s"
	config.Discovery.ProducerDelay = "0s"
	config.Resolver.ProfileDelay = "0s"
	return config
}

// videoRoutes serves producer bylines for "{keyword} type beat" and credited tracks per credit query
func videoRoutes(t *testing.T, bylines []string, credits map[string]string) func(string) (string, error) {
	return func(rawURL string) (string, error) {
		query := searchQuery(t, rawURL, "search_query")
		if strings.HasSuffix(query, " type beat") {
			return bylinePage(bylines...), nil
		}
		if html, ok := credits[query]; ok {
			return html, nil
		}
		return "<html></html>", nil
	}
}

func newTestService(t *testing.T, config *common.Config, f *mockFetcher, sessions SessionFactory) *Service {
	t.Helper()
	service, err := NewService(config, f, sessions, seededRandom(11), testLogger())
	require.NoError(t, err)
	return service
}

func TestFindLeads_FallbackOnlyUsesLookupTable(t *testing.T) {
	f := &mockFetcher{}
	service := newTestService(t, testServiceConfig(models.ModeFallbackOnly, models.PathPrimary), f, nil)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.Equal(t, []string{"Boi-1da", "40", "Hit-Boy"}, result.ProducersFound)
	assert.Equal(t, models.ResultFallback, result.ResultType)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.Leads)
	assert.LessOrEqual(t, len(result.Leads), 12)
	assert.Equal(t, 0, result.RealCount)
	assert.Equal(t, len(result.Leads), result.SyntheticCount)
	for _, lead := range result.Leads {
		assert.Equal(t, models.ProvenanceSynthetic, lead.Provenance)
	}
	assert.Empty(t, f.calls)
	assert.True(t, strings.HasPrefix(result.RunID, "run_"))
}

func TestFindLeads_StrictRealWithoutProducers(t *testing.T) {
	f := &mockFetcher{handler: func(rawURL string) (string, error) {
		return "<html>blocked</html>", nil
	}}
	service := newTestService(t, testServiceConfig(models.ModeStrictReal, models.PathPrimary), f, nil)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.ResultNoRealData, result.ResultType)
	assert.Empty(t, result.Leads)
	assert.Empty(t, result.ProducersFound)
}

func TestFindLeads_RealWithFallbackWithoutProducers(t *testing.T) {
	f := &mockFetcher{}
	service := newTestService(t, testServiceConfig(models.ModeRealWithFallback, models.PathPrimary), f, nil)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.ResultFallback, result.ResultType)
	assert.Equal(t, []string{"Boi-1da", "40", "Hit-Boy"}, result.ProducersFound)
	assert.Equal(t, 0, result.RealCount)
}

func TestFindLeads_RealData(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t,
		[]string{"Boi-1da", "Tay Keith"},
		map[string]string{
			"prod. Boi-1da": trackPage(
				track("a1", "Song (prod. Boi-1da)", "Lil Nova"),
				track("a2", "Other (prod. Boi-1da)", "Kay Co"),
			),
			"prod. Tay Keith": trackPage(
				track("b1", "Run (prod. Tay Keith)", "lil nova"),
				track("b2", "Walk (prod. Tay Keith)", "Marlo Vega"),
			),
		},
	)
	config := testServiceConfig(models.ModeRealWithFallback, models.PathPrimary)
	config.Discovery.ProducerCount = 2
	service := newTestService(t, config, f, nil)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.ResultRealData, result.ResultType)
	assert.Equal(t, []string{"Boi-1da", "Tay Keith"}, result.ProducersFound)

	names := make([]string, 0, len(result.Leads))
	for _, lead := range result.Leads {
		names = append(names, lead.Name)
	}
	assert.Equal(t, []string{"Lil Nova", "Kay Co", "Marlo Vega"}, names)
	assert.Equal(t, map[string]int{"Boi-1da": 2, "Tay Keith": 1}, result.ProducerStats)
	assert.Equal(t, 3, result.RealCount)
	assert.Equal(t, 0, result.SyntheticCount)
}

func TestFindLeads_MixedWhenOneProducerHasNoCredits(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t,
		[]string{"Boi-1da", "Tay Keith"},
		map[string]string{
			"prod. Boi-1da": trackPage(track("a1", "Song (prod. Boi-1da)", "Lil Nova")),
		},
	)
	config := testServiceConfig(models.ModeRealWithFallback, models.PathPrimary)
	config.Discovery.ProducerCount = 2
	service := newTestService(t, config, f, nil)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.Equal(t, models.ResultMixed, result.ResultType)
	assert.Equal(t, 1, result.RealCount)
	assert.Greater(t, result.SyntheticCount, 0)
	assert.Equal(t, "Lil Nova", result.Leads[0].Name)
	for _, lead := range result.Leads[1:] {
		assert.Equal(t, "Tay Keith", lead.ProducerUsed)
		assert.False(t, lead.IsReal())
	}
}

func TestFindLeads_StrictProducersWithoutCredits(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t, []string{"Boi-1da"}, nil)
	service := newTestService(t, testServiceConfig(models.ModeStrictReal, models.PathPrimary), f, nil)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.ResultNoCreditedArtists, result.ResultType)
	assert.Equal(t, []string{"Boi-1da"}, result.ProducersFound)
}

func TestFindLeads_SecondaryPathUsesScopedSession(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t, []string{"Boi-1da"}, nil)

	session := &mockSession{handler: audioRoutes(t,
		map[string]string{"Boi-1da": `<a href="/djnova" title="DJ Nova">x</a>`},
		map[string]string{"https://soundcloud.com/djnova": profilePage("DJ Nova", "")},
	)}
	opened := 0
	factory := func(ctx context.Context) (Session, error) {
		opened++
		return session, nil
	}

	service := newTestService(t, testServiceConfig(models.ModeStrictReal, models.PathSecondary), f, factory)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.Equal(t, 1, opened)
	assert.True(t, session.closed)
	assert.Equal(t, models.ResultRealData, result.ResultType)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "DJ Nova", result.Leads[0].Name)
	assert.Equal(t, models.SourceAudio, result.Leads[0].Source)
}

func TestFindLeads_CascadeFallsThroughToResolver(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t,
		[]string{"Boi-1da", "Tay Keith"},
		map[string]string{
			"prod. Boi-1da": trackPage(track("a1", "Song (prod. Boi-1da)", "Lil Nova")),
		},
	)
	session := &mockSession{handler: audioRoutes(t,
		map[string]string{"Tay Keith": `<a href="/kayco" title="Kay Co">x</a>`},
		map[string]string{"https://soundcloud.com/kayco": profilePage("Kay Co", "")},
	)}
	factory := func(ctx context.Context) (Session, error) { return session, nil }

	config := testServiceConfig(models.ModeStrictReal, models.PathCascade)
	config.Discovery.ProducerCount = 2
	service := newTestService(t, config, f, factory)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	require.Len(t, result.Leads, 2)
	assert.Equal(t, models.SourceVideo, result.Leads[0].Source)
	assert.Equal(t, models.SourceAudio, result.Leads[1].Source)
	assert.True(t, session.closed)
}

func TestFindLeads_SessionCloseErrorIsSwallowed(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t, []string{"Boi-1da"}, nil)
	session := &mockSession{
		handler:  audioRoutes(t, map[string]string{}, map[string]string{}),
		closeErr: errors.New("close failed"),
	}
	factory := func(ctx context.Context) (Session, error) { return session, nil }
	service := newTestService(t, testServiceConfig(models.ModeStrictReal, models.PathSecondary), f, factory)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, session.closed)
	assert.Equal(t, models.ResultNoCreditedArtists, result.ResultType)
}

func TestFindLeads_CustomVideoParser(t *testing.T) {
	f := &mockFetcher{handler: func(rawURL string) (string, error) {
		return "<html></html>", nil
	}}
	parser := &stubVideoParser{
		channels: []string{"Custom Producer"},
		tracks:   []models.CandidateTrack{track("v1", "Glow (prod. Custom Producer)", "Nova Kid")},
	}
	config := testServiceConfig(models.ModeStrictReal, models.PathPrimary)
	config.Discovery.ProducerCount = 1

	service, err := NewService(config, f, nil, seededRandom(11), testLogger(), WithVideoParser(parser))
	require.NoError(t, err)

	result, err := service.FindLeads(context.Background(), "drake")

	require.NoError(t, err)
	assert.Equal(t, []string{"Custom Producer"}, result.ProducersFound)
	assert.Equal(t, models.ResultRealData, result.ResultType)
	require.Len(t, result.Leads, 1)
	assert.Equal(t, "Nova Kid", result.Leads[0].Name)
}

func TestFindLeads_SessionFailureIsHardError(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t, []string{"Boi-1da"}, nil)
	factory := func(ctx context.Context) (Session, error) {
		return nil, errors.New("chrome not installed")
	}
	service := newTestService(t, testServiceConfig(models.ModeRealWithFallback, models.PathSecondary), f, factory)

	result, err := service.FindLeads(context.Background(), "drake")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chrome not installed")
}

func TestFindLeads_PrimaryPathNeverOpensSession(t *testing.T) {
	f := &mockFetcher{}
	f.handler = videoRoutes(t, []string{"Boi-1da"}, nil)
	factory := func(ctx context.Context) (Session, error) {
		t.Fatal("session opened for primary path")
		return nil, nil
	}
	service := newTestService(t, testServiceConfig(models.ModeRealWithFallback, models.PathPrimary), f, factory)

	_, err := service.FindLeads(context.Background(), "drake")
	assert.NoError(t, err)
}

func TestFindLeads_EmptyKeyword(t *testing.T) {
	service := newTestService(t, testServiceConfig(models.ModeRealWithFallback, models.PathPrimary), &mockFetcher{}, nil)

	_, err := service.FindLeads(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrEmptyKeyword)
}

func TestNewService_RejectsUnknownMode(t *testing.T) {
	config := common.NewDefaultConfig()
	config.Discovery.Mode = "guess"

	_, err := NewService(config, &mockFetcher{}, nil, seededRandom(1), testLogger())
	assert.Error(t, err)
}
