// -----------------------------------------------------------------------
// Lead Discovery Service - keyword -> producers -> artists -> leads
// -----------------------------------------------------------------------

package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
	"github.com/ternarybob/leadhound/internal/services/fetcher"
	"github.com/ternarybob/leadhound/internal/services/parsers"
)

// profileLinksPerPage bounds the anchors examined on one audio platform search page
const profileLinksPerPage = 15

// Session is a browser session held for the duration of one FindLeads call
type Session interface {
	interfaces.Navigator
	Close() error
}

// SessionFactory starts a session. Called at most once per FindLeads call,
// and only when the artist path needs the browser.
type SessionFactory func(ctx context.Context) (Session, error)

// Service runs the discovery pipeline for one keyword at a time.
// Calls are sequential inside a run; a Service should not run FindLeads concurrently
// when it shares a RandomSource that is not safe for concurrent use.
type Service struct {
	config         *common.Config
	mode           models.DiscoveryMode
	path           models.ArtistPath
	strategy       models.MatchStrategy
	videoFetcher   interfaces.PageFetcher
	videoParser    interfaces.VideoSearchParser
	profileParser  interfaces.ProfileSearchParser
	sessionFactory SessionFactory
	random         interfaces.RandomSource
	logger         arbor.ILogger
}

// ServiceOption configures optional Service settings
type ServiceOption func(*Service)

// WithVideoParser replaces the video search page parser
func WithVideoParser(parser interfaces.VideoSearchParser) ServiceOption {
	return func(s *Service) {
		s.videoParser = parser
	}
}

// WithProfileParser replaces the audio platform parser
func WithProfileParser(parser interfaces.ProfileSearchParser) ServiceOption {
	return func(s *Service) {
		s.profileParser = parser
	}
}

// NewService creates the engine. sessionFactory may be nil when the artist path is primary.
// Parsers default to the YouTube and SoundCloud extractors.
func NewService(
	config *common.Config,
	videoFetcher interfaces.PageFetcher,
	sessionFactory SessionFactory,
	random interfaces.RandomSource,
	logger arbor.ILogger,
	opts ...ServiceOption,
) (*Service, error) {
	mode, err := models.ParseDiscoveryMode(config.Discovery.Mode)
	if err != nil {
		return nil, err
	}
	path, err := models.ParseArtistPath(config.Discovery.ArtistPath)
	if err != nil {
		return nil, err
	}
	strategy, err := models.ParseMatchStrategy(config.Discovery.MatchStrategy)
	if err != nil {
		return nil, err
	}

	service := &Service{
		config:         config,
		mode:           mode,
		path:           path,
		strategy:       strategy,
		videoFetcher:   videoFetcher,
		videoParser:    parsers.NewYouTubeParser(),
		profileParser:  parsers.NewSoundCloudParser(config.Browser.ProfileBaseURL, profileLinksPerPage),
		sessionFactory: sessionFactory,
		random:         random,
		logger:         logger,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// pipeline holds the stages of a single run, all logging under the run's correlation id
type pipeline struct {
	producers     *ProducerDiscovery
	artists       *ArtistDiscovery
	resolver      *Resolver
	fallback      *Fallback
	assembler     *Assembler
	producerPacer *Pacer
	logger        arbor.ILogger
}

func (s *Service) newPipeline(logger arbor.ILogger) *pipeline {
	discovery := s.config.Discovery
	queryDelay := common.ParseDuration(discovery.QueryDelay, 2*time.Second)

	return &pipeline{
		producers: NewProducerDiscovery(
			s.videoFetcher,
			s.videoParser,
			s.config.Fetcher.VideoSearchURL,
			NewPacer(queryDelay),
			logger,
		),
		artists: NewArtistDiscovery(
			ArtistDiscoveryConfig{
				SearchURL:     s.config.Fetcher.VideoSearchURL,
				BaseURL:       s.config.Fetcher.VideoBaseURL,
				MaxPerQuery:   discovery.MaxPerQuery,
				MaxArtists:    discovery.MaxArtistsPerProducer,
				EmailProvider: s.config.Fallback.EmailProvider,
			},
			s.videoFetcher,
			s.videoParser,
			NewCreditMatcher(s.strategy, discovery.ProximityWindow),
			NewPacer(queryDelay),
			logger,
		),
		fallback:      NewFallback(s.config.Fallback, s.random, logger),
		assembler:     NewAssembler(discovery.MaxResults, discovery.RequireContact, logger),
		producerPacer: NewPacer(common.ParseDuration(discovery.ProducerDelay, 2*time.Second)),
		logger:        logger,
	}
}

// bindSession attaches a resolver reading pages through session
func (s *Service) bindSession(p *pipeline, session Session) {
	queryDelay := common.ParseDuration(s.config.Discovery.QueryDelay, 2*time.Second)
	p.resolver = NewResolver(
		ResolverConfig{
			SearchURL:       s.config.Browser.SearchURL,
			MaxProfileLinks: s.config.Resolver.MaxProfileLinks,
			MaxProfiles:     s.config.Resolver.MaxProfiles,
			EmailProvider:   s.config.Fallback.EmailProvider,
		},
		fetcher.NewSessionFetcher(session),
		s.profileParser,
		NewPacer(queryDelay),
		NewPacer(common.ParseDuration(s.config.Resolver.ProfileDelay, 2*time.Second)),
		p.logger,
	)
}

// FindLeads discovers leads for keyword.
//
// The only error returned for a non-empty keyword is a browser session that
// could not be started; every other failure is logged and reflected in
// ResultType.
func (s *Service) FindLeads(ctx context.Context, keyword string) (*models.FindLeadsResult, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, models.ErrEmptyKeyword
	}

	startTime := time.Now()
	runID := common.NewRunID()
	logger := s.logger.WithCorrelationId(runID)
	p := s.newPipeline(logger)

	logger.Info().
		Str("keyword", keyword).
		Str("mode", string(s.mode)).
		Str("artist_path", string(s.path)).
		Str("match_strategy", string(s.strategy)).
		Msg("Lead discovery started")

	result := &models.FindLeadsResult{
		RunID:          runID,
		Keyword:        keyword,
		Mode:           s.mode,
		Leads:          []*models.LeadRecord{},
		ProducersFound: []string{},
		ProducerStats:  map[string]int{},
	}

	var records []*models.LeadRecord
	realProducers := false

	if s.mode == models.ModeFallbackOnly {
		result.ProducersFound = p.fallback.Producers(keyword)
		records = p.syntheticArtists(result.ProducersFound)
	} else {
		producers := p.producers.Discover(ctx, keyword, s.config.Discovery.ProducerCount)

		switch {
		case len(producers) > 0:
			realProducers = true
			result.ProducersFound = producers

			var err error
			records, err = s.collectArtists(ctx, p, producers)
			if err != nil {
				return nil, err
			}

		case s.mode == models.ModeStrictReal:
			logger.Info().Str("keyword", keyword).Msg("No real producers found")
			result.ResultType = models.ResultNoRealData
			result.Duration = time.Since(startTime)
			return result, nil

		default:
			logger.Info().Str("keyword", keyword).Msg("No real producers found, using fallback producers")
			result.ProducersFound = p.fallback.Producers(keyword)
			records = p.syntheticArtists(result.ProducersFound)
		}
	}

	assembly := p.assembler.Assemble(records)
	result.Leads = assembly.Leads
	result.ProducerStats = assembly.ProducerStats
	result.RealCount = assembly.RealCount
	result.SyntheticCount = assembly.SyntheticCount
	result.Success = len(assembly.Leads) > 0
	result.ResultType = classifyResult(realProducers, assembly)
	result.Duration = time.Since(startTime)

	logger.Info().
		Str("result_type", string(result.ResultType)).
		Int("leads", len(result.Leads)).
		Int("real", result.RealCount).
		Int("synthetic", result.SyntheticCount).
		Dur("duration", result.Duration).
		Msg("Lead discovery complete")

	return result, nil
}

// collectArtists runs the configured artist path for each producer in order.
// The browser session, when needed, lives exactly as long as this call.
func (s *Service) collectArtists(ctx context.Context, p *pipeline, producers []string) ([]*models.LeadRecord, error) {
	if s.path.NeedsSession() {
		if s.sessionFactory == nil {
			return nil, fmt.Errorf("%w: no session factory configured for artist path %s", models.ErrSessionUnavailable, s.path)
		}

		session, err := s.sessionFactory(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to start browser session: %w", err)
		}
		defer func() {
			if err := session.Close(); err != nil {
				p.logger.Warn().Err(err).Msg("Failed to close browser session")
			}
		}()

		s.bindSession(p, session)
	}

	var records []*models.LeadRecord
	for i, producer := range producers {
		if i > 0 {
			if err := p.producerPacer.Wait(ctx); err != nil {
				p.logger.Warn().Err(err).Msg("Artist collection interrupted")
				break
			}
		}

		found := s.artistsFor(ctx, p, producer)
		if len(found) == 0 && s.mode == models.ModeRealWithFallback {
			count := p.fallback.ArtistCount()
			p.logger.Info().
				Str("producer", producer).
				Int("count", count).
				Msg("No credited artists found, generating fallback artists")
			found = p.fallback.Artists(producer, count)
		}

		records = append(records, found...)
	}

	return records, nil
}

// artistsFor dispatches on the artist path
func (s *Service) artistsFor(ctx context.Context, p *pipeline, producer string) []*models.LeadRecord {
	switch s.path {
	case models.PathSecondary:
		return p.resolver.Resolve(ctx, producer)
	case models.PathCascade:
		if found := p.artists.Discover(ctx, producer); len(found) > 0 {
			return found
		}
		p.logger.Debug().Str("producer", producer).Msg("Primary path empty, trying profile resolver")
		return p.resolver.Resolve(ctx, producer)
	default:
		return p.artists.Discover(ctx, producer)
	}
}

// syntheticArtists generates a batch for each fallback producer
func (p *pipeline) syntheticArtists(producers []string) []*models.LeadRecord {
	var records []*models.LeadRecord
	for _, producer := range producers {
		records = append(records, p.fallback.Artists(producer, p.fallback.ArtistCount())...)
	}
	return records
}

// classifyResult tells the caller what kind of data the leads are
func classifyResult(realProducers bool, assembly *Assembly) models.ResultType {
	switch {
	case !realProducers:
		return models.ResultFallback
	case len(assembly.Leads) == 0:
		return models.ResultNoCreditedArtists
	case assembly.SyntheticCount == 0:
		return models.ResultRealData
	default:
		return models.ResultMixed
	}
}
