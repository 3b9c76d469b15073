// -----------------------------------------------------------------------
// Secondary-Platform Resolver - Profile discovery through the browser session
// -----------------------------------------------------------------------

package leads

import (
	"context"
	"errors"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// resolverQueryTemplates are the audio platform searches per producer
var resolverQueryTemplates = []string{
	"{p}",
	"prod {p}",
	"prod. {p}",
	"{p} type beat",
}

// audioSearchParam is the query parameter of the audio platform search URL
const audioSearchParam = "q"

// ResolverConfig holds the resolver's caps
type ResolverConfig struct {
	SearchURL       string
	MaxProfileLinks int // Unique profile URLs collected across all queries
	MaxProfiles     int // Profiles visited
	EmailProvider   string
}

// Resolver finds artist profiles on the script-rendered audio platform.
// Its fetcher must be session-backed.
type Resolver struct {
	config       ResolverConfig
	fetcher      interfaces.PageFetcher
	parser       interfaces.ProfileSearchParser
	queryPacer   *Pacer
	profilePacer *Pacer
	logger       arbor.ILogger
}

// NewResolver creates a resolver bound to one session-backed fetcher
func NewResolver(
	config ResolverConfig,
	fetcher interfaces.PageFetcher,
	parser interfaces.ProfileSearchParser,
	queryPacer *Pacer,
	profilePacer *Pacer,
	logger arbor.ILogger,
) *Resolver {
	return &Resolver{
		config:       config,
		fetcher:      fetcher,
		parser:       parser,
		queryPacer:   queryPacer,
		profilePacer: profilePacer,
		logger:       logger,
	}
}

// Resolve collects profile links for producer and reads each profile.
// Profiles without a display name are dropped, not retried.
func (r *Resolver) Resolve(ctx context.Context, producer string) []*models.LeadRecord {
	producerKey := strings.ToLower(strings.TrimSpace(producer))
	if producerKey == "" {
		return nil
	}

	profileURLs := r.collectProfileURLs(ctx, producer)
	if len(profileURLs) == 0 {
		r.logger.Info().Str("producer", producer).Msg("No profile links found")
		return nil
	}

	if len(profileURLs) > r.config.MaxProfiles {
		profileURLs = profileURLs[:r.config.MaxProfiles]
	}

	seen := make(map[string]bool)
	var records []*models.LeadRecord

	for i, profileURL := range profileURLs {
		if i > 0 {
			if err := r.profilePacer.Wait(ctx); err != nil {
				r.logger.Warn().Err(err).Msg("Profile resolution interrupted")
				break
			}
		}

		html, err := r.fetcher.Fetch(ctx, profileURL)
		if err != nil {
			r.logger.Warn().Err(err).Str("profile_url", profileURL).Msg("Failed to load profile")
			continue
		}

		profile, err := r.parser.ParseProfile(html, profileURL)
		if err != nil {
			if errors.Is(err, models.ErrExtractionMismatch) {
				r.logger.Debug().Str("profile_url", profileURL).Msg("Profile has no display name, skipping")
			} else {
				r.logger.Warn().Err(err).Str("profile_url", profileURL).Msg("Failed to parse profile")
			}
			continue
		}

		nameKey := strings.ToLower(profile.Name)
		if strings.Contains(nameKey, producerKey) {
			r.logger.Debug().Str("name", profile.Name).Msg("Skipping producer's own profile")
			continue
		}
		if seen[nameKey] {
			continue
		}
		seen[nameKey] = true

		records = append(records, r.newRecord(profile, producer))
	}

	r.logger.Info().
		Str("producer", producer).
		Int("profiles_visited", len(profileURLs)).
		Int("artists", len(records)).
		Msg("Profile resolution complete")

	return records
}

// collectProfileURLs runs the search queries until MaxProfileLinks unique URLs are known
func (r *Resolver) collectProfileURLs(ctx context.Context, producer string) []string {
	seen := make(map[string]bool)
	var profileURLs []string

	for i, template := range resolverQueryTemplates {
		if len(profileURLs) >= r.config.MaxProfileLinks {
			break
		}
		if i > 0 {
			if err := r.queryPacer.Wait(ctx); err != nil {
				r.logger.Warn().Err(err).Msg("Profile search interrupted")
				break
			}
		}

		query := strings.ReplaceAll(template, "{p}", producer)
		html, err := r.fetcher.Fetch(ctx, common.BuildSearchURL(r.config.SearchURL, audioSearchParam, query))
		if err != nil {
			r.logger.Warn().Err(err).Str("query", query).Msg("Profile search failed, trying next query")
			continue
		}

		added := 0
		for _, profileURL := range r.parser.ExtractProfileLinks(html) {
			if seen[profileURL] {
				continue
			}
			seen[profileURL] = true
			profileURLs = append(profileURLs, profileURL)
			added++
			if len(profileURLs) >= r.config.MaxProfileLinks {
				break
			}
		}

		r.logger.Debug().Str("query", query).Int("added", added).Msg("Profile search processed")
	}

	return profileURLs
}

func (r *Resolver) newRecord(profile *models.ArtistProfile, producer string) *models.LeadRecord {
	record := &models.LeadRecord{
		Name:             profile.Name,
		ProfileURL:       profile.ProfileURL,
		SampleTrackTitle: profile.SampleTrackTitle,
		SampleTrackURL:   profile.SampleTrackURL,
		Bio:              profile.Bio,
		ProducerUsed:     producer,
		Source:           models.SourceAudio,
		Provenance:       models.ProvenanceReal,
	}
	if profile.Handle != "" {
		record.Instagram = "@" + profile.Handle
	}
	ApplyContactFields(record, r.config.EmailProvider)
	return record
}
