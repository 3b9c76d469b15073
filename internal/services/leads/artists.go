// -----------------------------------------------------------------------
// Artist Discovery - Credit phrase searches on the video platform
// -----------------------------------------------------------------------

package leads

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// ArtistDiscoveryConfig holds per-producer limits and platform URLs
type ArtistDiscoveryConfig struct {
	SearchURL     string
	BaseURL       string
	MaxPerQuery   int
	MaxArtists    int
	EmailProvider string
}

// ArtistDiscovery finds artists whose track titles credit a producer
type ArtistDiscovery struct {
	config  ArtistDiscoveryConfig
	fetcher interfaces.PageFetcher
	parser  interfaces.VideoSearchParser
	matcher *CreditMatcher
	pacer   *Pacer
	logger  arbor.ILogger
}

// NewArtistDiscovery creates an artist discovery stage
func NewArtistDiscovery(
	config ArtistDiscoveryConfig,
	fetcher interfaces.PageFetcher,
	parser interfaces.VideoSearchParser,
	matcher *CreditMatcher,
	pacer *Pacer,
	logger arbor.ILogger,
) *ArtistDiscovery {
	return &ArtistDiscovery{
		config:  config,
		fetcher: fetcher,
		parser:  parser,
		matcher: matcher,
		pacer:   pacer,
		logger:  logger,
	}
}

// Discover returns real lead records for artists crediting producer.
// Records are unique by lower-cased channel name and never include the producer's own channel.
func (d *ArtistDiscovery) Discover(ctx context.Context, producer string) []*models.LeadRecord {
	producerKey := strings.ToLower(strings.TrimSpace(producer))
	if producerKey == "" {
		return nil
	}

	seen := make(map[string]bool)
	var records []*models.LeadRecord

	for i, query := range CreditQueries(producer) {
		if len(records) >= d.config.MaxArtists {
			break
		}
		if i > 0 {
			if err := d.pacer.Wait(ctx); err != nil {
				d.logger.Warn().Err(err).Str("producer", producer).Msg("Artist discovery interrupted")
				break
			}
		}

		searchURL := common.BuildSearchURL(d.config.SearchURL, videoSearchParam, query)
		html, err := d.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			d.logger.Warn().Err(err).Str("query", query).Msg("Credit search failed, trying next query")
			continue
		}

		tracks := d.parser.ExtractTracks(html)
		if len(tracks) == 0 {
			d.logger.Debug().Err(models.ErrExtractionMismatch).Str("query", query).Msg("No tracks extracted")
			continue
		}

		perQuery := 0
		for _, track := range tracks {
			if perQuery >= d.config.MaxPerQuery || len(records) >= d.config.MaxArtists {
				break
			}
			if !d.accepts(track, producerKey, producer) {
				continue
			}

			channelKey := strings.ToLower(strings.TrimSpace(track.ChannelName))
			if seen[channelKey] {
				continue
			}
			seen[channelKey] = true

			records = append(records, d.newRecord(track, producer))
			perQuery++
		}

		d.logger.Debug().
			Str("query", query).
			Int("tracks", len(tracks)).
			Int("accepted", perQuery).
			Msg("Credit search processed")
	}

	d.logger.Info().
		Str("producer", producer).
		Int("artists", len(records)).
		Msg("Artist discovery complete")

	return records
}

// accepts applies the self-credit, content and credit rules to one candidate
func (d *ArtistDiscovery) accepts(track models.CandidateTrack, producerKey, producer string) bool {
	channel := strings.TrimSpace(track.ChannelName)
	if channel == "" {
		return false
	}
	// Self-credit: the producer's own uploads
	if strings.Contains(strings.ToLower(channel), producerKey) {
		return false
	}
	// Labels, topic channels and compilations are not artists
	if IsExcludedName(channel) {
		return false
	}
	return d.matcher.Credits(track.Title, producer)
}

func (d *ArtistDiscovery) newRecord(track models.CandidateTrack, producer string) *models.LeadRecord {
	channel := strings.TrimSpace(track.ChannelName)

	profileURL := common.BuildSearchURL(common.JoinPath(d.config.BaseURL, "results"), videoSearchParam, channel)
	if track.ChannelID != "" {
		profileURL = common.JoinPath(d.config.BaseURL, "channel", track.ChannelID)
	}

	record := &models.LeadRecord{
		Name:             channel,
		ProfileURL:       profileURL,
		SampleTrackTitle: track.Title,
		SampleTrackURL:   common.JoinPath(d.config.BaseURL, "watch") + "?v=" + track.VideoID,
		Bio:              fmt.Sprintf("Released \"%s\" crediting producer %s.", track.Title, producer),
		ProducerUsed:     producer,
		Source:           models.SourceVideo,
		Provenance:       models.ProvenanceReal,
	}
	ApplyContactFields(record, d.config.EmailProvider)
	return record
}
