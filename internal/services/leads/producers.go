// -----------------------------------------------------------------------
// Producer Discovery - Keyword style searches on the video platform
// -----------------------------------------------------------------------

package leads

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/interfaces"
)

// producerQueryTemplates are issued in order until enough candidates are collected
var producerQueryTemplates = []string{
	"{k} type beat",
	"{k} style beat",
	"{k} instrumental",
}

// videoSearchParam is the query parameter of the video platform search URL
const videoSearchParam = "search_query"

// ProducerDiscovery finds producer channel names for a style keyword
type ProducerDiscovery struct {
	fetcher   interfaces.PageFetcher
	parser    interfaces.VideoSearchParser
	searchURL string
	pacer     *Pacer
	logger    arbor.ILogger
}

// NewProducerDiscovery creates a producer discovery stage
func NewProducerDiscovery(
	fetcher interfaces.PageFetcher,
	parser interfaces.VideoSearchParser,
	searchURL string,
	pacer *Pacer,
	logger arbor.ILogger,
) *ProducerDiscovery {
	return &ProducerDiscovery{
		fetcher:   fetcher,
		parser:    parser,
		searchURL: searchURL,
		pacer:     pacer,
		logger:    logger,
	}
}

// ProducerQueries builds the ordered search queries for a keyword
func ProducerQueries(keyword string) []string {
	queries := make([]string, 0, len(producerQueryTemplates))
	for _, template := range producerQueryTemplates {
		queries = append(queries, strings.ReplaceAll(template, "{k}", keyword))
	}
	return queries
}

// Discover returns at most targetCount unique producer names in discovery order.
// Fetch failures move on to the next query; if every query fails the result is empty.
func (d *ProducerDiscovery) Discover(ctx context.Context, keyword string, targetCount int) []string {
	if targetCount <= 0 {
		return nil
	}

	limit := 2 * targetCount
	seen := make(map[string]bool)
	var candidates []string

	for i, query := range ProducerQueries(keyword) {
		if len(candidates) >= limit {
			break
		}
		if i > 0 {
			if err := d.pacer.Wait(ctx); err != nil {
				d.logger.Warn().Err(err).Msg("Producer discovery interrupted")
				break
			}
		}

		searchURL := common.BuildSearchURL(d.searchURL, videoSearchParam, query)
		html, err := d.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			d.logger.Warn().Err(err).Str("query", query).Msg("Producer search failed, trying next variant")
			continue
		}

		names := d.parser.ExtractChannelNames(html)
		if len(names) == 0 {
			d.logger.Debug().Str("query", query).Msg("No channel names matched on search page")
			continue
		}

		accepted := 0
		for _, name := range names {
			name = strings.TrimSpace(name)
			if seen[name] || !IsValidProducerName(name) {
				continue
			}
			seen[name] = true
			candidates = append(candidates, name)
			accepted++
			if len(candidates) >= limit {
				break
			}
		}

		d.logger.Debug().
			Str("query", query).
			Int("extracted", len(names)).
			Int("accepted", accepted).
			Msg("Producer search processed")
	}

	if len(candidates) > targetCount {
		candidates = candidates[:targetCount]
	}

	d.logger.Info().
		Str("keyword", keyword).
		Strs("producers", candidates).
		Msg("Producer discovery complete")

	return candidates
}
