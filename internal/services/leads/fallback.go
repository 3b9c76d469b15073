// -----------------------------------------------------------------------
// Fallback Generator - Synthetic producers and artists, always tagged
// -----------------------------------------------------------------------

package leads

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/common"
	"github.com/ternarybob/leadhound/internal/interfaces"
	"github.com/ternarybob/leadhound/internal/models"
)

// maxFallbackProducers bounds both table hits and pattern names
const maxFallbackProducers = 3

// defaultProducerTable maps a normalized genre/artist keyword to known producers, in priority order
var defaultProducerTable = map[string][]string{
	"drake":        {"Boi-1da", "40", "Hit-Boy", "Tay Keith", "Wheezy"},
	"travisscott":  {"Mike Dean", "Wondagurl", "Cubeatz", "Pi'erre Bourne"},
	"futurehndrxx": {"Metro Boomin", "Southside", "Wheezy", "ATL Jacob"},
	"future":       {"Metro Boomin", "Southside", "Zaytoven", "Wheezy"},
	"trap":         {"Metro Boomin", "Southside", "TM88", "Zaytoven"},
	"drill":        {"AXL Beats", "808Melo", "Ghosty", "Cash Cobain"},
	"ukdrill":      {"M1OnTheBeat", "Ghosty", "Carns Hill", "AXL Beats"},
	"lofi":         {"Nujabes", "J Dilla", "Tomppabeats", "Jinsang"},
	"boombap":      {"DJ Premier", "Pete Rock", "The Alchemist", "Madlib"},
	"rnb":          {"Hit-Boy", "London On Da Track", "Boi-1da", "Nineteen85"},
	"afrobeats":    {"Sarz", "P2J", "Kel-P", "London"},
	"pluggnb":      {"BeatPluggz", "Kid Hazel", "StoopidXool", "Summrs"},
	"hyperpop":     {"A. G. Cook", "Dylan Brady", "Umru", "Danny L Harle"},
	"juicewrld":    {"Nick Mira", "Taz Taylor", "Purps", "Dex Duncan"},
	"playboicarti": {"Pi'erre Bourne", "F1lthy", "Art Dealer", "Maaly Raw"},
}

// Name parts for synthetic artists
var (
	artistPrefixes = []string{"Lil", "Young", "Yung", "Big", "King", "Lady", "DJ", "MC"}
	artistCores    = []string{
		"Nova", "Blaze", "Echo", "Vega", "Kairo", "Sage", "Rico", "Jett",
		"Onyx", "Zane", "Lux", "Koda", "Marlo", "Indigo", "Raven", "Cruz",
	}
	artistSuffixes = []string{"", "", "Wave", "X", "The Kid", "Baby", "Gold", "Beats"}
)

// Fallback produces clearly synthetic producers and artists
type Fallback struct {
	table         map[string][]string
	minArtists    int
	maxArtists    int
	emailProvider string
	random        interfaces.RandomSource
	logger        arbor.ILogger
}

// NewFallback creates a generator. Entries in config.ProducerTable replace or extend the built-in table.
func NewFallback(config common.FallbackConfig, random interfaces.RandomSource, logger arbor.ILogger) *Fallback {
	table := make(map[string][]string, len(defaultProducerTable)+len(config.ProducerTable))
	for key, producers := range defaultProducerTable {
		table[key] = producers
	}
	for key, producers := range config.ProducerTable {
		table[NormalizeKeyword(key)] = producers
	}

	return &Fallback{
		table:         table,
		minArtists:    config.MinArtists,
		maxArtists:    config.MaxArtists,
		emailProvider: config.EmailProvider,
		random:        random,
		logger:        logger,
	}
}

// NormalizeKeyword lower-cases and removes spaces
func NormalizeKeyword(keyword string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(keyword)), " ", "")
}

// Producers returns up to three table entries for the keyword in table order,
// or pattern-based names when the keyword is not in the table
func (f *Fallback) Producers(keyword string) []string {
	if producers, found := f.table[NormalizeKeyword(keyword)]; found && len(producers) > 0 {
		n := len(producers)
		if n > maxFallbackProducers {
			n = maxFallbackProducers
		}
		result := make([]string, n)
		copy(result, producers[:n])
		f.logger.Debug().Str("keyword", keyword).Strs("producers", result).Msg("Fallback producers from lookup table")
		return result
	}

	titled := titleCase(keyword)
	if titled == "" {
		titled = "Indie"
	}
	compact := strings.ReplaceAll(titled, " ", "")

	result := []string{
		titled + " Beats",
		compact + "Type",
		"Prod" + compact,
	}
	f.logger.Debug().Str("keyword", keyword).Strs("producers", result).Msg("Fallback producers from name patterns")
	return result
}

// ArtistCount draws how many synthetic artists to generate for one producer
func (f *Fallback) ArtistCount() int {
	if f.maxArtists <= f.minArtists {
		return f.minArtists
	}
	return f.minArtists + f.random.Intn(f.maxArtists-f.minArtists+1)
}

// Artists generates count synthetic lead records crediting producer.
// Names are unique within the batch.
func (f *Fallback) Artists(producer string, count int) []*models.LeadRecord {
	if count <= 0 {
		return nil
	}

	records := make([]*models.LeadRecord, 0, count)
	seen := make(map[string]bool, count)

	for attempts := 0; len(records) < count; attempts++ {
		name := f.artistName()
		if seen[strings.ToLower(name)] {
			if attempts < count*10 {
				continue
			}
			// Lexicon exhausted for this batch size
			name = fmt.Sprintf("%s %d", name, len(records)+1)
		}
		seen[strings.ToLower(name)] = true

		record := &models.LeadRecord{
			Name:         name,
			Bio:          fmt.Sprintf("Generated placeholder artist for producer %s. Not a scraped lead.", producer),
			ProducerUsed: producer,
			Source:       models.SourceSynthetic,
			Provenance:   models.ProvenanceSynthetic,
		}
		ApplyContactFields(record, f.emailProvider)
		records = append(records, record)
	}

	return records
}

// artistName composes prefix, core and suffix; any of prefix or suffix may be absent
func (f *Fallback) artistName() string {
	parts := make([]string, 0, 3)
	if f.random.Intn(2) == 0 {
		parts = append(parts, artistPrefixes[f.random.Intn(len(artistPrefixes))])
	}
	parts = append(parts, artistCores[f.random.Intn(len(artistCores))])
	if suffix := artistSuffixes[f.random.Intn(len(artistSuffixes))]; suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, " ")
}

// titleCase upper-cases the first letter of each word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}
