// -----------------------------------------------------------------------
// Credit Matching - Decides whether a title credits a producer
// -----------------------------------------------------------------------

package leads

import (
	"strings"

	"github.com/ternarybob/leadhound/internal/models"
)

// creditQueryTemplates are the searches issued per producer, in order
var creditQueryTemplates = []string{
	"prod. {p}",
	"prod by {p}",
	"produced by {p}",
	"(prod. {p})",
	"{p} prod",
}

// exactCreditPhrases are literal title fragments that credit {p}
var exactCreditPhrases = []string{
	"prod. {p}",
	"prod {p}",
	"prod by {p}",
	"prod. by {p}",
	"produced by {p}",
	"(prod. {p})",
	"(prod {p})",
	"[prod {p}]",
	"[prod. {p}]",
	"{p} prod",
}

// proximityKeywords count as a credit when near the producer name
var proximityKeywords = []string{"prod", "produced", "beat", "instrumental"}

// nonArtistMarkers identify beat uploads rather than finished songs
var nonArtistMarkers = []string{"type beat", "instrumental"}

// CreditMatcher checks titles against one matching strategy
type CreditMatcher struct {
	strategy models.MatchStrategy
	window   int
}

// NewCreditMatcher creates a matcher; window is only used by the proximity strategy
func NewCreditMatcher(strategy models.MatchStrategy, window int) *CreditMatcher {
	return &CreditMatcher{
		strategy: strategy,
		window:   window,
	}
}

// IsNonArtistTitle reports whether the title belongs to a beat or instrumental upload
func IsNonArtistTitle(title string) bool {
	lower := strings.ToLower(title)
	for _, marker := range nonArtistMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// Credits reports whether title credits producer. Beat uploads never match.
func (m *CreditMatcher) Credits(title, producer string) bool {
	p := strings.ToLower(strings.TrimSpace(producer))
	if p == "" || IsNonArtistTitle(title) {
		return false
	}
	t := strings.ToLower(title)

	if m.strategy == models.MatchProximity {
		return m.proximityMatch(t, p)
	}
	return exactMatch(t, p)
}

func exactMatch(title, producer string) bool {
	for _, phrase := range exactCreditPhrases {
		if strings.Contains(title, strings.ReplaceAll(phrase, "{p}", producer)) {
			return true
		}
	}
	return false
}

// proximityMatch looks for a credit keyword within window characters either
// side of any occurrence of the producer name
func (m *CreditMatcher) proximityMatch(title, producer string) bool {
	runes := []rune(title)
	name := []rune(producer)

	for start := 0; start+len(name) <= len(runes); start++ {
		if !hasRunesAt(runes, name, start) {
			continue
		}
		end := start + len(name)
		lo := max(0, start-m.window)
		hi := min(len(runes), end+m.window)

		surrounding := string(runes[lo:start]) + " " + string(runes[end:hi])
		for _, keyword := range proximityKeywords {
			if strings.Contains(surrounding, keyword) {
				return true
			}
		}
	}
	return false
}

func hasRunesAt(runes, name []rune, start int) bool {
	for i, r := range name {
		if runes[start+i] != r {
			return false
		}
	}
	return true
}

// CreditQueries builds the ordered search queries for a producer
func CreditQueries(producer string) []string {
	queries := make([]string, 0, len(creditQueryTemplates))
	for _, template := range creditQueryTemplates {
		queries = append(queries, strings.ReplaceAll(template, "{p}", producer))
	}
	return queries
}
