// -----------------------------------------------------------------------
// Page Parser Interfaces - Site specific extraction strategies
// -----------------------------------------------------------------------

package interfaces

import (
	"github.com/ternarybob/leadhound/internal/models"
)

// VideoSearchParser extracts data from a video platform search results page.
// Swapping the implementation is how markup drift is handled.
type VideoSearchParser interface {
	// ExtractChannelNames returns raw channel/byline names in page order (duplicates allowed)
	ExtractChannelNames(html string) []string

	// ExtractTracks returns the video results found on the page
	ExtractTracks(html string) []models.CandidateTrack
}

// ProfileSearchParser extracts data from the audio platform
type ProfileSearchParser interface {
	// ExtractProfileLinks returns absolute profile URLs found on a search page, in page order
	ExtractProfileLinks(html string) []string

	// ParseProfile reads a profile page. Returns models.ErrExtractionMismatch when no name is found.
	ParseProfile(html string, profileURL string) (*models.ArtistProfile, error)
}

// RandomSource is the random number source used for synthetic data.
// *rand.Rand satisfies it; tests pass a seeded one.
type RandomSource interface {
	Intn(n int) int
}
