package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Provenance marks whether a lead was scraped or generated
type Provenance string

const (
	ProvenanceReal      Provenance = "real"
	ProvenanceSynthetic Provenance = "synthetic"
)

// Source platforms a lead can come from
const (
	SourceVideo     = "youtube"
	SourceAudio     = "soundcloud"
	SourceSynthetic = "synthetic"
)

// CandidateTrack is a raw search result row pulled from a video search page.
// Only lives for the duration of one discovery call.
type CandidateTrack struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	ChannelName string `json:"channel_name"`
	ChannelID   string `json:"channel_id"`
}

// LeadRecord is the unit handed back to callers.
//
// Invariants:
//   - Name is never empty
//   - Real records take ProfileURL and SampleTrackTitle from what was scraped
//   - Synthetic records always carry ProvenanceSynthetic
type LeadRecord struct {
	Name             string     `json:"name" validate:"required"`
	ProfileURL       string     `json:"profile_url"`
	SampleTrackTitle string     `json:"sample_track_title"`
	SampleTrackURL   string     `json:"sample_track_url"`
	Instagram        string     `json:"instagram"`
	Twitter          string     `json:"twitter"`
	Email            string     `json:"email"`
	Website          string     `json:"website"`
	Bio              string     `json:"bio"`
	ProducerUsed     string     `json:"producer_used"`
	Source           string     `json:"source"`
	Provenance       Provenance `json:"provenance" validate:"required,oneof=real synthetic"`
}

// IsReal reports whether the record was scraped rather than generated
func (r *LeadRecord) IsReal() bool {
	return r.Provenance == ProvenanceReal
}

// ContactField returns the named contact field ("instagram", "twitter", "email", "website")
func (r *LeadRecord) ContactField(field string) string {
	switch field {
	case "instagram":
		return r.Instagram
	case "twitter":
		return r.Twitter
	case "email":
		return r.Email
	case "website":
		return r.Website
	}
	return ""
}

var leadValidator = validator.New()

// Validate checks the struct-level invariants of the record
func (r *LeadRecord) Validate() error {
	return leadValidator.Struct(r)
}

// ArtistProfile is what the audio platform resolver reads off a profile page
type ArtistProfile struct {
	Name             string `json:"name"`
	ProfileURL       string `json:"profile_url"`
	Handle           string `json:"handle"`
	Bio              string `json:"bio"`
	SampleTrackTitle string `json:"sample_track_title"`
	SampleTrackURL   string `json:"sample_track_url"`
}

// FindLeadsResult is the structured response for one keyword
type FindLeadsResult struct {
	RunID          string         `json:"run_id"`
	Keyword        string         `json:"keyword"`
	Mode           DiscoveryMode  `json:"mode"`
	Success        bool           `json:"success"`
	Leads          []*LeadRecord  `json:"leads"`
	ProducersFound []string       `json:"producers_found"`
	ProducerStats  map[string]int `json:"producer_stats"`
	ResultType     ResultType     `json:"result_type"`
	RealCount      int            `json:"real_count"`
	SyntheticCount int            `json:"synthetic_count"`
	Duration       time.Duration  `json:"duration"`
}
