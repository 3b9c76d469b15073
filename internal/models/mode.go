package models

import "fmt"

// DiscoveryMode selects how the engine treats an empty real-data result
type DiscoveryMode string

const (
	// ModeStrictReal never generates synthetic records
	ModeStrictReal DiscoveryMode = "strict_real"
	// ModeRealWithFallback fills empty real results with synthetic records
	ModeRealWithFallback DiscoveryMode = "real_with_fallback"
	// ModeFallbackOnly skips scraping entirely
	ModeFallbackOnly DiscoveryMode = "fallback_only"
)

// ArtistPath selects which platform is searched for credited artists
type ArtistPath string

const (
	// PathPrimary searches the video platform for credit phrases over plain HTTP
	PathPrimary ArtistPath = "primary"
	// PathSecondary resolves artist profiles on the audio platform through the browser session
	PathSecondary ArtistPath = "secondary"
	// PathCascade tries primary first and the secondary platform for producers that came back empty
	PathCascade ArtistPath = "cascade"
)

// NeedsSession reports whether the path drives the browser session
func (p ArtistPath) NeedsSession() bool {
	return p == PathSecondary || p == PathCascade
}

// MatchStrategy selects how a title is checked for a production credit
type MatchStrategy string

const (
	MatchExact     MatchStrategy = "exact"
	MatchProximity MatchStrategy = "proximity"
)

// ResultType tells the caller what kind of data came back
type ResultType string

const (
	ResultRealData          ResultType = "real_data"
	ResultMixed             ResultType = "mixed"
	ResultFallback          ResultType = "fallback"
	ResultNoRealData        ResultType = "no_real_data"
	ResultNoCreditedArtists ResultType = "no_credited_artists"
)

// ParseDiscoveryMode converts a config/flag value into a DiscoveryMode
func ParseDiscoveryMode(s string) (DiscoveryMode, error) {
	switch DiscoveryMode(s) {
	case ModeStrictReal, ModeRealWithFallback, ModeFallbackOnly:
		return DiscoveryMode(s), nil
	}
	return "", fmt.Errorf("unknown discovery mode: %q", s)
}

// ParseArtistPath converts a config/flag value into an ArtistPath
func ParseArtistPath(s string) (ArtistPath, error) {
	switch ArtistPath(s) {
	case PathPrimary, PathSecondary, PathCascade:
		return ArtistPath(s), nil
	}
	return "", fmt.Errorf("unknown artist path: %q", s)
}

// ParseMatchStrategy converts a config/flag value into a MatchStrategy
func ParseMatchStrategy(s string) (MatchStrategy, error) {
	switch MatchStrategy(s) {
	case MatchExact, MatchProximity:
		return MatchStrategy(s), nil
	}
	return "", fmt.Errorf("unknown match strategy: %q", s)
}
