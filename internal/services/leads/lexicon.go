package leads

import (
	"strings"
	"unicode/utf8"
)

// Producer names are accepted when their length falls in [minNameLength, maxNameLength)
const (
	minNameLength = 3
	maxNameLength = 30
)

// exclusionTerms mark platform, label and generic channel names
var exclusionTerms = []string{
	"youtube",
	"vevo",
	"topic",
	"records",
	"recordings",
	"official",
	"entertainment",
	"music group",
	"label",
	"lyrics",
	"karaoke",
	"news",
	"tv",
	"radio",
	"playlist",
	"mix",
	"compilation",
	"nightcore",
}

// reservedPrefixes are hashtags, mentions and links picked up from byline text
var reservedPrefixes = []string{"#", "@", "http"}

// IsExcludedName reports whether name contains an exclusion term or starts with a reserved prefix
func IsExcludedName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	for _, term := range exclusionTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// IsValidProducerName applies the length bounds and the exclusion lexicon
func IsValidProducerName(name string) bool {
	name = strings.TrimSpace(name)
	length := utf8.RuneCountInString(name)
	if length < minNameLength || length >= maxNameLength {
		return false
	}
	return !IsExcludedName(name)
}
