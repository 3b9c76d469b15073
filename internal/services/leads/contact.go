package leads

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/ternarybob/leadhound/internal/models"
)

const (
	maxHandleLength = 15
	minHandleLength = 4
)

// SynthesizeHandle derives a social handle from a display name.
// Same name, same handle: the short-handle suffix is a hash of the name.
func SynthesizeHandle(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}

	handle := b.String()
	handle = strings.ReplaceAll(handle, "official", "")
	handle = strings.ReplaceAll(handle, "music", "")
	if len(handle) > maxHandleLength {
		handle = handle[:maxHandleLength]
	}

	if handle == "" {
		return "artist" + handleSuffix(name)
	}
	if len(handle) < minHandleLength {
		handle += handleSuffix(name)
	}
	return handle
}

// handleSuffix is a three digit number in [100, 999] derived from name
func handleSuffix(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	return fmt.Sprintf("%d", 100+h.Sum32()%900)
}

// ApplyContactFields fills empty contact fields from the synthesized handle.
// Fields already set (extracted from the platform) are left alone.
func ApplyContactFields(record *models.LeadRecord, emailProvider string) {
	handle := SynthesizeHandle(record.Name)

	if record.Instagram == "" {
		record.Instagram = "@" + handle
	}
	if record.Twitter == "" {
		record.Twitter = "@" + handle
	}
	if record.Email == "" {
		record.Email = handle + "@" + emailProvider
	}
	if record.Website == "" {
		record.Website = "https://" + handle + ".com"
	}
}
