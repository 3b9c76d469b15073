// -----------------------------------------------------------------------
// Result Assembler - Merge, dedup, filter and cap lead records
// -----------------------------------------------------------------------

package leads

import (
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/leadhound/internal/models"
)

// Assembly is the final lead list with its diagnostics
type Assembly struct {
	Leads          []*models.LeadRecord
	ProducerStats  map[string]int // Final leads per producer
	RealCount      int
	SyntheticCount int
	Dropped        int // Invalid records discarded
}

// Assembler merges records collected across producers
type Assembler struct {
	maxResults     int
	requireContact string
	logger         arbor.ILogger
}

// NewAssembler creates an assembler. requireContact names a contact field
// ("instagram", "twitter", "email", "website") that every lead must carry; empty disables the filter.
func NewAssembler(maxResults int, requireContact string, logger arbor.ILogger) *Assembler {
	return &Assembler{
		maxResults:     maxResults,
		requireContact: requireContact,
		logger:         logger,
	}
}

// Assemble keeps the first record per lower-cased name, preserving input order
func (a *Assembler) Assemble(records []*models.LeadRecord) *Assembly {
	assembly := &Assembly{
		Leads:         make([]*models.LeadRecord, 0, len(records)),
		ProducerStats: make(map[string]int),
	}

	seen := make(map[string]bool, len(records))
	duplicates := 0
	missingContact := 0

	for _, record := range records {
		if record == nil {
			continue
		}
		if err := record.Validate(); err != nil {
			assembly.Dropped++
			a.logger.Debug().Err(err).Str("name", record.Name).Msg("Dropping invalid lead record")
			continue
		}

		key := strings.ToLower(strings.TrimSpace(record.Name))
		if seen[key] {
			duplicates++
			continue
		}

		// A name is only taken once a record carrying it is accepted
		if a.requireContact != "" && record.ContactField(a.requireContact) == "" {
			missingContact++
			continue
		}

		if a.maxResults > 0 && len(assembly.Leads) >= a.maxResults {
			break
		}

		seen[key] = true
		assembly.Leads = append(assembly.Leads, record)
		assembly.ProducerStats[record.ProducerUsed]++
		if record.IsReal() {
			assembly.RealCount++
		} else {
			assembly.SyntheticCount++
		}
	}

	a.logger.Debug().
		Int("input", len(records)).
		Int("leads", len(assembly.Leads)).
		Int("duplicates", duplicates).
		Int("missing_contact", missingContact).
		Int("dropped", assembly.Dropped).
		Msg("Leads assembled")

	return assembly
}
