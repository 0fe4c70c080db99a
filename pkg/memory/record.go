package memory

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/parchmentlabs/engram/pkg/utils"
)

// Bounds applied to every record at construction time. They cap the
// worst-case storage footprint of a single document regardless of which
// path (generation, salvage, fallback) produced the record.
const (
	// MaxSummaryLen caps the synthesized summary length in characters.
	MaxSummaryLen = 500

	// MaxConcepts caps the number of key concepts retained per document.
	MaxConcepts = 15

	// MaxFacts caps the number of facts retained per document.
	MaxFacts = 20

	// MaxRawTextLen caps the retained raw text prefix used for citations.
	MaxRawTextLen = 10000

	// IDLen is the width of a derived document id in hex characters.
	IDLen = 12

	// listingSummaryLen is the summary truncation applied to listings.
	listingSummaryLen = 100
)

// Record is the compressed knowledge digest of one learned document.
type Record struct {
	// ID is derived from the document's display name, not its content.
	// Re-importing an identically-named file overwrites the prior record.
	ID string `json:"id"`

	// Name is the original filename.
	Name string `json:"name"`

	// Summary is a short synthesized overview.
	Summary string `json:"summary"`

	// KeyConcepts are short extracted terms or ideas, in first-seen order.
	KeyConcepts []string `json:"key_concepts"`

	// Facts are longer extracted statements, in first-seen order.
	Facts []string `json:"facts"`

	// Glossary maps term to definition. Empty in the generation path;
	// reserved for future extraction.
	Glossary map[string]string `json:"glossary"`

	// Structure describes the document's organization, or a fixed marker
	// when extraction was skipped.
	Structure string `json:"structure"`

	// RawText is a bounded prefix of the original text, retained only for
	// exact-substring citation lookup.
	RawText string `json:"raw_text"`
}

// DeriveID computes the stable document id for a display name. The id is
// content-independent so repeat imports of the same filename overwrite
// rather than duplicate.
func DeriveID(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:IDLen]
}

// Clip enforces the record bounds in place. Construction paths call this
// before handing a record to the store so an over-budget record can never
// be persisted.
func (r *Record) Clip() {
	r.Summary = utils.Clip(r.Summary, MaxSummaryLen)
	if len(r.KeyConcepts) > MaxConcepts {
		r.KeyConcepts = r.KeyConcepts[:MaxConcepts]
	}
	if len(r.Facts) > MaxFacts {
		r.Facts = r.Facts[:MaxFacts]
	}
	r.RawText = utils.Clip(r.RawText, MaxRawTextLen)
	if r.KeyConcepts == nil {
		r.KeyConcepts = []string{}
	}
	if r.Facts == nil {
		r.Facts = []string{}
	}
	if r.Glossary == nil {
		r.Glossary = map[string]string{}
	}
}

// Listing is the cheap index entry returned by List. It never carries raw
// text so callers that only need an index don't pull large payloads.
type Listing struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Summary      string `json:"summary"`
	ConceptCount int    `json:"concepts_count"`
	FactCount    int    `json:"facts_count"`
}

// Listing builds the index entry for this record.
func (r *Record) Listing() Listing {
	return Listing{
		ID:           r.ID,
		Name:         r.Name,
		Summary:      utils.Truncate(r.Summary, listingSummaryLen),
		ConceptCount: len(r.KeyConcepts),
		FactCount:    len(r.Facts),
	}
}

// Stats describes how much a record compressed its source document.
type Stats struct {
	OriginalKB     float64 `json:"original_kb"`
	CompressedKB   float64 `json:"compressed_kb"`
	Ratio          float64 `json:"ratio"`
	SavingsPercent float64 `json:"savings_percent"`
}

// Stats computes compression statistics for this record. The original size
// is approximated by the retained raw text; the compressed size is the
// record's serialized footprint.
func (r *Record) Stats() (*Stats, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}

	originalSize := float64(len(r.RawText))
	compressedSize := float64(len(data))

	stats := &Stats{
		OriginalKB:   originalSize / 1024,
		CompressedKB: compressedSize / 1024,
	}

	if originalSize > 0 && compressedSize > 0 {
		stats.Ratio = originalSize / compressedSize
		stats.SavingsPercent = (originalSize - compressedSize) / originalSize * 100
	}

	return stats, nil
}
