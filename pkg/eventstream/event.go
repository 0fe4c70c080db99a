package eventstream

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeDocumentLearned is emitted after a document is compressed into memory.
	EventTypeDocumentLearned = "engram.document.learned"

	// EventTypeDocumentForgotten is emitted after a document is removed from memory.
	EventTypeDocumentForgotten = "engram.document.forgotten"
)

// DocumentEvent is a transport-neutral event payload for a memory mutation.
type DocumentEvent struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	EventID       string       `json:"event_id"`
	EmittedAt     time.Time    `json:"emitted_at"`
	Document      DocumentMeta `json:"document"`
}

// DocumentMeta identifies the document the event is about.
type DocumentMeta struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	ConceptCount int    `json:"concept_count,omitempty"`
	FactCount    int    `json:"fact_count,omitempty"`
}

// NewDocumentEvent builds a fully-populated event for the given type and document.
func NewDocumentEvent(eventType string, doc DocumentMeta) *DocumentEvent {
	return &DocumentEvent{
		SchemaVersion: SchemaVersionV1,
		EventType:     eventType,
		EventID:       "evt_" + uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		Document:      doc,
	}
}
