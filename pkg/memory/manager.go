package memory

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/parchmentlabs/engram/pkg/eventstream"
	"github.com/parchmentlabs/engram/pkg/eventstream/nop"
	"github.com/parchmentlabs/engram/pkg/logger"
)

const (
	contextHeader = "=== LEARNED KNOWLEDGE ===\n"
	contextFooter = "\n=== END LEARNED KNOWLEDGE ==="

	// Per-record caps applied when synthesizing the context block. The
	// block summarizes every record, so each entry stays small.
	contextConcepts    = 5
	contextFacts       = 5
	contextDefinitions = 3
)

// Manager is the façade the application calls for all memory operations.
type Manager struct {
	store      Store
	compressor Compressor
	reader     DocumentReader
	events     eventstream.Publisher
	logger     *slog.Logger

	// mu serializes Learn. The compressor shares a single generation
	// handle, and the service behind it is stateful; concurrent
	// generations against one model instance are not allowed.
	mu sync.Mutex
}

// ManagerConfig holds the collaborators a Manager binds together.
type ManagerConfig struct {
	Store      Store
	Compressor Compressor
	Reader     DocumentReader

	// Events receives document lifecycle events. Defaults to the no-op
	// publisher.
	Events eventstream.Publisher

	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// NewManager creates a manager from the given collaborators.
func NewManager(cfg ManagerConfig) *Manager {
	events := cfg.Events
	if events == nil {
		events = nop.NewPublisher()
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Manager{
		store:      cfg.Store,
		compressor: cfg.Compressor,
		reader:     cfg.Reader,
		events:     events,
		logger:     log,
	}
}

// Learn reads the document at path, compresses it into a record, and stores
// it. Returns the derived document id. Read failures and store failures are
// reported as errors; generation failures degrade inside the compressor and
// never surface here.
func (m *Manager) Learn(ctx context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	text, err := m.reader.Read(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	name := filepath.Base(path)
	id := DeriveID(name)

	m.logger.Info("compressing document", "name", name, "id", id)

	record := m.compressor.Compress(ctx, id, name, text)
	record.Clip()

	if err := m.store.Put(record); err != nil {
		return "", fmt.Errorf("storing record: %w", err)
	}

	m.publish(ctx, eventstream.EventTypeDocumentLearned, record)

	m.logger.Info("learned document", "name", name, "id", id,
		"concepts", len(record.KeyConcepts), "facts", len(record.Facts))

	return id, nil
}

// Forget removes a document's record from the store.
func (m *Manager) Forget(ctx context.Context, id string) error {
	record, err := m.store.Get(id)
	if err != nil {
		return err
	}

	if err := m.store.Remove(id); err != nil {
		return err
	}

	m.publish(ctx, eventstream.EventTypeDocumentForgotten, record)

	m.logger.Info("forgot document", "id", id, "name", record.Name)

	return nil
}

// List returns listings for every learned document.
func (m *Manager) List() []Listing {
	return m.store.List()
}

// Get returns the full record for one document.
func (m *Manager) Get(id string) (*Record, error) {
	return m.store.Get(id)
}

// Stats computes compression statistics for one document.
func (m *Manager) Stats(id string) (*Stats, error) {
	record, err := m.store.Get(id)
	if err != nil {
		return nil, err
	}

	return record.Stats()
}

// Cite searches a document's retained raw text for an exact quote.
func (m *Manager) Cite(id, query string) (string, error) {
	return m.store.FindCitation(id, query)
}

// Context synthesizes the learned-knowledge block injected into chat system
// prompts. It is rebuilt from the live store on every call so the content is
// always current. Returns an empty string when nothing has been learned.
func (m *Manager) Context() string {
	records := m.store.Snapshot()
	if len(records) == 0 {
		return ""
	}

	parts := []string{contextHeader}

	for _, record := range records {
		parts = append(parts, "\nFrom: "+record.Name)
		parts = append(parts, "Summary: "+record.Summary)

		if len(record.KeyConcepts) > 0 {
			concepts := record.KeyConcepts
			if len(concepts) > contextConcepts {
				concepts = concepts[:contextConcepts]
			}
			parts = append(parts, "Key Concepts: "+strings.Join(concepts, ", "))
		}

		if len(record.Facts) > 0 {
			parts = append(parts, "Important Facts:")
			facts := record.Facts
			if len(facts) > contextFacts {
				facts = facts[:contextFacts]
			}
			for _, fact := range facts {
				parts = append(parts, "  • "+fact)
			}
		}

		if len(record.Glossary) > 0 {
			parts = append(parts, "Definitions:")
			terms := make([]string, 0, len(record.Glossary))
			for term := range record.Glossary {
				terms = append(terms, term)
			}
			sort.Strings(terms)
			if len(terms) > contextDefinitions {
				terms = terms[:contextDefinitions]
			}
			for _, term := range terms {
				parts = append(parts, "  • "+term+": "+record.Glossary[term])
			}
		}
	}

	parts = append(parts, contextFooter)

	return strings.Join(parts, "\n")
}

// Close releases the manager's collaborators.
func (m *Manager) Close() error {
	if err := m.events.Close(); err != nil {
		m.logger.Warn("closing event publisher", "error", err)
	}

	return m.store.Close()
}

// publish emits a document event, logging failures instead of surfacing
// them. Event delivery is best-effort and never blocks a memory mutation.
func (m *Manager) publish(ctx context.Context, eventType string, record *Record) {
	event := eventstream.NewDocumentEvent(eventType, eventstream.DocumentMeta{
		ID:           record.ID,
		Name:         record.Name,
		ConceptCount: len(record.KeyConcepts),
		FactCount:    len(record.Facts),
	})

	if err := m.events.PublishDocument(ctx, event); err != nil {
		m.logger.Warn("publishing document event", "type", eventType, "error", err)
	}
}
