package memory_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentlabs/engram/pkg/eventstream"
	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/memory/compress"
	"github.com/parchmentlabs/engram/pkg/memory/store"
	testutils "github.com/parchmentlabs/engram/pkg/utils/test"
)

// capturePublisher records every published event.
type capturePublisher struct {
	events []*eventstream.DocumentEvent
}

func (p *capturePublisher) PublishDocument(_ context.Context, event *eventstream.DocumentEvent) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

var _ = Describe("Manager", func() {
	var (
		ctx     context.Context
		tmpDir  string
		st      *store.Store
		gen     *testutils.MockGenerator
		rd      *testutils.MockReader
		events  *capturePublisher
		manager *memory.Manager
	)

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		tmpDir, err = os.MkdirTemp("", "manager-test-*")
		Expect(err).NotTo(HaveOccurred())

		st, err = store.Open(store.Config{Dir: tmpDir})
		Expect(err).NotTo(HaveOccurred())

		gen = testutils.NewMockGenerator(
			"This tool processes data.\n- Uses caching\n- Handles errors",
		)
		rd = testutils.NewMockReader(map[string]string{
			"/docs/notes.txt": "The quick brown fox jumps over the lazy dog.",
		})
		events = &capturePublisher{}

		manager = memory.NewManager(memory.ManagerConfig{
			Store:      st,
			Compressor: compress.New(compress.Config{Generator: gen}),
			Reader:     rd,
			Events:     events,
		})
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("Learn", func() {
		It("returns the derived id and stores a record", func() {
			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(memory.DeriveID("notes.txt")))

			record, err := manager.Get(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Name).To(Equal("notes.txt"))
			Expect(record.Summary).To(Equal("This tool processes data."))
		})

		It("derives the id from the base name, not the full path", func() {
			rd.Texts["/elsewhere/notes.txt"] = "different content entirely"

			first, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			second, err := manager.Learn(ctx, "/elsewhere/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			Expect(first).To(Equal(second))
		})

		It("overwrites rather than duplicates on re-import", func() {
			_, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			_, err = manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			Expect(manager.List()).To(HaveLen(1))
		})

		It("reports read failures without creating a record", func() {
			rd.FailOn = "/docs/broken.pdf"
			rd.Texts["/docs/broken.pdf"] = "unused"

			_, err := manager.Learn(ctx, "/docs/broken.pdf")
			Expect(err).To(HaveOccurred())
			Expect(manager.List()).To(BeEmpty())
		})

		It("absorbs generation failures via the fallback path", func() {
			gen.FailGenerate = true

			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			record, err := manager.Get(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Structure).To(Equal("Document structure not analyzed"))
		})

		It("publishes a learned event", func() {
			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			Expect(events.events).To(HaveLen(1))
			Expect(events.events[0].EventType).To(Equal(eventstream.EventTypeDocumentLearned))
			Expect(events.events[0].Document.ID).To(Equal(id))
			Expect(events.events[0].Document.Name).To(Equal("notes.txt"))
		})
	})

	Describe("Forget", func() {
		It("removes the record and publishes an event", func() {
			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			Expect(manager.Forget(ctx, id)).To(Succeed())
			Expect(manager.List()).To(BeEmpty())

			Expect(events.events).To(HaveLen(2))
			Expect(events.events[1].EventType).To(Equal(eventstream.EventTypeDocumentForgotten))
		})

		It("returns ErrNotFound for unknown ids", func() {
			Expect(manager.Forget(ctx, "missing")).To(MatchError(memory.ErrNotFound))
		})
	})

	Describe("Context", func() {
		It("returns an empty string when nothing has been learned", func() {
			Expect(manager.Context()).To(BeEmpty())
		})

		It("wraps the block in delimiter markers", func() {
			_, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			block := manager.Context()
			Expect(block).To(HavePrefix("=== LEARNED KNOWLEDGE ==="))
			Expect(block).To(HaveSuffix("=== END LEARNED KNOWLEDGE ==="))
		})

		It("includes name, summary, concepts, and facts", func() {
			record := &memory.Record{
				ID:      "abc123",
				Name:    "paper.md",
				Summary: "A paper about consensus.",
				KeyConcepts: []string{
					"consensus", "raft", "paxos", "quorum", "leader", "election", "log",
				},
				Facts: []string{
					"fact one", "fact two", "fact three", "fact four", "fact five", "fact six",
				},
				Glossary:  map[string]string{},
				Structure: "Compressed",
				RawText:   "body",
			}
			Expect(st.Put(record)).To(Succeed())

			block := manager.Context()
			Expect(block).To(ContainSubstring("From: paper.md"))
			Expect(block).To(ContainSubstring("Summary: A paper about consensus."))

			// Top five concepts, comma-joined.
			Expect(block).To(ContainSubstring("Key Concepts: consensus, raft, paxos, quorum, leader"))
			Expect(block).NotTo(ContainSubstring("election"))

			// Top five facts as bullet lines.
			Expect(block).To(ContainSubstring("Important Facts:"))
			Expect(block).To(ContainSubstring("  • fact one"))
			Expect(block).To(ContainSubstring("  • fact five"))
			Expect(block).NotTo(ContainSubstring("fact six"))
		})

		It("includes up to three glossary definitions in sorted order", func() {
			record := &memory.Record{
				ID:      "abc123",
				Name:    "glossary.md",
				Summary: "terms",
				Glossary: map[string]string{
					"delta": "fourth", "alpha": "first", "bravo": "second", "charlie": "third",
				},
				KeyConcepts: []string{},
				Facts:       []string{},
				RawText:     "body",
			}
			Expect(st.Put(record)).To(Succeed())

			block := manager.Context()
			Expect(block).To(ContainSubstring("Definitions:"))
			Expect(block).To(ContainSubstring("  • alpha: first"))
			Expect(block).To(ContainSubstring("  • bravo: second"))
			Expect(block).To(ContainSubstring("  • charlie: third"))
			Expect(block).NotTo(ContainSubstring("delta"))
		})

		It("omits empty sections", func() {
			record := &memory.Record{
				ID:          "abc123",
				Name:        "bare.txt",
				Summary:     "just a summary",
				KeyConcepts: []string{},
				Facts:       []string{},
				Glossary:    map[string]string{},
				RawText:     "body",
			}
			Expect(st.Put(record)).To(Succeed())

			block := manager.Context()
			Expect(block).NotTo(ContainSubstring("Key Concepts:"))
			Expect(block).NotTo(ContainSubstring("Important Facts:"))
			Expect(block).NotTo(ContainSubstring("Definitions:"))
		})

		It("is deterministic for an unchanged store", func() {
			_, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			record := &memory.Record{
				ID:      "zzz999",
				Name:    "glossary.md",
				Summary: "terms",
				Glossary: map[string]string{
					"beta": "b", "alpha": "a", "gamma": "c",
				},
				KeyConcepts: []string{},
				Facts:       []string{},
				RawText:     "body",
			}
			Expect(st.Put(record)).To(Succeed())

			Expect(manager.Context()).To(Equal(manager.Context()))
		})
	})

	Describe("Cite", func() {
		It("passes through to the store", func() {
			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			window, err := manager.Cite(id, "brown fox")
			Expect(err).NotTo(HaveOccurred())
			Expect(window).To(ContainSubstring("brown fox"))
		})

		It("returns ErrNoCitation for absent queries", func() {
			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			_, err = manager.Cite(id, "not in the document")
			Expect(err).To(MatchError(memory.ErrNoCitation))
		})
	})

	Describe("Stats", func() {
		It("computes stats for a learned document", func() {
			id, err := manager.Learn(ctx, "/docs/notes.txt")
			Expect(err).NotTo(HaveOccurred())

			stats, err := manager.Stats(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.CompressedKB).To(BeNumerically(">", 0))
		})

		It("returns ErrNotFound for unknown ids", func() {
			_, err := manager.Stats("missing")
			Expect(err).To(MatchError(memory.ErrNotFound))
		})
	})
})
