package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentlabs/engram/pkg/logger"
	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/memory/compress"
	"github.com/parchmentlabs/engram/pkg/memory/store"
	"github.com/parchmentlabs/engram/pkg/memory/worker"
	testutils "github.com/parchmentlabs/engram/pkg/utils/test"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Suite")
}

var _ = Describe("Server", func() {
	var (
		server  *Server
		manager *memory.Manager
		tmpDir  string
	)

	learn := func(path string) string {
		body, err := json.Marshal(LearnRequest{Path: path})
		Expect(err).NotTo(HaveOccurred())

		req, err := http.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", "application/json")

		resp, err := server.app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(fiber.StatusCreated))

		var result LearnResponse
		Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
		return result.ID
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "api-test-*")
		Expect(err).NotTo(HaveOccurred())

		st, err := store.Open(store.Config{Dir: tmpDir})
		Expect(err).NotTo(HaveOccurred())

		gen := testutils.NewMockGenerator(
			"This tool processes data.\n- Uses caching\n- Handles errors",
		)
		rd := testutils.NewMockReader(map[string]string{
			"/docs/notes.txt": "The quick brown fox jumps over the lazy dog.",
		})

		manager = memory.NewManager(memory.ManagerConfig{
			Store:      st,
			Compressor: compress.New(compress.Config{Generator: gen}),
			Reader:     rd,
		})

		server = NewServer(Config{ListenAddr: ":0"}, manager, nil, logger.Nop())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("GET /ping", func() {
		It("returns pong", func() {
			req, err := http.NewRequest(http.MethodGet, "/ping", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("pong"))
		})
	})

	Describe("POST /documents", func() {
		It("learns a document and returns its id", func() {
			id := learn("/docs/notes.txt")
			Expect(id).To(Equal(memory.DeriveID("notes.txt")))
		})

		It("rejects a missing path", func() {
			req, err := http.NewRequest(http.MethodPost, "/documents", bytes.NewReader([]byte(`{}`)))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("reports unreadable documents", func() {
			body, err := json.Marshal(LearnRequest{Path: "/docs/unknown.txt"})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodPost, "/documents", bytes.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusUnprocessableEntity))
		})

		It("rejects async requests when no pool is configured", func() {
			body, err := json.Marshal(LearnRequest{Path: "/docs/notes.txt"})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodPost, "/documents?async=true", bytes.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("queues async requests when a pool is configured", func() {
			pool, err := worker.NewPool(&worker.Config{
				Manager: manager,
				Logger:  logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			pooled := NewServer(
				Config{ListenAddr: ":0", Pool: pool},
				manager, nil, logger.Nop(),
			)

			body, err := json.Marshal(LearnRequest{Path: "/docs/notes.txt"})
			Expect(err).NotTo(HaveOccurred())

			req, err := http.NewRequest(http.MethodPost, "/documents?async=true", bytes.NewReader(body))
			Expect(err).NotTo(HaveOccurred())
			req.Header.Set("Content-Type", "application/json")

			resp, err := pooled.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusAccepted))

			var result LearnResponse
			Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
			Expect(result.ID).To(Equal(memory.DeriveID("notes.txt")))

			pool.Close()
			_, err = manager.Get(result.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("GET /documents", func() {
		It("lists learned documents with counts", func() {
			learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/documents", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result struct {
				Count     int              `json:"count"`
				Documents []memory.Listing `json:"documents"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
			Expect(result.Count).To(Equal(1))
			Expect(result.Documents[0].Name).To(Equal("notes.txt"))
			Expect(result.Documents[0].ConceptCount).To(Equal(2))
		})
	})

	Describe("GET /documents/:id", func() {
		It("returns the full record", func() {
			id := learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/documents/"+id, nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var record memory.Record
			Expect(json.NewDecoder(resp.Body).Decode(&record)).To(Succeed())
			Expect(record.Summary).To(Equal("This tool processes data."))
			Expect(record.RawText).To(ContainSubstring("quick brown fox"))
		})

		It("returns 404 for unknown ids", func() {
			req, err := http.NewRequest(http.MethodGet, "/documents/missing", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("DELETE /documents/:id", func() {
		It("forgets a document", func() {
			id := learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodDelete, "/documents/"+id, nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNoContent))

			req, err = http.NewRequest(http.MethodGet, "/documents/"+id, nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err = server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})

		It("returns 404 for unknown ids", func() {
			req, err := http.NewRequest(http.MethodDelete, "/documents/missing", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("GET /documents/:id/stats", func() {
		It("returns compression statistics", func() {
			id := learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/documents/"+id+"/stats", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var stats memory.Stats
			Expect(json.NewDecoder(resp.Body).Decode(&stats)).To(Succeed())
			Expect(stats.CompressedKB).To(BeNumerically(">", 0))
		})
	})

	Describe("GET /documents/:id/citation", func() {
		It("returns the window around a matched quote", func() {
			id := learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/documents/"+id+"/citation?q=brown+fox", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result CitationResponse
			Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
			Expect(result.Citation).To(ContainSubstring("brown fox"))
		})

		It("requires a query", func() {
			id := learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/documents/"+id+"/citation", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusBadRequest))
		})

		It("returns 404 when the quote is absent", func() {
			id := learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/documents/"+id+"/citation?q=absent+text", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusNotFound))
		})
	})

	Describe("GET /context", func() {
		It("returns an empty block before anything is learned", func() {
			req, err := http.NewRequest(http.MethodGet, "/context", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(fiber.StatusOK))

			var result ContextResponse
			Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
			Expect(result.Context).To(BeEmpty())
		})

		It("returns the learned-knowledge block", func() {
			learn("/docs/notes.txt")

			req, err := http.NewRequest(http.MethodGet, "/context", nil)
			Expect(err).NotTo(HaveOccurred())

			resp, err := server.app.Test(req)
			Expect(err).NotTo(HaveOccurred())

			var result ContextResponse
			Expect(json.NewDecoder(resp.Body).Decode(&result)).To(Succeed())
			Expect(result.Context).To(ContainSubstring("=== LEARNED KNOWLEDGE ==="))
			Expect(result.Context).To(ContainSubstring("From: notes.txt"))
		})
	})
})
