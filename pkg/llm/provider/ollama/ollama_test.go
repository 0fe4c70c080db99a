package ollama_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentlabs/engram/pkg/llm"
	"github.com/parchmentlabs/engram/pkg/llm/provider/ollama"
)

func TestOllama(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Provider Suite")
}

var _ = Describe("Generator", func() {
	Describe("NewGenerator", func() {
		It("applies defaults for empty config", func() {
			g, err := ollama.NewGenerator(ollama.GeneratorConfig{})
			Expect(err).NotTo(HaveOccurred())
			Expect(g).NotTo(BeNil())
		})
	})

	Describe("Generate", func() {
		It("streams fragments from NDJSON lines", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(r.URL.Path).To(Equal("/api/generate"))
				Expect(r.Method).To(Equal(http.MethodPost))

				var req map[string]any
				Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
				Expect(req["model"]).To(Equal("llama3.2"))
				Expect(req["prompt"]).To(Equal("summarize this"))
				Expect(req["stream"]).To(BeTrue())

				w.Header().Set("Content-Type", "application/x-ndjson")
				fmt.Fprintln(w, `{"response":"SUMMARY: ","done":false}`)
				fmt.Fprintln(w, `{"response":"a tool","done":false}`)
				fmt.Fprintln(w, `{"response":"","done":true}`)
			}))
			defer server.Close()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			stream, err := g.Generate(context.Background(), llm.GenerateRequest{Prompt: "summarize this"})
			Expect(err).NotTo(HaveOccurred())

			text, err := llm.Drain(stream)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("SUMMARY: a tool"))
		})

		It("forwards sampling options", func() {
			var captured map[string]any

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				Expect(json.NewDecoder(r.Body).Decode(&captured)).To(Succeed())
				fmt.Fprintln(w, `{"response":"ok","done":true}`)
			}))
			defer server.Close()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL, Model: "mistral"})
			Expect(err).NotTo(HaveOccurred())

			stream, err := g.Generate(context.Background(), llm.GenerateRequest{
				Prompt:      "hi",
				System:      "be brief",
				Temperature: 0.2,
				MaxTokens:   600,
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = llm.Drain(stream)
			Expect(err).NotTo(HaveOccurred())

			Expect(captured["model"]).To(Equal("mistral"))
			Expect(captured["system"]).To(Equal("be brief"))

			opts, ok := captured["options"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(opts["temperature"]).To(BeNumerically("~", 0.2, 1e-9))
			Expect(opts["num_predict"]).To(BeNumerically("==", 600))
		})

		It("yields the trailing fragment on the done chunk", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(w, `{"response":"partial","done":false}`)
				fmt.Fprintln(w, `{"response":" tail","done":true}`)
			}))
			defer server.Close()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			stream, err := g.Generate(context.Background(), llm.GenerateRequest{Prompt: "x"})
			Expect(err).NotTo(HaveOccurred())

			text, err := llm.Drain(stream)
			Expect(err).NotTo(HaveOccurred())
			Expect(text).To(Equal("partial tail"))
		})

		It("returns io.EOF from Recv after completion", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(w, `{"response":"done","done":true}`)
			}))
			defer server.Close()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			stream, err := g.Generate(context.Background(), llm.GenerateRequest{Prompt: "x"})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			fragment, err := stream.Recv()
			Expect(err).NotTo(HaveOccurred())
			Expect(fragment).To(Equal("done"))

			_, err = stream.Recv()
			Expect(err).To(MatchError(io.EOF))

			// Recv stays at EOF once done
			_, err = stream.Recv()
			Expect(err).To(MatchError(io.EOF))
		})

		It("returns an error for non-200 responses", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			}))
			defer server.Close()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			_, err = g.Generate(context.Background(), llm.GenerateRequest{Prompt: "x"})
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("status 404"))
		})

		It("returns an error for malformed chunks", func() {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprintln(w, `not json at all`)
			}))
			defer server.Close()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: server.URL})
			Expect(err).NotTo(HaveOccurred())

			stream, err := g.Generate(context.Background(), llm.GenerateRequest{Prompt: "x"})
			Expect(err).NotTo(HaveOccurred())
			defer stream.Close()

			_, err = stream.Recv()
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("decoding chunk"))
		})

		It("respects context cancellation", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			g, err := ollama.NewGenerator(ollama.GeneratorConfig{BaseURL: "http://localhost:1"})
			Expect(err).NotTo(HaveOccurred())

			_, err = g.Generate(ctx, llm.GenerateRequest{Prompt: "x"})
			Expect(err).To(HaveOccurred())
		})
	})
})
