// Package ollama implements pkg/llm's Generator client for Ollama's
// generate API.
package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/parchmentlabs/engram/pkg/llm"
)

const (
	// DefaultModel is the default model used for generation.
	DefaultModel = "llama3.2"

	// DefaultBaseURL is the default Ollama API URL.
	DefaultBaseURL = "http://localhost:11434"
)

// Generator wraps Ollama's streaming generate API.
type Generator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// GeneratorConfig holds configuration for the Ollama generator.
type GeneratorConfig struct {
	// BaseURL is the Ollama API URL (e.g., "http://localhost:11434").
	// Defaults to DefaultBaseURL if empty.
	BaseURL string

	// Model is the generation model to use (e.g., "llama3.2", "mistral").
	// Defaults to DefaultModel if empty.
	Model string
}

// generateRequest is the request body for Ollama's generate API.
type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	System  string           `json:"system,omitempty"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

// generateOptions maps common sampling parameters onto Ollama's option names.
type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

// generateChunk is one NDJSON line of Ollama's streaming response.
type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewGenerator creates a new generator using Ollama's generate API.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Generator{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Generate starts a streaming completion against Ollama's /api/generate
// endpoint. Fragments arrive as NDJSON lines and are yielded one per Recv.
func (g *Generator) Generate(ctx context.Context, genReq llm.GenerateRequest) (llm.Stream, error) {
	reqBody := generateRequest{
		Model:  g.model,
		Prompt: genReq.Prompt,
		System: genReq.System,
		Stream: true,
	}

	if genReq.Temperature != 0 || genReq.MaxTokens != 0 {
		reqBody.Options = &generateOptions{
			Temperature: genReq.Temperature,
			NumPredict:  genReq.MaxTokens,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", g.baseURL+"/api/generate", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	return &stream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// Close releases resources held by the generator.
func (g *Generator) Close() error {
	// HTTP client doesn't require explicit cleanup
	return nil
}

// stream reads NDJSON chunks off the response body.
type stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	done    bool
}

func (s *stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for s.scanner.Scan() {
		line := bytes.TrimSpace(s.scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("decoding chunk: %w", err)
		}

		if chunk.Done {
			s.done = true
			if chunk.Response != "" {
				return chunk.Response, nil
			}
			return "", io.EOF
		}

		return chunk.Response, nil
	}

	if err := s.scanner.Err(); err != nil {
		return "", fmt.Errorf("reading stream: %w", err)
	}

	s.done = true
	return "", io.EOF
}

func (s *stream) Close() error {
	return s.body.Close()
}

// Ensure Generator implements llm.Generator
var _ llm.Generator = (*Generator)(nil)
