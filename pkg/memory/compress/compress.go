// Package compress turns raw document text into a bounded memory.Record.
// It drives a generation service with a fixed extraction prompt, parses the
// free-form output, and degrades through salvage and fallback paths when
// generation is unavailable or unusable. Compression never fails: every
// document yields some record.
package compress

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parchmentlabs/engram/pkg/llm"
	"github.com/parchmentlabs/engram/pkg/logger"
	"github.com/parchmentlabs/engram/pkg/memory"
	"github.com/parchmentlabs/engram/pkg/utils"
)

const (
	// promptTextCap bounds the document prefix sent to the generation
	// service, keeping latency and context usage predictable.
	promptTextCap = 6000

	// Sampling parameters favor determinism over creativity.
	temperature = 0.2
	maxTokens   = 600

	systemPrompt = "You extract key information from documents concisely."

	promptTemplate = `Extract key information from this document:

%s

Respond with:
1. A brief summary (2-3 sentences)
2. Main concepts or topics (list 5-10)
3. Important facts or key points (list 5-10)`

	// fallbackSummaryLen bounds the summary built from raw text when no
	// generation output is available.
	fallbackSummaryLen = 300
	fallbackLines      = 5

	// structureCompressed marks records produced from generation output.
	structureCompressed = "Compressed"

	// structureNotAnalyzed marks records produced without generation.
	structureNotAnalyzed = "Document structure not analyzed"
)

// Engine compresses documents using a shared generation handle. It performs
// no concurrency control of its own; callers serialize Compress calls.
type Engine struct {
	generator llm.Generator
	logger    *slog.Logger
}

// Config holds configuration for the engine.
type Config struct {
	// Generator produces the extraction text. Nil means every document
	// takes the no-generation fallback path.
	Generator llm.Generator

	// Logger defaults to a no-op logger.
	Logger *slog.Logger
}

// New creates a compression engine.
func New(cfg Config) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	return &Engine{
		generator: cfg.Generator,
		logger:    log,
	}
}

// Compress produces the record for one document. Generation failures and
// unusable output degrade to fallback paths; the returned record is always
// non-nil and within bounds.
func (e *Engine) Compress(ctx context.Context, id, name, text string) *memory.Record {
	if e.generator == nil {
		return e.fallback(id, name, text)
	}

	sample := utils.Clip(text, promptTextCap)

	stream, err := e.generator.Generate(ctx, llm.GenerateRequest{
		Prompt:      fmt.Sprintf(promptTemplate, sample),
		System:      systemPrompt,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		e.logger.Warn("generation failed, using fallback", "name", name, "error", err)
		return e.fallback(id, name, text)
	}

	output, err := llm.Drain(stream)
	if err != nil {
		e.logger.Warn("generation stream failed, using fallback", "name", name, "error", err)
		return e.fallback(id, name, text)
	}

	if strings.TrimSpace(output) == "" {
		e.logger.Warn("generation produced no text, using fallback", "name", name)
		return e.fallback(id, name, text)
	}

	return parse(id, name, output, text)
}

// fallback builds a record without any generation output. The summary is the
// first few lines of the raw text and the structure field flags that no
// extraction happened.
func (e *Engine) fallback(id, name, text string) *memory.Record {
	lines := strings.Split(text, "\n")
	if len(lines) > fallbackLines {
		lines = lines[:fallbackLines]
	}

	summary := utils.Clip(strings.Join(lines, " "), fallbackSummaryLen)

	record := &memory.Record{
		ID:          id,
		Name:        name,
		Summary:     summary,
		KeyConcepts: []string{},
		Facts:       []string{},
		Glossary:    map[string]string{},
		Structure:   structureNotAnalyzed,
		RawText:     text,
	}
	record.Clip()

	return record
}

// Ensure Engine implements memory.Compressor
var _ memory.Compressor = (*Engine)(nil)
