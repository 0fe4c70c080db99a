// Package llm defines the text generation contract used by the memory
// compressor. Providers live in subpackages of pkg/llm/provider and
// implement the Generator interface.
package llm

import "context"

// Generator produces text completions for a prompt. Implementations wrap a
// local or remote generation service and stream the completion back.
type Generator interface {
	// Generate starts a completion for the given request. The returned
	// Stream yields text fragments until io.EOF.
	Generate(ctx context.Context, req GenerateRequest) (Stream, error)

	// Close releases resources held by the generator.
	Close() error
}
