package testutils

import (
	"context"
	"fmt"
	"io"

	"github.com/parchmentlabs/engram/pkg/llm"
)

// MockGenerator is a test generator that replays scripted fragments and
// records the last request it saw.
type MockGenerator struct {
	// Fragments are yielded one per Recv before the stream ends.
	Fragments []string

	// FailGenerate causes Generate to return an error.
	FailGenerate bool

	// FailStream causes the stream to fail after yielding all fragments.
	FailStream bool

	// LastRequest holds the most recent request passed to Generate.
	LastRequest llm.GenerateRequest

	// Calls counts Generate invocations.
	Calls int
}

// NewMockGenerator creates a generator that yields the given fragments.
func NewMockGenerator(fragments ...string) *MockGenerator {
	return &MockGenerator{Fragments: fragments}
}

func (m *MockGenerator) Generate(_ context.Context, req llm.GenerateRequest) (llm.Stream, error) {
	m.Calls++
	m.LastRequest = req

	if m.FailGenerate {
		return nil, fmt.Errorf("mock generation failure")
	}

	return &mockStream{fragments: m.Fragments, failAtEnd: m.FailStream}, nil
}

func (m *MockGenerator) Close() error {
	return nil
}

type mockStream struct {
	fragments []string
	failAtEnd bool
	pos       int
}

func (s *mockStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		if s.failAtEnd {
			return "", fmt.Errorf("mock stream failure")
		}
		return "", io.EOF
	}

	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *mockStream) Close() error {
	return nil
}

// Ensure MockGenerator implements llm.Generator
var _ llm.Generator = (*MockGenerator)(nil)
