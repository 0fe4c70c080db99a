package llm_test

import (
	"errors"
	"io"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/parchmentlabs/engram/pkg/llm"
)

func TestLLM(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "LLM Suite")
}

// scriptedStream replays a fixed set of fragments, optionally failing.
type scriptedStream struct {
	fragments []string
	failWith  error
	pos       int
	closed    bool
}

func (s *scriptedStream) Recv() (string, error) {
	if s.pos >= len(s.fragments) {
		if s.failWith != nil {
			return "", s.failWith
		}
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *scriptedStream) Close() error {
	s.closed = true
	return nil
}

var _ = Describe("Drain", func() {
	It("concatenates all fragments", func() {
		s := &scriptedStream{fragments: []string{"SUMMARY: ", "a ", "tool"}}

		text, err := llm.Drain(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("SUMMARY: a tool"))
	})

	It("closes the stream after draining", func() {
		s := &scriptedStream{fragments: []string{"x"}}

		_, err := llm.Drain(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.closed).To(BeTrue())
	})

	It("returns empty text for an empty stream", func() {
		s := &scriptedStream{}

		text, err := llm.Drain(s)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(BeEmpty())
	})

	It("propagates stream errors", func() {
		s := &scriptedStream{
			fragments: []string{"partial"},
			failWith:  errors.New("connection reset"),
		}

		_, err := llm.Drain(s)
		Expect(err).To(MatchError(ContainSubstring("connection reset")))
		Expect(s.closed).To(BeTrue())
	})
})
