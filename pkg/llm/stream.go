package llm

import (
	"errors"
	"io"
	"strings"
)

// Stream yields text fragments from an in-flight completion.
type Stream interface {
	// Recv returns the next text fragment. It returns io.EOF when the
	// completion is finished.
	Recv() (string, error)

	// Close aborts the stream and releases its resources. Close is safe to
	// call after Recv has returned io.EOF.
	Close() error
}

// Drain consumes a stream to completion and returns the concatenated text.
// The stream is closed before returning.
func Drain(s Stream) (string, error) {
	defer s.Close()

	var sb strings.Builder
	for {
		fragment, err := s.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return sb.String(), nil
			}
			return "", err
		}
		sb.WriteString(fragment)
	}
}
