package testutils

import "fmt"

// MockReader is a test document reader backed by an in-memory path map.
type MockReader struct {
	// Texts maps file path to the text Read returns.
	Texts map[string]string

	// FailOn causes Read to return an error for a matching path.
	FailOn string
}

// NewMockReader creates a reader with the given path-to-text mapping.
func NewMockReader(texts map[string]string) *MockReader {
	if texts == nil {
		texts = make(map[string]string)
	}
	return &MockReader{Texts: texts}
}

func (m *MockReader) Read(path string) (string, error) {
	if m.FailOn != "" && path == m.FailOn {
		return "", fmt.Errorf("mock read failure for: %s", path)
	}

	text, ok := m.Texts[path]
	if !ok {
		return "", fmt.Errorf("mock reader has no text for: %s", path)
	}

	return text, nil
}
