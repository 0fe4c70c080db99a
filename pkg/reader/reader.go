// Package reader loads document text from disk for learning. Plain text
// and markdown are read directly; PDFs go through a text extractor.
package reader

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dslipak/pdf"
)

// ErrUnsupportedFormat is returned when a file's extension is not a
// recognized document format.
var ErrUnsupportedFormat = fmt.Errorf("unsupported document format")

// FileReader reads document text from local files, dispatching on extension.
type FileReader struct{}

// New creates a new file reader.
func New() *FileReader {
	return &FileReader{}
}

// Read returns the text content of the document at path.
func (r *FileReader) Read(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".markdown", ".text":
		return readPlainText(path)
	case ".pdf":
		return readPDF(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

func readPlainText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}

	plain, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}

	return buf.String(), nil
}
