package extract

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_extractor.go -package=mocks campusrag/internal/extract Extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Extractor extracts plain text from a document's raw bytes.
type Extractor interface {
	// ExtractText returns the full text content of the document.
	// An image-only (scanned) PDF yields an empty string, not an error;
	// callers decide whether empty text is a failure.
	ExtractText(ctx context.Context, data []byte) (string, error)
}

// CommandRunner runs an external command and returns its combined output.
// Abstracted so tests can stub the pdftotext binary.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// PDFExtractor extracts text from PDF bytes by invoking the pdftotext
// binary (poppler-utils). The binary reads a temp file and writes the
// text to stdout.
type PDFExtractor struct {
	runner CommandRunner
}

// NewPDFExtractor creates a PDFExtractor backed by the system pdftotext binary.
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{runner: execRunner{}}
}

// NewPDFExtractorWithRunner creates a PDFExtractor with a custom command runner.
func NewPDFExtractorWithRunner(runner CommandRunner) *PDFExtractor {
	return &PDFExtractor{runner: runner}
}

// ExtractText writes the PDF to a temp file and runs pdftotext over it.
func (e *PDFExtractor) ExtractText(ctx context.Context, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document")
	}

	tmp, err := os.CreateTemp("", "campusrag-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	// "-" sends the extracted text to stdout.
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", tmpPath, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext failed: %w", err)
	}

	return strings.TrimSpace(string(out)), nil
}
