package report

import (
	"io"

	"github.com/nao1215/docscrape/internal/model"
)

// Writer defines the interface for report output.
// Implementations render a manifest in various formats.
type Writer interface {
	// Write outputs the manifest to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(manifest *model.ScrapeManifest) (int, error)
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
