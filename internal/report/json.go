package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/nao1215/docscrape/internal/model"
)

// JSONWriter outputs the run summary in JSON format.
// This format is designed for scripting and CI pipelines.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary of manifest in JSON format.
func (w *JSONWriter) Write(manifest *model.ScrapeManifest) (int, error) {
	return w.writeJSON(NewSummary(manifest))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// Summary is the machine-readable result of a run.
// It omits the page list, which lives in _manifest.json.
type Summary struct {
	Platform    string            `json:"platform"`
	BaseURL     string            `json:"base_url"`
	OutputDir   string            `json:"output_dir"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at"`
	Complete    bool              `json:"complete"`
	TotalURLs   int               `json:"total_urls"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	Skipped     int               `json:"skipped"`
	FailedURLs  []model.FailedURL `json:"failed_urls"`
}

// NewSummary builds a Summary from manifest.
func NewSummary(m *model.ScrapeManifest) *Summary {
	failed := m.FailedURLs
	if failed == nil {
		failed = make([]model.FailedURL, 0)
	}
	return &Summary{
		Platform:    m.Platform,
		BaseURL:     m.BaseURL,
		OutputDir:   m.OutputDir,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		Complete:    m.IsComplete(),
		TotalURLs:   m.TotalURLs,
		Successful:  m.Successful,
		Failed:      m.Failed,
		Skipped:     m.Skipped,
		FailedURLs:  failed,
	}
}
