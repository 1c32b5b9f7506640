package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/docscrape/internal/model"
)

// DefaultMaxFailures is how many failed URLs the summary lists.
const DefaultMaxFailures = 5

// SummaryWriter outputs the end-of-run summary for terminal display.
type SummaryWriter struct {
	baseWriter

	// maxFailures caps the failed URLs listed. The rest are counted.
	maxFailures int
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithMaxFailures sets how many failed URLs are listed.
func WithMaxFailures(n int) SummaryWriterOption {
	return func(w *SummaryWriter) {
		if n >= 0 {
			w.maxFailures = n
		}
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{
		baseWriter:  newBaseWriter(output),
		maxFailures: DefaultMaxFailures,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary of manifest.
func (w *SummaryWriter) Write(manifest *model.ScrapeManifest) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	if manifest.IsComplete() {
		sb.WriteString("Scrape complete\n")
	} else {
		sb.WriteString("Scrape interrupted (progress saved, rerun with --resume)\n")
	}
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Successful: %d\n", manifest.Successful)
	fmt.Fprintf(&sb, "Failed:     %d\n", manifest.Failed)
	fmt.Fprintf(&sb, "Output:     %s\n", manifest.OutputDir)
	if manifest.CompletedAt != nil {
		elapsed := manifest.CompletedAt.Sub(manifest.StartedAt).Round(time.Second)
		fmt.Fprintf(&sb, "Elapsed:    %s\n", elapsed)
	}

	w.writeFailures(&sb, manifest.FailedURLs)

	return w.output.Write([]byte(sb.String()))
}

func (w *SummaryWriter) writeFailures(sb *strings.Builder, failed []model.FailedURL) {
	if len(failed) == 0 || w.maxFailures == 0 {
		return
	}

	sb.WriteString("\nFailed URLs:\n")
	shown := min(len(failed), w.maxFailures)
	for _, f := range failed[:shown] {
		fmt.Fprintf(sb, "  - %s\n", f.URL)
	}
	if rest := len(failed) - shown; rest > 0 {
		fmt.Fprintf(sb, "  ... and %d more\n", rest)
	}
}

// WriteHeader prints the banner shown before a crawl starts.
func WriteHeader(output io.Writer, platform, baseURL, outputDir string, resume bool) error {
	var sb strings.Builder
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Platform: %s\n", platform)
	fmt.Fprintf(&sb, "URL:      %s\n", baseURL)
	fmt.Fprintf(&sb, "Output:   %s\n", outputDir)
	if resume {
		sb.WriteString("Resuming from previous scrape...\n")
	}
	sb.WriteString("\n")
	_, err := io.WriteString(output, sb.String())
	return err
}
