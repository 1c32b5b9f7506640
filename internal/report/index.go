package report

import (
	"io"
	"maps"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/docscrape/internal/model"
)

// IndexFileName is the name of the generated table of contents.
const IndexFileName = "_index.md"

// rootGroup names pages stored directly in the output directory.
const rootGroup = "root"

// IndexWriter writes the _index.md table of contents for a scrape.
// Pages are grouped by their directory relative to the output directory.
type IndexWriter struct {
	baseWriter
}

// NewIndexWriter creates an IndexWriter that outputs to the given writer.
func NewIndexWriter(output io.Writer) *IndexWriter {
	return &IndexWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the index for manifest.
func (w *IndexWriter) Write(manifest *model.ScrapeManifest) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, manifest)
	w.writeStatistics(md, manifest)
	w.writePages(md, manifest)
	w.writeFailures(md, manifest)

	return len(md.String()), md.Build()
}

func (w *IndexWriter) writeHeader(md *markdown.Markdown, m *model.ScrapeManifest) {
	title := cases.Title(language.English).String(m.Platform)
	md.H1(title + " Documentation Index")
	md.PlainText("")
	md.PlainText(markdown.Bold("Source:") + " " + m.BaseURL + "  ")
	md.PlainText(markdown.Bold("Scraped:") + " " + m.StartedAt.Format("2006-01-02 15:04:05"))
	md.PlainText("")
}

func (w *IndexWriter) writeStatistics(md *markdown.Markdown, m *model.ScrapeManifest) {
	md.H2("Statistics")
	md.PlainText("")
	md.BulletList(
		"Total URLs: "+strconv.Itoa(m.TotalURLs),
		"Successful: "+strconv.Itoa(m.Successful),
		"Failed: "+strconv.Itoa(m.Failed),
	)
	md.PlainText("")
}

func (w *IndexWriter) writePages(md *markdown.Markdown, m *model.ScrapeManifest) {
	md.H2("Pages")
	md.PlainText("")

	groups := groupPages(m.Pages, m.OutputDir)
	for _, dir := range slices.Sorted(maps.Keys(groups)) {
		md.H3(dir)
		md.PlainText("")

		entries := make([]string, 0, len(groups[dir]))
		for _, p := range groups[dir] {
			title := p.Title
			if title == "" {
				title = model.DefaultTitle
			}
			entries = append(entries,
				markdown.Link(title, filepath.ToSlash(relativePath(p.FilePath, m.OutputDir)))+
					" ("+strconv.Itoa(p.WordCount)+" words)")
		}
		md.BulletList(entries...)
		md.PlainText("")
	}
}

func (w *IndexWriter) writeFailures(md *markdown.Markdown, m *model.ScrapeManifest) {
	if len(m.FailedURLs) == 0 {
		return
	}

	md.H2("Failed URLs")
	md.PlainText("")

	entries := make([]string, 0, len(m.FailedURLs))
	for _, f := range m.FailedURLs {
		msg := f.Error
		if msg == "" {
			msg = "unknown error"
		}
		entries = append(entries, f.URL+": "+msg)
	}
	md.BulletList(entries...)
	md.PlainText("")
}

// groupPages buckets pages by directory relative to outputDir, each bucket
// sorted by file path.
func groupPages(pages []model.PageRecord, outputDir string) map[string][]model.PageRecord {
	sorted := slices.Clone(pages)
	slices.SortStableFunc(sorted, func(a, b model.PageRecord) int {
		return strings.Compare(a.FilePath, b.FilePath)
	})

	groups := make(map[string][]model.PageRecord)
	for _, p := range sorted {
		dir := filepath.ToSlash(filepath.Dir(relativePath(p.FilePath, outputDir)))
		if dir == "." {
			dir = rootGroup
		}
		groups[dir] = append(groups[dir], p)
	}
	return groups
}

// relativePath returns path relative to base, or path unchanged when it
// does not lie under base.
func relativePath(path, base string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}
