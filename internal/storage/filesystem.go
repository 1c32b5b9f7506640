package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/report"
)

// ManifestFileName is the manifest written to the output directory.
const ManifestFileName = "_manifest.json"

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

var _ Backend = (*Filesystem)(nil)

// frontMatter is the YAML header of every page file.
type frontMatter struct {
	Title     string    `yaml:"title"`
	URL       string    `yaml:"url"`
	ScrapedAt time.Time `yaml:"scraped_at"`
	WordCount int       `yaml:"word_count"`
}

// Filesystem stores pages and the manifest under the output directory.
type Filesystem struct {
	logger *slog.Logger
}

// FilesystemOption configures a Filesystem.
type FilesystemOption func(*Filesystem)

// WithLogger sets the logger used for index generation warnings.
func WithLogger(logger *slog.Logger) FilesystemOption {
	return func(fs *Filesystem) {
		if logger != nil {
			fs.logger = logger
		}
	}
}

// NewFilesystem creates a filesystem backend.
func NewFilesystem(opts ...FilesystemOption) *Filesystem {
	fs := &Filesystem{logger: slog.Default()}
	for _, opt := range opts {
		opt(fs)
	}
	return fs
}

// SavePage writes page as front matter followed by its Markdown body.
func (fs *Filesystem) SavePage(ctx context.Context, page *model.DocumentPage, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return fmt.Errorf("no output path for %s", page.URL)
	}

	content, err := renderPage(page)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return fmt.Errorf("failed to create page directory: %w", err)
	}
	if err := os.WriteFile(path, content, filePerm); err != nil { //nolint:gosec // pages are meant to be world-readable
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

// renderPage builds the page file content.
func renderPage(page *model.DocumentPage) ([]byte, error) {
	header, err := yaml.Marshal(frontMatter{
		Title:     page.Title,
		URL:       page.URL,
		ScrapedAt: page.ScrapedAt.UTC(),
		WordCount: page.WordCount(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(header)
	buf.WriteString("---\n\n")
	buf.WriteString(page.Markdown)
	if !strings.HasSuffix(page.Markdown, "\n") {
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// LoadManifest reads _manifest.json from outputDir.
func (fs *Filesystem) LoadManifest(ctx context.Context, outputDir string) (*model.ScrapeManifest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFileName)) //nolint:gosec // path is built from the output directory
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m model.ScrapeManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptManifest, err)
	}
	return &m, nil
}

// SaveManifest atomically replaces _manifest.json and regenerates _index.md.
// A failed index write is logged; the manifest is what resume depends on.
func (fs *Filesystem) SaveManifest(ctx context.Context, m *model.ScrapeManifest, outputDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := writeFileAtomic(filepath.Join(outputDir, ManifestFileName), append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	var index bytes.Buffer
	if _, err := report.NewIndexWriter(&index).Write(m); err != nil {
		fs.logger.Warn("failed to render index", "error", err)
		return nil
	}
	if err := writeFileAtomic(filepath.Join(outputDir, report.IndexFileName), index.Bytes()); err != nil {
		fs.logger.Warn("failed to write index", "error", err)
	}
	return nil
}

// CompletedURLs returns the normalized URLs of every page in m.
func (fs *Filesystem) CompletedURLs(m *model.ScrapeManifest) map[string]struct{} {
	if m == nil {
		return map[string]struct{}{}
	}
	return m.CompletedURLs()
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
