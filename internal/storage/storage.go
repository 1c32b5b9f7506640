// Package storage persists scraped pages and the crawl manifest.
//
// Filesystem is the on-disk backend: one Markdown file per page with YAML
// front matter, an atomically replaced _manifest.json, and a regenerated
// _index.md. Indexed decorates any Backend and mirrors every write into the
// SQLite history database.
package storage

import (
	"context"
	"errors"

	"github.com/nao1215/docscrape/internal/model"
)

// ErrCorruptManifest is returned by LoadManifest when _manifest.json exists
// but cannot be decoded.
var ErrCorruptManifest = errors.New("corrupt manifest")

// Backend stores crawl output.
type Backend interface {
	// SavePage writes page to path, creating parent directories.
	SavePage(ctx context.Context, page *model.DocumentPage, path string) error

	// LoadManifest reads the manifest from outputDir.
	// It returns nil, nil when no manifest exists.
	LoadManifest(ctx context.Context, outputDir string) (*model.ScrapeManifest, error)

	// SaveManifest writes m to outputDir.
	SaveManifest(ctx context.Context, m *model.ScrapeManifest, outputDir string) error

	// CompletedURLs returns the normalized URLs m recorded as scraped.
	CompletedURLs(m *model.ScrapeManifest) map[string]struct{}
}
