package storage

import (
	"context"
	"log/slog"

	"github.com/nao1215/docscrape/internal/database"
	"github.com/nao1215/docscrape/internal/model"
)

// History is the part of database.CrawlDB that Indexed writes to.
type History interface {
	UpsertPage(ctx context.Context, record *database.PageRecord) (bool, error)
	SaveRun(ctx context.Context, run *database.RunRecord) (int64, error)
}

var _ History = (*database.CrawlDB)(nil)

// Indexed wraps a Backend and records every saved page and manifest in the
// history database. Database failures are logged and never fail a write.
type Indexed struct {
	Backend

	history History
	baseURL string
	logger  *slog.Logger
	changed int
}

// NewIndexed creates an Indexed backend for a crawl of baseURL.
func NewIndexed(inner Backend, history History, baseURL string, logger *slog.Logger) *Indexed {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexed{
		Backend: inner,
		history: history,
		baseURL: baseURL,
		logger:  logger,
	}
}

// SavePage writes the page through the wrapped backend, then upserts it.
func (ix *Indexed) SavePage(ctx context.Context, page *model.DocumentPage, path string) error {
	if err := ix.Backend.SavePage(ctx, page, path); err != nil {
		return err
	}

	changed, err := ix.history.UpsertPage(ctx, &database.PageRecord{
		URL:         page.URL,
		BaseURL:     ix.baseURL,
		FilePath:    path,
		Title:       page.Title,
		WordCount:   page.WordCount(),
		ContentHash: page.ContentHash(),
		ScrapedAt:   page.ScrapedAt,
	})
	if err != nil {
		ix.logger.Warn("failed to index page", "url", page.URL, "error", err)
		return nil
	}
	if changed {
		ix.changed++
		ix.logger.Debug("page content changed", "url", page.URL)
	}
	return nil
}

// SaveManifest writes m through the wrapped backend, then records the run.
func (ix *Indexed) SaveManifest(ctx context.Context, m *model.ScrapeManifest, outputDir string) error {
	if err := ix.Backend.SaveManifest(ctx, m, outputDir); err != nil {
		return err
	}

	_, err := ix.history.SaveRun(ctx, &database.RunRecord{
		Platform:    m.Platform,
		BaseURL:     m.BaseURL,
		OutputDir:   m.OutputDir,
		StartedAt:   m.StartedAt,
		CompletedAt: m.CompletedAt,
		TotalURLs:   m.TotalURLs,
		Successful:  m.Successful,
		Failed:      m.Failed,
		Skipped:     m.Skipped,
	})
	if err != nil {
		ix.logger.Warn("failed to record run", "error", err)
	}
	return nil
}

// Changed returns how many saved pages were new or had different content
// from what the history database held.
func (ix *Indexed) Changed() int {
	return ix.changed
}
