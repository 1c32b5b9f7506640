package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/nao1215/docscrape/internal/adapter"
	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/discovery"
	"github.com/nao1215/docscrape/internal/httpclient"
	"github.com/nao1215/docscrape/internal/model"
	"github.com/nao1215/docscrape/internal/storage"
)

// CheckpointInterval is how many results are processed between manifest
// writes. The count restarts with every run, including resumed ones.
const CheckpointInterval = 10

// Crawler runs one crawl.
type Crawler struct {
	adapter  adapter.Adapter
	storage  storage.Backend
	cfg      *config.ScrapeConfig
	client   *http.Client
	logger   *slog.Logger
	sleep    httpclient.Sleeper
	progress ProgressFunc
	now      func() time.Time
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithHTTPClient makes the crawl loop use client instead of creating one.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Crawler) {
		c.client = client
	}
}

// WithLogger sets a custom logger for the crawler.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper replaces the function used for request delays and backoff.
func WithSleeper(sleep httpclient.Sleeper) Option {
	return func(c *Crawler) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// WithProgress registers a callback for discovery and per-URL events.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) {
		c.progress = fn
	}
}

// WithClock replaces time.Now for manifest timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Crawler. cfg is read, never modified.
func New(a adapter.Adapter, store storage.Backend, cfg *config.ScrapeConfig, opts ...Option) *Crawler {
	c := &Crawler{
		adapter:  a,
		storage:  store,
		cfg:      cfg,
		logger:   slog.Default(),
		sleep:    httpclient.Sleep,
		progress: func(Progress) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.progress == nil {
		c.progress = func(Progress) {}
	}
	return c
}

// Crawl discovers and scrapes every URL, returning the final manifest.
//
// Only invalid configuration, an uncreatable output directory and context
// cancellation are returned as errors. On cancellation the partial manifest
// is returned as well.
func (c *Crawler) Crawl(ctx context.Context) (*model.ScrapeManifest, error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := os.MkdirAll(c.cfg.OutputDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest, completed := c.initManifest(ctx)

	c.progress(Progress{Kind: EventDiscovering})
	discovered, err := discovery.NewOrchestrator(c.logger).Discover(ctx, c.adapter, c.cfg)
	if err != nil {
		return manifest, err
	}

	urls := c.selectURLs(discovered, completed, manifest)
	manifest.TotalURLs = len(urls)

	c.logger.Info("discovery complete",
		"discovered", len(discovered),
		"to_crawl", len(urls),
		"skipped", manifest.Skipped,
	)
	c.progress(Progress{Kind: EventDiscovered, Total: len(urls)})

	if err := c.crawlURLs(ctx, manifest, urls); err != nil {
		c.logger.Warn("crawl interrupted", "processed", manifest.Processed(), "reason", err)
		c.checkpoint(context.WithoutCancel(ctx), manifest)
		return manifest, err
	}

	manifest.Finalize(c.now())
	c.checkpoint(ctx, manifest)

	c.logger.Info("crawl complete",
		"successful", manifest.Successful,
		"failed", manifest.Failed,
	)
	return manifest, nil
}

// initManifest loads the previous manifest when resuming. A missing or
// unreadable manifest starts a fresh run.
func (c *Crawler) initManifest(ctx context.Context) (*model.ScrapeManifest, map[string]struct{}) {
	if c.cfg.Resume {
		prev, err := c.storage.LoadManifest(ctx, c.cfg.OutputDir)
		switch {
		case err != nil:
			c.logger.Warn("could not load manifest, starting fresh", "error", err)
		case prev != nil:
			completed := c.storage.CompletedURLs(prev)
			c.logger.Info("resuming from existing manifest", "pages", len(completed))
			return prev, completed
		default:
			c.logger.Info("no manifest to resume from, starting fresh")
		}
	}

	platform := c.cfg.Platform
	if platform == "" {
		platform = c.adapter.Name()
	}
	return model.NewManifest(platform, c.cfg.BaseURL, c.cfg.OutputDir, c.now()), map[string]struct{}{}
}

// selectURLs drops URLs completed in a previous run, then applies MaxPages.
// The number of dropped URLs is stored in manifest.Skipped.
func (c *Crawler) selectURLs(discovered []model.DiscoveredURL, completed map[string]struct{}, manifest *model.ScrapeManifest) []model.DiscoveredURL {
	urls := discovered
	if len(completed) > 0 {
		urls = make([]model.DiscoveredURL, 0, len(discovered))
		for _, u := range discovered {
			if _, done := completed[u.Key()]; done {
				continue
			}
			urls = append(urls, u)
		}
		manifest.Skipped = len(discovered) - len(urls)
		c.logger.Debug("resume filter applied", "skipped", manifest.Skipped)
	}

	if c.cfg.MaxPages > 0 && len(urls) > c.cfg.MaxPages {
		urls = urls[:c.cfg.MaxPages]
	}
	return urls
}

// crawlURLs processes urls in order. It returns only the context's error.
func (c *Crawler) crawlURLs(ctx context.Context, manifest *model.ScrapeManifest, urls []model.DiscoveredURL) error {
	client, release := httpclient.Acquire(c.client, c.cfg)
	defer release()

	processed := 0
	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}

		c.logger.Debug("crawling", "index", i+1, "total", len(urls), "url", u.URL)
		result := c.crawlURL(ctx, client, u.URL)

		// An interrupted URL is left for the next run, whatever its result.
		if err := ctx.Err(); err != nil {
			return err
		}

		// Once accepted, a result is recorded even if cancellation arrives mid-save.
		c.processResult(context.WithoutCancel(ctx), manifest, result)
		processed++
		if processed%CheckpointInterval == 0 {
			c.checkpoint(ctx, manifest)
		}

		c.progress(Progress{
			Kind:   EventPage,
			Total:  len(urls),
			Done:   processed,
			URL:    u.URL,
			Status: result.Status,
		})

		if i < len(urls)-1 {
			if err := c.sleep(ctx, c.cfg.RequestDelay); err != nil {
				return err
			}
		}
	}
	return nil
}

// crawlURL fetches and extracts one page.
func (c *Crawler) crawlURL(ctx context.Context, client *http.Client, pageURL string) model.CrawlResult {
	start := time.Now()

	resp, err := c.fetchWithRetry(ctx, client, pageURL)
	if err != nil {
		return model.NewFailedResult(pageURL, err, time.Since(start))
	}

	page, err := c.adapter.ExtractContent(string(resp.Body), pageURL)
	if err != nil {
		return model.NewFailedResult(pageURL, fmt.Errorf("extract content: %w", err), time.Since(start))
	}
	page.FilePath = c.adapter.URLToFilepath(pageURL, c.cfg.OutputDir)

	return model.NewSuccessResult(pageURL, page, time.Since(start))
}

// fetchWithRetry makes up to MaxRetries attempts. A 404 or an oversized
// body ends it at once.
// Between attempts it waits RequestDelay times the attempt number.
func (c *Crawler) fetchWithRetry(ctx context.Context, client *http.Client, pageURL string) (*httpclient.Response, error) {
	var lastErr error
	for attempt := range c.cfg.MaxRetries {
		resp, err := httpclient.Fetch(ctx, client, pageURL, c.cfg.MaxBodySize)
		if err == nil {
			err = httpclient.Check(resp)
		}
		if err == nil {
			return resp, nil
		}
		if httpclient.IsNotFound(err) || errors.Is(err, httpclient.ErrBodyTooLarge) {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		lastErr = err
		c.logger.Debug("fetch attempt failed",
			"url", pageURL,
			"attempt", attempt+1,
			"max", c.cfg.MaxRetries,
			"error", err,
		)

		if attempt < c.cfg.MaxRetries-1 {
			if err := c.sleep(ctx, c.cfg.RequestDelay*time.Duration(attempt+1)); err != nil {
				return nil, err
			}
		}
	}
	if lastErr == nil {
		lastErr = errors.New("no fetch attempts made")
	}
	return nil, lastErr
}

// processResult records result in manifest, saving the page first.
// A page that cannot be saved is recorded as a failure.
func (c *Crawler) processResult(ctx context.Context, manifest *model.ScrapeManifest, result model.CrawlResult) {
	if result.Succeeded() {
		if err := c.storage.SavePage(ctx, result.Page, result.Page.FilePath); err != nil {
			c.logger.Warn("failed to save page", "url", result.URL, "error", err)
			manifest.RecordFailure(result.URL, "save page: "+err.Error())
			return
		}
		manifest.RecordSuccess(result.Page)
		c.logger.Debug("saved", "url", result.URL, "path", result.Page.FilePath, "duration", result.Duration)
		return
	}

	c.logger.Warn("failed", "url", result.URL, "error", result.Err)
	manifest.RecordFailure(result.URL, result.Err)
}

// checkpoint writes the manifest. Failures are logged; the in-memory
// manifest stays authoritative and the next checkpoint tries again.
func (c *Crawler) checkpoint(ctx context.Context, manifest *model.ScrapeManifest) {
	if err := c.storage.SaveManifest(ctx, manifest, c.cfg.OutputDir); err != nil {
		c.logger.Warn("failed to write manifest", "error", err)
		return
	}
	c.logger.Debug("manifest saved", "processed", manifest.Processed())
}
