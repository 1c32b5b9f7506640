package discovery

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/model"
)

// Source supplies discovery choices and URL rules. Platform adapters
// implement it.
type Source interface {
	// DiscoveryStrategy returns the preferred strategy.
	DiscoveryStrategy() Strategy
	// FallbackStrategy returns the strategy to run when the preferred one
	// finds nothing, or nil.
	FallbackStrategy() Strategy
	// ShouldSkip reports whether a discovered URL must be dropped.
	ShouldSkip(rawURL string) bool
	// URLPriority returns the crawl priority of a URL.
	URLPriority(rawURL string) int
}

// Orchestrator runs a Source's strategies and produces the ordered crawl list.
type Orchestrator struct {
	logger *slog.Logger
}

// NewOrchestrator creates an orchestrator. A nil logger uses slog.Default.
func NewOrchestrator(logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{logger: logger}
}

// Discover runs the preferred strategy to exhaustion. Only when it yields
// nothing is the fallback run. Skipped URLs are dropped, priorities are
// replaced by the Source's, and the result is sorted by SortByPriority.
// The only error returned is the context's.
func (o *Orchestrator) Discover(ctx context.Context, src Source, cfg *config.ScrapeConfig) ([]model.DiscoveredURL, error) {
	urls := o.run(ctx, src.DiscoveryStrategy(), src, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(urls) == 0 {
		if fallback := src.FallbackStrategy(); fallback != nil {
			o.logger.Info("primary discovery found nothing, trying fallback", "strategy", fallback.Name())
			urls = o.run(ctx, fallback, src, cfg)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}

	SortByPriority(urls)
	return urls, nil
}

func (o *Orchestrator) run(ctx context.Context, strategy Strategy, src Source, cfg *config.ScrapeConfig) []model.DiscoveredURL {
	if strategy == nil {
		return nil
	}

	start := time.Now()
	set := model.NewDiscoveredSet()
	skipped := 0
	for d := range strategy.Discover(ctx, cfg) {
		if ctx.Err() != nil {
			break
		}
		if src.ShouldSkip(d.URL) {
			skipped++
			continue
		}
		d.Priority = src.URLPriority(d.URL)
		set.Add(d)
	}

	o.logger.Debug("discovery strategy finished",
		"strategy", strategy.Name(),
		"urls", set.Len(),
		"skipped", skipped,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return set.Items()
}

// SortByPriority orders urls by descending priority, then ascending URL.
func SortByPriority(urls []model.DiscoveredURL) {
	slices.SortStableFunc(urls, func(a, b model.DiscoveredURL) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(a.URL, b.URL)
	})
}
