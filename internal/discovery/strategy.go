// Package discovery enumerates candidate documentation URLs.
//
// A Strategy turns a ScrapeConfig into a lazy, single-pass sequence of
// DiscoveredURL values. Two strategies live here (sitemap and llms.txt);
// the recursive link-following strategy lives in the crawler package.
// The Orchestrator runs an adapter's preferred strategy, falls back when it
// finds nothing, applies adapter rules and sorts the result.
package discovery

import (
	"context"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/model"
)

// Strategy discovers candidate URLs for a crawl.
//
// Discover performs fresh network calls on every invocation. The returned
// sequence may be abandoned early; any resources are released when the
// range loop ends. Failures are logged and end or shorten the sequence,
// they are never returned.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, cfg *config.ScrapeConfig) iter.Seq[model.DiscoveredURL]
}

// Option configures the strategies in this package.
type Option func(*base)

// WithHTTPClient makes the strategy use client instead of creating one per run.
func WithHTTPClient(client *http.Client) Option {
	return func(b *base) {
		b.client = client
	}
}

// WithLogger sets the logger for discovery warnings and debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *base) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// base holds settings shared by the strategies in this package.
type base struct {
	client *http.Client
	logger *slog.Logger
}

func newBase(opts []Option) base {
	b := base{logger: slog.Default()}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// deniedSegments are infrastructure paths that never hold documentation.
var deniedSegments = []string{"/api/", "/cdn/", "/assets/", "/static/", "/_next/", "/images/"}

// InScope reports whether rawURL lies under scope, the base URL without a
// trailing slash. The prefix must end at a path, query or fragment boundary,
// so "https://docs.example.com.evil.net" and "/docs-old" are not under
// "https://docs.example.com" and "/docs".
func InScope(rawURL, scope string) bool {
	rest, ok := strings.CutPrefix(rawURL, scope)
	if !ok {
		return false
	}
	return rest == "" || strings.ContainsRune("/?#", rune(rest[0]))
}

// isInfrastructure reports whether rawURL contains a denied path segment.
func isInfrastructure(rawURL string) bool {
	for _, seg := range deniedSegments {
		if strings.Contains(rawURL, seg) {
			return true
		}
	}
	return false
}
