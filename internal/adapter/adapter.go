// Package adapter turns documentation platforms into crawlable sources.
//
// An Adapter chooses the discovery strategies for a platform, decides which
// URLs to skip and how to order them, converts fetched HTML into Markdown,
// and maps page URLs to output files. Every adapter in this package is a
// Generic configured by a config.PlatformConfig: the built-in platforms and
// the platforms defined in the config file differ only in their definitions.
package adapter

import (
	"log/slog"
	"net/http"

	"github.com/nao1215/docscrape/internal/discovery"
	"github.com/nao1215/docscrape/internal/httpclient"
	"github.com/nao1215/docscrape/internal/model"
)

// Adapter is the per-platform collaborator of the crawl engine.
type Adapter interface {
	discovery.Source

	// Name is the platform name recorded in the manifest.
	Name() string

	// BaseURL is the platform's documentation root.
	BaseURL() string

	// ExtractContent converts a fetched HTML page into a DocumentPage.
	ExtractContent(html, pageURL string) (*model.DocumentPage, error)

	// URLToFilepath maps a page URL to its Markdown file under outputDir.
	URLToFilepath(pageURL, outputDir string) string
}

// Option configures adapters and the strategies they create.
type Option func(*options)

type options struct {
	logger *slog.Logger
	client *http.Client
	sleep  httpclient.Sleeper
}

// WithLogger sets the logger passed to strategies.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient makes every strategy use client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithSleeper replaces the delay function of the recursive strategy.
func WithSleeper(sleep httpclient.Sleeper) Option {
	return func(o *options) {
		if sleep != nil {
			o.sleep = sleep
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default(), sleep: httpclient.Sleep}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Factory creates an adapter for a crawl of baseURL.
type Factory func(baseURL string, opts ...Option) Adapter
