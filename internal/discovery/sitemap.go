package discovery

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"iter"
	"math"
	"net/http"
	"strconv"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/httpclient"
	"github.com/nao1215/docscrape/internal/model"
)

// DefaultSitemapPaths are tried in order against the base URL.
var DefaultSitemapPaths = []string{"/sitemap.xml", "/sitemap_index.xml"}

// maxIndexDepth bounds nesting of sitemap indexes.
const maxIndexDepth = 5

// ErrNotSitemap is returned when a document parses as XML but its root is
// neither <urlset> nor <sitemapindex>.
var ErrNotSitemap = errors.New("document is not a sitemap")

// Sitemap discovers URLs from sitemap-protocol XML documents.
type Sitemap struct {
	base
	paths []string
}

var _ Strategy = (*Sitemap)(nil)

// NewSitemap creates a sitemap strategy. Empty paths use DefaultSitemapPaths.
func NewSitemap(paths []string, opts ...Option) *Sitemap {
	if len(paths) == 0 {
		paths = DefaultSitemapPaths
	}
	return &Sitemap{base: newBase(opts), paths: paths}
}

// Name returns "sitemap".
func (s *Sitemap) Name() string {
	return config.StrategySitemap
}

// Discover tries each sitemap path and emits the URLs of the first one that
// answers 200 and parses. Sitemap indexes are followed depth-first.
func (s *Sitemap) Discover(ctx context.Context, cfg *config.ScrapeConfig) iter.Seq[model.DiscoveredURL] {
	return func(yield func(model.DiscoveredURL) bool) {
		client, release := httpclient.Acquire(s.client, cfg)
		defer release()

		w := &sitemapWalk{
			Sitemap: s,
			ctx:     ctx,
			client:  client,
			cfg:     cfg,
			scope:   cfg.Scope(),
			filter:  cfg.FilterOrAll(),
			seen:    model.NewDiscoveredSet(),
			fetched: make(map[string]bool),
			yield:   yield,
		}

		for _, path := range s.paths {
			if ctx.Err() != nil {
				return
			}

			sitemapURL := w.scope + "/" + strings.TrimLeft(path, "/")
			doc, err := w.load(sitemapURL)
			if err != nil {
				s.logger.Debug("sitemap unavailable", "url", sitemapURL, "error", err)
				continue
			}

			w.walk(doc, 0)
			s.logger.Debug("sitemap discovery finished", "url", sitemapURL, "urls", w.seen.Len())
			return
		}
	}
}

// sitemapWalk carries the state of one Discover run.
type sitemapWalk struct {
	*Sitemap
	ctx     context.Context
	client  *http.Client
	cfg     *config.ScrapeConfig
	scope   string
	filter  *config.URLFilter
	seen    *model.DiscoveredSet
	fetched map[string]bool
	yield   func(model.DiscoveredURL) bool
	stopped bool
}

// load fetches and parses one sitemap document.
func (w *sitemapWalk) load(sitemapURL string) (*sitemapDocument, error) {
	w.fetched[model.NormalizeURL(sitemapURL)] = true

	resp, err := httpclient.Fetch(w.ctx, w.client, sitemapURL, w.cfg.MaxBodySize)
	if err != nil {
		w.logger.Warn("failed to fetch sitemap", "url", sitemapURL, "error", err)
		return nil, err
	}
	if !resp.OK() {
		return nil, &httpclient.StatusError{URL: sitemapURL, StatusCode: resp.StatusCode}
	}

	doc, err := parseSitemap(resp.Body)
	if err != nil {
		w.logger.Warn("malformed sitemap", "url", sitemapURL, "error", err)
		return nil, err
	}
	return doc, nil
}

// walk emits the entries of doc, descending into child sitemaps.
func (w *sitemapWalk) walk(doc *sitemapDocument, depth int) {
	if doc.isIndex() {
		if depth >= maxIndexDepth {
			w.logger.Warn("sitemap index nesting too deep, skipping children", "depth", depth)
			return
		}
		for _, child := range doc.Sitemaps {
			if w.stopped || w.ctx.Err() != nil {
				return
			}
			loc := strings.TrimSpace(child.Loc)
			if loc == "" || w.fetched[model.NormalizeURL(loc)] {
				continue
			}
			childDoc, err := w.load(loc)
			if err != nil {
				continue
			}
			w.walk(childDoc, depth+1)
		}
		return
	}

	for _, entry := range doc.URLs {
		if w.stopped {
			return
		}
		loc := strings.TrimSpace(entry.Loc)
		if loc == "" || !InScope(loc, w.scope) || !w.filter.Allows(loc) {
			continue
		}

		d := model.DiscoveredURL{
			URL:      loc,
			Priority: scalePriority(entry.Priority),
			Metadata: entry.metadata(),
		}
		if !w.seen.Add(d) {
			continue
		}
		if !w.yield(d) {
			w.stopped = true
			return
		}
	}
}

// sitemapDocument decodes either a <urlset> or a <sitemapindex>.
// Tags without a namespace match any namespace, so both namespaced and
// bare sitemaps decode.
type sitemapDocument struct {
	XMLName  xml.Name
	URLs     []sitemapURL `xml:"url"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

func (d *sitemapDocument) isIndex() bool {
	return d.XMLName.Local == "sitemapindex"
}

func (u sitemapURL) metadata() map[string]string {
	meta := make(map[string]string, 2)
	if v := strings.TrimSpace(u.LastMod); v != "" {
		meta["lastmod"] = v
	}
	if v := strings.TrimSpace(u.ChangeFreq); v != "" {
		meta["changefreq"] = v
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// parseSitemap decodes body, honoring a non-UTF-8 encoding declaration.
func parseSitemap(body []byte) (*sitemapDocument, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	dec.CharsetReader = charset.NewReaderLabel

	var doc sitemapDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse sitemap: %w", err)
	}

	switch doc.XMLName.Local {
	case "urlset", "sitemapindex":
		return &doc, nil
	default:
		return nil, fmt.Errorf("%w: root element <%s>", ErrNotSitemap, doc.XMLName.Local)
	}
}

// scalePriority converts a sitemap priority in [0.0, 1.0] to 0..100.
// Missing or unparseable values yield 0.
func scalePriority(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) {
		return 0
	}
	p := int(math.Round(f * 100))
	return min(max(p, 0), 100)
}
