package adapter

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/crawler"
	"github.com/nao1215/docscrape/internal/discovery"
	"github.com/nao1215/docscrape/internal/model"
)

// GenericName is the name of the adapter used for unknown sites.
const GenericName = "generic"

// DefaultContentSelectors are tried in order to find the content area.
var DefaultContentSelectors = []string{
	"article",
	"main",
	".markdown-body",
	".content",
	".documentation",
	".docs-content",
	"#content",
	"#main-content",
}

// DefaultSkipSelectors are removed from the page before extraction.
var DefaultSkipSelectors = []string{
	"nav",
	"header",
	"footer",
	".sidebar",
	".toc",
	".table-of-contents",
	".navigation",
	".breadcrumb",
	".edit-page",
	".feedback",
	"script",
	"style",
}

// removedExtensions are stripped from URL paths before ".md" is appended.
var removedExtensions = []string{".html", ".htm", ".md"}

// Generic is an adapter driven by a platform definition.
type Generic struct {
	name string
	def  config.PlatformConfig
	opts options
	conv *md.Converter
}

var _ Adapter = (*Generic)(nil)

// NewGeneric creates the sitemap-based adapter used for sites without a
// dedicated definition.
func NewGeneric(baseURL string, opts ...Option) *Generic {
	return New(GenericName, config.PlatformConfig{BaseURL: baseURL}, opts...)
}

// New creates an adapter named name from def. Empty fields of def take
// the generic defaults.
func New(name string, def config.PlatformConfig, opts ...Option) *Generic {
	def.BaseURL = strings.TrimRight(def.BaseURL, "/")
	if def.Discovery == "" {
		def.Discovery = config.StrategySitemap
	}
	if len(def.ContentSelectors) == 0 {
		def.ContentSelectors = DefaultContentSelectors
	}
	if len(def.SkipSelectors) == 0 {
		def.SkipSelectors = DefaultSkipSelectors
	}

	return &Generic{
		name: name,
		def:  def,
		opts: newOptions(opts),
		conv: md.NewConverter("", true, &md.Options{
			HeadingStyle:   "atx",
			CodeBlockStyle: "fenced",
		}),
	}
}

// Name returns the platform name.
func (g *Generic) Name() string {
	return g.name
}

// BaseURL returns the documentation root without a trailing slash.
func (g *Generic) BaseURL() string {
	return g.def.BaseURL
}

// Definition returns the platform definition with defaults applied.
func (g *Generic) Definition() config.PlatformConfig {
	return g.def
}

// DiscoveryStrategy returns the preferred strategy.
func (g *Generic) DiscoveryStrategy() discovery.Strategy {
	return g.strategy(g.def.Discovery)
}

// FallbackStrategy returns the fallback strategy, or nil.
func (g *Generic) FallbackStrategy() discovery.Strategy {
	if g.def.Fallback == "" {
		return nil
	}
	return g.strategy(g.def.Fallback)
}

func (g *Generic) strategy(name string) discovery.Strategy {
	switch strings.ToLower(name) {
	case config.StrategyLLMsTxt:
		return discovery.NewLLMsTxt(g.def.LLMsTxtPath,
			discovery.WithHTTPClient(g.opts.client),
			discovery.WithLogger(g.opts.logger),
		)
	case config.StrategyRecursive:
		spiderOpts := []crawler.SpiderOption{
			crawler.WithContentSelector(g.def.ContentSelector),
			crawler.WithHTTPClient(g.opts.client),
			crawler.WithLogger(g.opts.logger),
			crawler.WithSleeper(g.opts.sleep),
		}
		if g.def.MaxDepth > 0 {
			spiderOpts = append(spiderOpts, crawler.WithMaxDepth(g.def.MaxDepth))
		}
		return crawler.NewSpider(spiderOpts...)
	default:
		return discovery.NewSitemap(g.def.SitemapPaths,
			discovery.WithHTTPClient(g.opts.client),
			discovery.WithLogger(g.opts.logger),
		)
	}
}

// ShouldSkip reports whether any skip rule matches pageURL.
func (g *Generic) ShouldSkip(pageURL string) bool {
	for _, rule := range g.def.Skip {
		if rule.Contains == "" || !strings.Contains(pageURL, rule.Contains) {
			continue
		}
		if rule.Unless != "" && strings.Contains(pageURL, rule.Unless) {
			continue
		}
		return true
	}
	return false
}

// URLPriority returns the priority of the first matching rule, or the
// default priority.
func (g *Generic) URLPriority(pageURL string) int {
	lower := strings.ToLower(pageURL)
	for _, rule := range g.def.Priorities {
		if rule.IgnoreCase {
			if strings.Contains(lower, strings.ToLower(rule.Contains)) {
				return rule.Priority
			}
			continue
		}
		if strings.Contains(pageURL, rule.Contains) {
			return rule.Priority
		}
	}
	return g.def.DefaultPriority
}

// URLToFilepath maps pageURL to a Markdown file under outputDir.
// "/guide/intro.html" becomes "guide/intro.md" and the root becomes
// "index.md". Parent references never leave outputDir.
func (g *Generic) URLToFilepath(pageURL, outputDir string) string {
	var p string
	if u, err := url.Parse(pageURL); err == nil {
		p = u.Path
	}
	p = strings.Trim(path.Clean("/"+p), "/")

	if g.def.KeepMarkdownExtension {
		switch {
		case p == "":
			p = "index.md"
		case !strings.HasSuffix(p, ".md"):
			p += ".md"
		}
		return filepath.Join(outputDir, filepath.FromSlash(p))
	}

	if p == "" {
		p = "index"
	}
	for _, ext := range removedExtensions {
		p = strings.TrimSuffix(p, ext)
	}
	return filepath.Join(outputDir, filepath.FromSlash(p+".md"))
}

// ExtractContent removes the skip selectors, converts the first matching
// content area to Markdown and collects its same-host links.
func (g *Generic) ExtractContent(html, pageURL string) (*model.DocumentPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseHTML, pageURL, err)
	}

	for _, sel := range g.def.SkipSelectors {
		doc.Find(sel).Remove()
	}

	content, matched := g.contentArea(doc)
	links := extractLinks(content, pageURL)

	normalizeCodeLanguages(content)
	contentHTML, err := goquery.OuterHtml(content)
	if err != nil {
		contentHTML = ""
	}
	markdown := cleanMarkdown(g.conv.Convert(content))

	var fallbackTitle string
	if markdown == "" && !matched {
		if article, ok := readabilityArticle(html, pageURL); ok {
			if converted, err := g.conv.ConvertString(article.html); err == nil {
				markdown = cleanMarkdown(converted)
				contentHTML = article.html
			}
			fallbackTitle = article.title
		}
	}

	title := extractTitle(doc, markdown)
	if title == "" {
		title = fallbackTitle
	}

	return model.NewDocumentPage(pageURL, title, markdown, contentHTML, links), nil
}

// contentArea returns the first element matching a content selector, then
// <body>, then the whole document. matched reports a selector hit.
func (g *Generic) contentArea(doc *goquery.Document) (sel *goquery.Selection, matched bool) {
	for _, s := range g.def.ContentSelectors {
		if found := doc.Find(s).First(); found.Length() > 0 {
			return found, true
		}
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body, false
	}
	return doc.Selection, false
}

// extractLinks returns the absolute same-host links inside content.
func extractLinks(content *goquery.Selection, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	links := make([]string, 0)
	content.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") ||
			strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
			return
		}
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Host == base.Host {
			links = append(links, resolved.String())
		}
	})
	return links
}
