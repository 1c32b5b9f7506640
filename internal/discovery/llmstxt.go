package discovery

import (
	"context"
	"iter"
	"net/url"
	"regexp"
	"strings"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/httpclient"
	"github.com/nao1215/docscrape/internal/model"
)

// DefaultLLMsTxtPath is the conventional location of an llms.txt index.
const DefaultLLMsTxtPath = "/llms.txt"

var (
	markdownLinkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^\)]+)\)`)
	bareMarkdownPattern = regexp.MustCompile(`https?://[^\s\)\]>"']+\.md`)
)

// LLMsTxt discovers URLs listed in an llms.txt file.
type LLMsTxt struct {
	base
	path string
}

var _ Strategy = (*LLMsTxt)(nil)

// NewLLMsTxt creates an llms.txt strategy. An empty path uses DefaultLLMsTxtPath.
func NewLLMsTxt(path string, opts ...Option) *LLMsTxt {
	if path == "" {
		path = DefaultLLMsTxtPath
	}
	return &LLMsTxt{base: newBase(opts), path: path}
}

// Name returns "llms_txt".
func (l *LLMsTxt) Name() string {
	return config.StrategyLLMsTxt
}

// Discover fetches the llms.txt file once and emits the documentation URLs
// it mentions, in order of first appearance.
func (l *LLMsTxt) Discover(ctx context.Context, cfg *config.ScrapeConfig) iter.Seq[model.DiscoveredURL] {
	return func(yield func(model.DiscoveredURL) bool) {
		client, release := httpclient.Acquire(l.client, cfg)
		defer release()

		scope := cfg.Scope()
		indexURL := scope + "/" + strings.TrimLeft(l.path, "/")
		l.logger.Debug("fetching llms.txt", "url", indexURL)

		resp, err := httpclient.Fetch(ctx, client, indexURL, cfg.MaxBodySize)
		if err == nil {
			err = httpclient.Check(resp)
		}
		if err != nil {
			l.logger.Warn("failed to fetch llms.txt", "url", indexURL, "error", err)
			return
		}

		found := ExtractLLMsTxtURLs(string(resp.Body), scope)
		l.logger.Debug("parsed llms.txt", "url", indexURL, "urls", len(found))

		filter := cfg.FilterOrAll()
		for _, d := range found {
			if !filter.Allows(d.URL) {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// ExtractLLMsTxtURLs returns the in-scope documentation URLs found in an
// llms.txt body. Markdown links are read first so their text becomes the
// title; bare URLs under scope and bare .md URLs follow.
func ExtractLLMsTxtURLs(content, scope string) []model.DiscoveredURL {
	scope = strings.TrimRight(scope, "/")
	set := model.NewDiscoveredSet()

	add := func(rawURL, title string) {
		u := cleanListedURL(rawURL)
		if u == "" || !InScope(u, scope) || isInfrastructure(u) {
			return
		}
		set.Add(model.DiscoveredURL{URL: u, Title: title})
	}

	for _, m := range markdownLinkPattern.FindAllStringSubmatch(content, -1) {
		add(resolveListedURL(strings.TrimSpace(m[2]), scope), strings.TrimSpace(m[1]))
	}

	if scope != "" {
		scopePattern := regexp.MustCompile(regexp.QuoteMeta(scope) + `[^\s\)\]>"']+(?:\.md|\.html|/)?`)
		for _, m := range scopePattern.FindAllString(content, -1) {
			add(m, "")
		}
	}

	for _, m := range bareMarkdownPattern.FindAllString(content, -1) {
		add(m, "")
	}

	return set.Items()
}

// resolveListedURL makes a link from llms.txt absolute.
func resolveListedURL(link, scope string) string {
	switch {
	case strings.HasPrefix(link, "http"):
		return link
	case strings.HasPrefix(link, "/"):
		return scope + link
	}

	baseURL, err := url.Parse(scope + "/")
	if err != nil {
		return ""
	}
	ref, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// cleanListedURL strips trailing punctuation and the fragment.
func cleanListedURL(u string) string {
	u = strings.TrimRight(u, ".,;:)'\"")
	u, _, _ = strings.Cut(u, "#")
	return u
}
