package crawler

import (
	"bytes"
	"context"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/temoto/robotstxt"

	"github.com/nao1215/docscrape/internal/config"
	"github.com/nao1215/docscrape/internal/discovery"
	"github.com/nao1215/docscrape/internal/httpclient"
	"github.com/nao1215/docscrape/internal/model"
)

// DefaultMaxDepth is the link depth explored when no option overrides it.
const DefaultMaxDepth = 5

// skipPatterns drop URLs that are assets or infrastructure, never pages.
var skipPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)/api/`),
	regexp.MustCompile(`(?i)/assets/`),
	regexp.MustCompile(`(?i)/static/`),
	regexp.MustCompile(`(?i)/_next/`),
	regexp.MustCompile(`(?i)/images/`),
	regexp.MustCompile(`(?i)\.(png|jpg|gif|svg|css|js|woff|ttf)$`),
}

// Spider discovers documentation pages by following links breadth-first
// from the base URL. It is the recursive discovery strategy.
//
// Every fetch is followed by the configured request delay, so the spider
// costs one request per page and is best used as a fallback.
type Spider struct {
	// maxDepth limits how deep to crawl from the base URL.
	// 0 means only the base page, 1 means one level of links, etc.
	maxDepth int

	// contentSelector restricts link extraction to a content area.
	contentSelector string

	// client is used instead of a per-run client when set.
	client *http.Client

	logger *slog.Logger

	// respectRobots forces robots.txt checks even when the config does not ask.
	respectRobots bool

	sleep httpclient.Sleeper
}

var _ discovery.Strategy = (*Spider)(nil)

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithMaxDepth sets the maximum crawl depth.
func WithMaxDepth(depth int) SpiderOption {
	return func(s *Spider) {
		if depth >= 0 {
			s.maxDepth = depth
		}
	}
}

// WithContentSelector limits link extraction to the first element matching
// the CSS selector.
func WithContentSelector(selector string) SpiderOption {
	return func(s *Spider) {
		s.contentSelector = selector
	}
}

// WithHTTPClient makes the spider use client for every run.
func WithHTTPClient(client *http.Client) SpiderOption {
	return func(s *Spider) {
		s.client = client
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRespectRobots makes the spider honor robots.txt.
func WithRespectRobots(respect bool) SpiderOption {
	return func(s *Spider) {
		s.respectRobots = respect
	}
}

// WithSleeper replaces the delay function.
func WithSleeper(sleep httpclient.Sleeper) SpiderOption {
	return func(s *Spider) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// NewSpider creates a recursive discovery strategy.
func NewSpider(opts ...SpiderOption) *Spider {
	s := &Spider{
		maxDepth: DefaultMaxDepth,
		logger:   slog.Default(),
		sleep:    httpclient.Sleep,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns "recursive".
func (s *Spider) Name() string {
	return config.StrategyRecursive
}

// queueItem represents an item in the crawl queue.
type queueItem struct {
	url   string
	depth int
}

// Discover crawls from the base URL and emits every in-scope HTML page that
// answers 200. Priority falls by 10 per level of depth, with a floor of 0.
func (s *Spider) Discover(ctx context.Context, cfg *config.ScrapeConfig) iter.Seq[model.DiscoveredURL] {
	return func(yield func(model.DiscoveredURL) bool) {
		client, release := httpclient.Acquire(s.client, cfg)
		defer release()

		scope := cfg.Scope()
		filter := cfg.FilterOrAll()

		var robots *robotstxt.RobotsData
		if s.respectRobots || cfg.RespectRobots {
			robots = s.loadRobots(ctx, client, cfg)
		}

		visited := make(map[string]bool)
		queue := []queueItem{{url: scope, depth: 0}}

		for len(queue) > 0 {
			if ctx.Err() != nil {
				return
			}

			item := queue[0]
			queue = queue[1:]

			pageURL := model.NormalizeURL(item.url)
			if visited[pageURL] || item.depth > s.maxDepth {
				continue
			}
			visited[pageURL] = true

			if !s.shouldProcess(pageURL, scope, filter) {
				continue
			}
			if !allowedByRobots(robots, pageURL, cfg.UserAgent) {
				s.logger.Debug("disallowed by robots.txt", "url", pageURL)
				continue
			}

			s.logger.Debug("discovering", "url", pageURL, "depth", item.depth)
			resp, err := httpclient.Fetch(ctx, client, pageURL, cfg.MaxBodySize)
			if err != nil {
				s.logger.Debug("fetch failed during discovery", "url", pageURL, "error", err)
			}

			if err == nil && resp.OK() && resp.IsHTML() {
				parsed, perr := s.parse(pageURL, resp.Body)
				if perr != nil {
					s.logger.Debug("failed to parse page", "url", pageURL, "error", perr)
				} else {
					d := model.DiscoveredURL{
						URL:      pageURL,
						Title:    parsed.Title,
						Priority: max(0, 100-item.depth*10),
					}
					if !yield(d) {
						return
					}

					if item.depth < s.maxDepth {
						for _, link := range parsed.InternalLinks {
							if !visited[link] {
								queue = append(queue, queueItem{url: link, depth: item.depth + 1})
							}
						}
					}
				}
			}

			if err := s.sleep(ctx, cfg.RequestDelay); err != nil {
				return
			}
		}
	}
}

func (s *Spider) parse(pageURL string, body []byte) (*ParseResult, error) {
	parser, err := NewParser(pageURL, s.contentSelector)
	if err != nil {
		return nil, err
	}
	return parser.Parse(bytes.NewReader(body))
}

// shouldProcess checks scope, the include/exclude filter and the asset
// skip list.
func (s *Spider) shouldProcess(pageURL, scope string, filter *config.URLFilter) bool {
	if !discovery.InScope(pageURL, scope) {
		return false
	}
	if !filter.Allows(pageURL) {
		return false
	}
	for _, re := range skipPatterns {
		if re.MatchString(pageURL) {
			return false
		}
	}
	return true
}

// loadRobots fetches robots.txt from the base URL's origin. Any failure
// yields nil, which allows everything.
func (s *Spider) loadRobots(ctx context.Context, client *http.Client, cfg *config.ScrapeConfig) *robotstxt.RobotsData {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil
	}
	robotsURL := u.Scheme + "://" + u.Host + "/robots.txt"

	resp, err := httpclient.Fetch(ctx, client, robotsURL, cfg.MaxBodySize)
	if err != nil {
		s.logger.Debug("robots.txt unavailable", "url", robotsURL, "error", err)
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, resp.Body)
	if err != nil {
		s.logger.Warn("invalid robots.txt, ignoring", "url", robotsURL, "error", err)
		return nil
	}
	return data
}

func allowedByRobots(robots *robotstxt.RobotsData, pageURL, userAgent string) bool {
	if robots == nil {
		return true
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return true
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	agent, _, _ := strings.Cut(userAgent, "/")
	return robots.TestAgent(path, agent)
}
