package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Discovery strategy names usable in platform definitions.
const (
	StrategySitemap   = "sitemap"
	StrategyLLMsTxt   = "llms_txt"
	StrategyRecursive = "recursive"
)

// SiteConfig holds request settings for one documentation host.
type SiteConfig struct {
	// Cookie is sent with every request. Format: "name=value; other=value".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are added to every request to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Delay overrides the default request delay.
	Delay time.Duration `yaml:"delay,omitempty"`

	// Timeout overrides the default per-request timeout.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// MaxRetries overrides the default number of attempts.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// UserAgent overrides the default User-Agent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// RespectRobots makes the recursive strategy honor robots.txt.
	RespectRobots bool `yaml:"respect_robots,omitempty"`

	// Include and Exclude are URL regexes used when no flags are given.
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// SkipRule drops URLs containing Contains, unless they also contain Unless.
type SkipRule struct {
	Contains string `yaml:"contains"`
	Unless   string `yaml:"unless,omitempty"`
}

// PriorityRule assigns Priority to URLs containing Contains.
// Rules are checked in order and the first match wins.
type PriorityRule struct {
	Contains   string `yaml:"contains"`
	Priority   int    `yaml:"priority"`
	IgnoreCase bool   `yaml:"ignore_case,omitempty"`
}

// PlatformConfig defines a documentation platform adapter in the config file.
type PlatformConfig struct {
	BaseURL     string   `yaml:"base_url"`
	URLPatterns []string `yaml:"url_patterns,omitempty"`

	// Discovery is the preferred strategy; Fallback runs only when it finds nothing.
	Discovery string `yaml:"discovery,omitempty"`
	Fallback  string `yaml:"fallback,omitempty"`

	LLMsTxtPath  string   `yaml:"llms_txt_path,omitempty"`
	SitemapPaths []string `yaml:"sitemap_paths,omitempty"`

	// MaxDepth and ContentSelector configure the recursive strategy.
	MaxDepth        int    `yaml:"max_depth,omitempty"`
	ContentSelector string `yaml:"content_selector,omitempty"`

	// ContentSelectors and SkipSelectors configure content extraction.
	ContentSelectors []string `yaml:"content_selectors,omitempty"`
	SkipSelectors    []string `yaml:"skip_selectors,omitempty"`

	Skip            []SkipRule     `yaml:"skip,omitempty"`
	Priorities      []PriorityRule `yaml:"priorities,omitempty"`
	DefaultPriority int            `yaml:"default_priority,omitempty"`

	// KeepMarkdownExtension maps "/a/b.md" to "a/b.md" instead of stripping
	// and re-adding the extension.
	KeepMarkdownExtension bool `yaml:"keep_markdown_extension,omitempty"`
}

// Validate checks that a platform definition can be turned into an adapter.
func (p PlatformConfig) Validate() error {
	u, err := url.Parse(p.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q", ErrInvalidPlatform, p.BaseURL)
	}
	if !isKnownStrategy(p.Discovery, true) {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, p.Discovery)
	}
	if !isKnownStrategy(p.Fallback, true) {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, p.Fallback)
	}
	if p.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must be non-negative", ErrInvalidPlatform)
	}
	return nil
}

func isKnownStrategy(name string, allowEmpty bool) bool {
	switch strings.ToLower(name) {
	case StrategySitemap, StrategyLLMsTxt, StrategyRecursive:
		return true
	case "":
		return allowEmpty
	default:
		return false
	}
}

// File represents the structure of the .docscrape configuration file.
type File struct {
	// Defaults apply to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps a host (e.g. "docs.example.com") to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Platforms defines additional adapters by name.
	Platforms map[string]PlatformConfig `yaml:"platforms,omitempty"`
}

// Validate checks every platform definition.
func (cf *File) Validate() error {
	for name, p := range cf.Platforms {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty platform name", ErrInvalidPlatform)
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("platform %s: %w", name, err)
		}
	}
	return nil
}

// GetSiteConfig returns the configuration for host merged over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	if site.Delay > 0 {
		result.Delay = site.Delay
	}
	if site.Timeout > 0 {
		result.Timeout = site.Timeout
	}
	if site.MaxRetries > 0 {
		result.MaxRetries = site.MaxRetries
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if site.RespectRobots {
		result.RespectRobots = true
	}
	if len(site.Include) > 0 {
		result.Include = site.Include
	}
	if len(site.Exclude) > 0 {
		result.Exclude = site.Exclude
	}

	return result
}
