package config

import (
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "docscrape"

	// DefaultRequestDelay is the pause after every request.
	// Crawls are strictly sequential, so this is the effective rate limit.
	DefaultRequestDelay = 500 * time.Millisecond

	// DefaultTimeout applies to each individual HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of fetch attempts per URL.
	DefaultMaxRetries = 3

	// DefaultMaxPages of 0 means no limit.
	DefaultMaxPages = 0

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies docscrape in HTTP requests.
	DefaultUserAgent = "docscrape/1.0 (+https://github.com/nao1215/docscrape)"
)

// ScrapeConfig holds the settings for a single crawl run.
// It is populated from CLI flags and the config file, validated once, and
// then treated as read-only by every component.
type ScrapeConfig struct {
	// BaseURL is the root of the crawl. Every in-scope URL starts with it.
	BaseURL string

	// OutputDir is where pages, the manifest and the index are written.
	OutputDir string

	// Platform is the adapter name recorded in the manifest.
	Platform string

	// MaxPages truncates the crawl list. 0 means unlimited.
	MaxPages int

	// RequestDelay is the pause after each URL and the unit of retry backoff.
	RequestDelay time.Duration

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxRetries is the number of fetch attempts per URL.
	MaxRetries int

	// IncludePatterns are regexes; when set, a URL must match at least one.
	IncludePatterns []string

	// ExcludePatterns are regexes; a URL matching any of them is dropped.
	ExcludePatterns []string

	// Resume continues from the manifest in OutputDir.
	Resume bool

	// Verbose and Quiet only change the log level.
	Verbose bool
	Quiet   bool

	// UserAgent is sent with every request.
	UserAgent string

	// Headers and Cookie are added to every request.
	Headers map[string]string
	Cookie  string

	// RespectRobots makes the recursive strategy honor robots.txt.
	RespectRobots bool

	// MaxBodySize limits how many bytes of a response are read.
	MaxBodySize int64

	// ConfigFilePath is the explicit --config value, if any.
	ConfigFilePath string

	// DBDir is where the history database lives. Empty disables it.
	DBDir string

	// JSONOutput prints the run summary as JSON.
	JSONOutput bool
}

// NewScrapeConfig creates a ScrapeConfig with default values.
func NewScrapeConfig() *ScrapeConfig {
	return &ScrapeConfig{
		MaxPages:     DefaultMaxPages,
		RequestDelay: DefaultRequestDelay,
		Timeout:      DefaultTimeout,
		MaxRetries:   DefaultMaxRetries,
		UserAgent:    DefaultUserAgent,
		MaxBodySize:  DefaultMaxBodySize,
		Headers:      make(map[string]string),
	}
}

// Scope returns the base URL without trailing slashes.
// A URL is in scope when it has this string as a prefix.
func (c *ScrapeConfig) Scope() string {
	return strings.TrimRight(c.BaseURL, "/")
}

// Host returns the host of the base URL, or "" if it cannot be parsed.
func (c *ScrapeConfig) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// ApplySite merges site-level settings from the config file.
// Values already changed from their defaults by flags are kept.
func (c *ScrapeConfig) ApplySite(site SiteConfig) {
	if site.Cookie != "" && c.Cookie == "" {
		c.Cookie = site.Cookie
	}
	for k, v := range site.Headers {
		if c.Headers == nil {
			c.Headers = make(map[string]string)
		}
		if _, ok := c.Headers[k]; !ok {
			c.Headers[k] = v
		}
	}
	if site.Delay > 0 && c.RequestDelay == DefaultRequestDelay {
		c.RequestDelay = site.Delay
	}
	if site.Timeout > 0 && c.Timeout == DefaultTimeout {
		c.Timeout = site.Timeout
	}
	if site.MaxRetries > 0 && c.MaxRetries == DefaultMaxRetries {
		c.MaxRetries = site.MaxRetries
	}
	if site.UserAgent != "" && c.UserAgent == DefaultUserAgent {
		c.UserAgent = site.UserAgent
	}
	if site.RespectRobots {
		c.RespectRobots = true
	}
	if len(c.IncludePatterns) == 0 {
		c.IncludePatterns = site.Include
	}
	if len(c.ExcludePatterns) == 0 {
		c.ExcludePatterns = site.Exclude
	}
}

// XDGDataDir returns the XDG data directory for docscrape.
// On Linux: ~/.local/share/docscrape
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for docscrape.
// On Linux: ~/.config/docscrape
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *ScrapeConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.OutputDir == "" {
		return ErrNoOutputDir
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxRetries <= 0 {
		return ErrInvalidRetries
	}

	if c.RequestDelay < 0 {
		return ErrInvalidDelay
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Verbose && c.Quiet {
		return ErrConflictingVerbosity
	}

	if _, err := c.Filter(); err != nil {
		return err
	}

	return nil
}
