package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewScrapeConfig documents the default values.
func TestNewScrapeConfig(t *testing.T) {
	t.Parallel()

	cfg := NewScrapeConfig()

	t.Run("default RequestDelay is 500ms", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestDelay != 500*time.Millisecond {
			t.Errorf("expected RequestDelay to be 500ms, got %v", cfg.RequestDelay)
		}
	})

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default MaxRetries is 3", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxRetries != 3 {
			t.Errorf("expected MaxRetries to be 3, got %d", cfg.MaxRetries)
		}
	})

	t.Run("default MaxPages is unlimited", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 0 {
			t.Errorf("expected MaxPages to be 0, got %d", cfg.MaxPages)
		}
	})

	t.Run("resume and robots are off", func(t *testing.T) {
		t.Parallel()
		if cfg.Resume || cfg.RespectRobots {
			t.Error("expected Resume and RespectRobots to be false")
		}
	})
}

// TestScrapeConfigValidate tests one validation rule per case.
func TestScrapeConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *ScrapeConfig {
		cfg := NewScrapeConfig()
		cfg.BaseURL = "https://docs.example.com"
		cfg.OutputDir = "example"
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		mutate func(*ScrapeConfig)
		want   error
	}{
		{"empty base url", func(c *ScrapeConfig) { c.BaseURL = "" }, ErrNoBaseURL},
		{"base url without scheme", func(c *ScrapeConfig) { c.BaseURL = "docs.example.com" }, ErrInvalidBaseURL},
		{"ftp base url", func(c *ScrapeConfig) { c.BaseURL = "ftp://docs.example.com" }, ErrInvalidBaseURL},
		{"empty output dir", func(c *ScrapeConfig) { c.OutputDir = "" }, ErrNoOutputDir},
		{"zero timeout", func(c *ScrapeConfig) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"zero retries", func(c *ScrapeConfig) { c.MaxRetries = 0 }, ErrInvalidRetries},
		{"negative delay", func(c *ScrapeConfig) { c.RequestDelay = -time.Second }, ErrInvalidDelay},
		{"negative max pages", func(c *ScrapeConfig) { c.MaxPages = -1 }, ErrInvalidMaxPages},
		{"negative body size", func(c *ScrapeConfig) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"verbose and quiet", func(c *ScrapeConfig) { c.Verbose, c.Quiet = true, true }, ErrConflictingVerbosity},
		{"bad include regex", func(c *ScrapeConfig) { c.IncludePatterns = []string{"("} }, ErrInvalidPattern},
		{"bad exclude regex", func(c *ScrapeConfig) { c.ExcludePatterns = []string{"[a-"} }, ErrInvalidPattern},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	t.Run("zero delay is valid", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.RequestDelay = 0
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

func TestURLFilter(t *testing.T) {
	t.Parallel()

	t.Run("no patterns allows everything", func(t *testing.T) {
		t.Parallel()
		f, err := NewScrapeConfig().Filter()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !f.Allows("https://docs.example.com/anything") {
			t.Error("expected URL to be allowed")
		}
	})

	t.Run("include requires a match anywhere in the url", func(t *testing.T) {
		t.Parallel()
		cfg := NewScrapeConfig()
		cfg.IncludePatterns = []string{"/guides/", "quickstart"}
		f := cfg.FilterOrAll()

		if !f.Allows("https://docs.example.com/guides/intro") {
			t.Error("expected guides URL to be allowed")
		}
		if !f.Allows("https://docs.example.com/quickstart") {
			t.Error("expected quickstart URL to be allowed")
		}
		if f.Allows("https://docs.example.com/reference") {
			t.Error("expected reference URL to be rejected")
		}
	})

	t.Run("exclude wins over include", func(t *testing.T) {
		t.Parallel()
		cfg := NewScrapeConfig()
		cfg.IncludePatterns = []string{"/guides/"}
		cfg.ExcludePatterns = []string{`draft$`}
		f := cfg.FilterOrAll()

		if f.Allows("https://docs.example.com/guides/draft") {
			t.Error("expected excluded URL to be rejected")
		}
	})

	t.Run("invalid pattern falls back to allowing all", func(t *testing.T) {
		t.Parallel()
		cfg := NewScrapeConfig()
		cfg.IncludePatterns = []string{"("}

		if _, err := cfg.Filter(); err == nil {
			t.Fatal("expected Filter to reject the pattern")
		}
		if !cfg.FilterOrAll().Allows("https://docs.example.com/anything") {
			t.Error("expected fallback filter to allow the URL")
		}
	})

	t.Run("nil filter allows", func(t *testing.T) {
		t.Parallel()
		var f *URLFilter
		if !f.Allows("https://x") {
			t.Error("expected nil filter to allow")
		}
	})
}

func TestDeriveOutputDir(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"https://docs.pipecat.ai":              "pipecat",
		"https://docs.livekit.io/agents":       "livekit",
		"https://example.com/docs":             "example",
		"https://www.Example.org":              "example",
		"https://developers.acme-corp.dev/api": "acme-corp",
		"https://docs.retellai.com:8443/x":     "retellai",
		"https://":                             "docs",
	}
	for in, want := range cases {
		if got := DeriveOutputDir(in); got != want {
			t.Errorf("DeriveOutputDir(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestNormalizeBaseURL(t *testing.T) {
	t.Parallel()

	if got := NormalizeBaseURL("docs.example.com"); got != "https://docs.example.com" {
		t.Errorf("expected https prefix, got %q", got)
	}
	if got := NormalizeBaseURL("http://docs.example.com"); got != "http://docs.example.com" {
		t.Errorf("expected http URL unchanged, got %q", got)
	}
}

func TestApplySite(t *testing.T) {
	t.Parallel()

	t.Run("fills unset values", func(t *testing.T) {
		t.Parallel()
		cfg := NewScrapeConfig()
		cfg.ApplySite(SiteConfig{
			Cookie:     "sid=1",
			Headers:    map[string]string{"X-Team": "docs"},
			Delay:      2 * time.Second,
			MaxRetries: 5,
			UserAgent:  "custom",
			Include:    []string{"/guides/"},
		})

		if cfg.Cookie != "sid=1" || cfg.Headers["X-Team"] != "docs" {
			t.Errorf("expected cookie and headers applied, got %q %v", cfg.Cookie, cfg.Headers)
		}
		if cfg.RequestDelay != 2*time.Second || cfg.MaxRetries != 5 || cfg.UserAgent != "custom" {
			t.Errorf("expected overrides applied, got %+v", cfg)
		}
		if len(cfg.IncludePatterns) != 1 {
			t.Errorf("expected include patterns from site, got %v", cfg.IncludePatterns)
		}
	})

	t.Run("keeps values set by flags", func(t *testing.T) {
		t.Parallel()
		cfg := NewScrapeConfig()
		cfg.RequestDelay = 100 * time.Millisecond
		cfg.Headers["X-Team"] = "cli"
		cfg.ApplySite(SiteConfig{Delay: 2 * time.Second, Headers: map[string]string{"X-Team": "file"}})

		if cfg.RequestDelay != 100*time.Millisecond {
			t.Errorf("expected flag delay kept, got %v", cfg.RequestDelay)
		}
		if cfg.Headers["X-Team"] != "cli" {
			t.Errorf("expected flag header kept, got %q", cfg.Headers["X-Team"])
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("parses defaults sites and platforms", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docscrape")
		content := `
defaults:
  delay: 250ms
  user_agent: test-agent
  headers:
    X-Default: "1"
sites:
  docs.example.com:
    cookie: "sid=abc"
    headers:
      X-Site: "2"
platforms:
  acme:
    base_url: https://docs.acme.dev
    url_patterns: ["docs.acme.dev"]
    discovery: llms_txt
    fallback: recursive
    max_depth: 3
    content_selector: main
    skip:
      - contains: /api/
        unless: /api/overview
    priorities:
      - contains: /quickstart
        priority: 100
    default_priority: 40
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if cf.Defaults.Delay != 250*time.Millisecond {
			t.Errorf("expected default delay 250ms, got %v", cf.Defaults.Delay)
		}

		site := cf.GetSiteConfig("docs.example.com")
		if site.Cookie != "sid=abc" || site.Headers["X-Default"] != "1" || site.Headers["X-Site"] != "2" {
			t.Errorf("unexpected merged site config: %+v", site)
		}
		if site.UserAgent != "test-agent" {
			t.Errorf("expected default user agent, got %q", site.UserAgent)
		}

		p, ok := cf.Platforms["acme"]
		if !ok {
			t.Fatal("expected acme platform")
		}
		if p.Discovery != StrategyLLMsTxt || p.Fallback != StrategyRecursive || p.MaxDepth != 3 {
			t.Errorf("unexpected platform: %+v", p)
		}
		if len(p.Skip) != 1 || p.Skip[0].Unless != "/api/overview" {
			t.Errorf("unexpected skip rules: %+v", p.Skip)
		}
		if len(p.Priorities) != 1 || p.Priorities[0].Priority != 100 || p.DefaultPriority != 40 {
			t.Errorf("unexpected priorities: %+v", p.Priorities)
		}
	})

	t.Run("rejects unknown strategy", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docscrape")
		content := "platforms:\n  bad:\n    base_url: https://x.dev\n    discovery: telepathy\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := LoadConfigFile(path)
		if !errors.Is(err, ErrUnknownStrategy) {
			t.Errorf("expected ErrUnknownStrategy, got %v", err)
		}
	})

	t.Run("rejects platform without base url", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".docscrape")
		if err := os.WriteFile(path, []byte("platforms:\n  bad:\n    discovery: sitemap\n"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		_, err := LoadConfigFile(path)
		if !errors.Is(err, ErrInvalidPlatform) {
			t.Errorf("expected ErrInvalidPlatform, got %v", err)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %q, got %q", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty path, got %q", got)
		}
	})
}

func TestScope(t *testing.T) {
	t.Parallel()

	cfg := NewScrapeConfig()
	cfg.BaseURL = "https://docs.example.com/"
	if cfg.Scope() != "https://docs.example.com" {
		t.Errorf("expected trimmed scope, got %q", cfg.Scope())
	}
	if cfg.Host() != "docs.example.com" {
		t.Errorf("expected host, got %q", cfg.Host())
	}
}
