package adapter

import (
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/nao1215/docscrape/internal/config"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
  <title>Installing | Docs</title>
  <meta property="og:title" content="Install the SDK">
</head>
<body>
  <header><a href="/">Home</a></header>
  <nav class="sidebar"><a href="/nav-link">Navigation</a></nav>
  <article>
    <h1>Install</h1>
    <p>Run the installer   and read the <a href="/guide/next">next guide</a>.</p>
    <p>See <a href="https://other.example.com/x">elsewhere</a> or <a href="#top">top</a>.</p>
    <pre><code class="lang-go">fmt.Println("hi")</code></pre>
    <button class="copy-button">Copy</button>
  </article>
  <footer>Footer text</footer>
</body>
</html>`

func TestGenericExtractContent(t *testing.T) {
	t.Parallel()

	t.Run("converts the content area to markdown", func(t *testing.T) {
		t.Parallel()

		page, err := NewGeneric("https://docs.example.com").ExtractContent(samplePage, "https://docs.example.com/install")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if page.Title != "Install the SDK" {
			t.Errorf("expected og:title, got %q", page.Title)
		}
		if !strings.Contains(page.Markdown, "# Install") {
			t.Errorf("expected atx heading, got %q", page.Markdown)
		}
		if !strings.Contains(page.Markdown, "```go") {
			t.Errorf("expected fenced go block, got %q", page.Markdown)
		}
		for _, unwanted := range []string{"Navigation", "Footer text"} {
			if strings.Contains(page.Markdown, unwanted) {
				t.Errorf("expected %q removed, got %q", unwanted, page.Markdown)
			}
		}
		if strings.Contains(page.Markdown, "\n\n\n") {
			t.Errorf("expected blank lines collapsed, got %q", page.Markdown)
		}
		if page.Markdown != strings.TrimSpace(page.Markdown) {
			t.Errorf("expected trimmed markdown, got %q", page.Markdown)
		}
		if !strings.Contains(page.HTML, "<article>") {
			t.Errorf("expected content html to be the article, got %q", page.HTML)
		}
		if !slices.Equal(page.Links, []string{"https://docs.example.com/guide/next"}) {
			t.Errorf("unexpected links: %v", page.Links)
		}
		if page.WordCount() == 0 {
			t.Error("expected words in markdown")
		}
	})

	t.Run("copy buttons are removed by built-ins only", func(t *testing.T) {
		t.Parallel()

		generic, err := NewGeneric("https://docs.example.com").ExtractContent(samplePage, "https://docs.example.com/install")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(generic.Markdown, "Copy") {
			t.Errorf("expected generic adapter to keep button text, got %q", generic.Markdown)
		}

		livekit, err := New(LiveKit, LiveKitDefinition()).ExtractContent(samplePage, "https://docs.livekit.io/install")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(livekit.Markdown, "Copy") {
			t.Errorf("expected copy button removed, got %q", livekit.Markdown)
		}
	})

	t.Run("title falls back through title tag h1 and markdown", func(t *testing.T) {
		t.Parallel()

		g := NewGeneric("https://docs.example.com")
		tests := []struct {
			name string
			html string
			want string
		}{
			{"title suffix removed", `<html><head><title>Agents - Documentation</title></head><body><main><p>x</p></main></body></html>`, "Agents"},
			{"h1 when no title", `<html><body><main><h1>Voice  Pipelines</h1><p>x</p></main></body></html>`, "Voice Pipelines"},
			{"untitled", `<html><body><main><p>plain text</p></main></body></html>`, "Untitled"},
		}
		for _, tt := range tests {
			page, err := g.ExtractContent(tt.html, "https://docs.example.com/p")
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", tt.name, err)
			}
			if page.Title != tt.want {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.want, page.Title)
			}
		}
	})

	t.Run("body is used when no selector matches", func(t *testing.T) {
		t.Parallel()

		page, err := NewGeneric("https://docs.example.com").ExtractContent(
			`<html><body><div><p>Loose body text</p></div></body></html>`, "https://docs.example.com/p")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.Markdown != "Loose body text" {
			t.Errorf("expected body text, got %q", page.Markdown)
		}
	})

	t.Run("readability recovers content hidden by skip selectors", func(t *testing.T) {
		t.Parallel()

		paragraph := strings.Repeat("Realtime agents stream audio between participants and models. ", 12)
		html := `<html><head><title>Streaming</title></head><body><div class="feedback"><div><p>` +
			paragraph + `</p><p>` + paragraph + `</p></div></div></body></html>`

		page, err := NewGeneric("https://docs.example.com").ExtractContent(html, "https://docs.example.com/streaming")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(page.Markdown, "Realtime agents stream audio") {
			t.Errorf("expected readability content, got %q", page.Markdown)
		}
	})
}

func TestCleanMarkdown(t *testing.T) {
	t.Parallel()

	got := cleanMarkdown("\n\n# Title   \n\n\n\n\nBody\t\n\n")
	if got != "# Title\n\nBody" {
		t.Errorf("unexpected cleanup result %q", got)
	}
}

func TestCodeLanguage(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"language-python":    "python",
		"hljs lang-ts":       "ts",
		"bash":               "bash",
		"highlight":          "",
		"":                   "",
		"shiki language-tsx": "tsx",
	}
	for classes, want := range tests {
		if got := codeLanguage(classes); got != want {
			t.Errorf("codeLanguage(%q) = %q, want %q", classes, got, want)
		}
	}
}

func TestURLToFilepath(t *testing.T) {
	t.Parallel()

	out := filepath.Join("out", "docs")
	generic := NewGeneric("https://docs.example.com")
	livekit := New(LiveKit, LiveKitDefinition())

	tests := []struct {
		name    string
		adapter *Generic
		url     string
		want    string
	}{
		{"root", generic, "https://docs.example.com/", "index.md"},
		{"nested", generic, "https://docs.example.com/guide/intro/", "guide/intro.md"},
		{"html extension", generic, "https://docs.example.com/a/b.html", "a/b.md"},
		{"md extension", generic, "https://docs.example.com/a/b.md", "a/b.md"},
		{"query ignored", generic, "https://docs.example.com/a?x=1", "a.md"},
		{"traversal contained", generic, "https://docs.example.com/../../etc/passwd", "etc/passwd.md"},
		{"keep md root", livekit, "https://docs.livekit.io", "index.md"},
		{"keep md suffix", livekit, "https://docs.livekit.io/agents/build.md", "agents/build.md"},
		{"keep md appends", livekit, "https://docs.livekit.io/agents/build", "agents/build.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			want := filepath.Join(out, filepath.FromSlash(tt.want))
			if got := tt.adapter.URLToFilepath(tt.url, out); got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestBuiltinRules(t *testing.T) {
	t.Parallel()

	t.Run("livekit", func(t *testing.T) {
		t.Parallel()

		a := New(LiveKit, LiveKitDefinition())
		if !a.ShouldSkip("https://docs.livekit.io/api-reference/rooms") || !a.ShouldSkip("https://docs.livekit.io/changelog") {
			t.Error("expected api reference and changelog skipped")
		}
		if a.ShouldSkip("https://docs.livekit.io/agents/start") {
			t.Error("expected agents page kept")
		}
		if got := a.URLPriority("https://docs.livekit.io/agents/start"); got != 100 {
			t.Errorf("expected 100, got %d", got)
		}
		if got := a.URLPriority("https://docs.livekit.io/home"); got != 50 {
			t.Errorf("expected default 50, got %d", got)
		}
		if a.DiscoveryStrategy().Name() != config.StrategyLLMsTxt {
			t.Errorf("expected llms_txt discovery, got %s", a.DiscoveryStrategy().Name())
		}
		if a.FallbackStrategy() != nil {
			t.Error("expected no fallback")
		}
	})

	t.Run("pipecat", func(t *testing.T) {
		t.Parallel()

		a := New(Pipecat, PipecatDefinition())
		if !a.ShouldSkip("https://docs.pipecat.ai/server/api/frames") {
			t.Error("expected api page skipped")
		}
		if a.ShouldSkip("https://docs.pipecat.ai/server/api/overview") {
			t.Error("expected api overview kept")
		}
		if got := a.URLPriority("https://docs.pipecat.ai/getting-started/installation"); got != 95 {
			t.Errorf("expected 95, got %d", got)
		}
		if a.DiscoveryStrategy().Name() != config.StrategySitemap || a.FallbackStrategy().Name() != config.StrategyRecursive {
			t.Error("expected sitemap with recursive fallback")
		}
	})

	t.Run("retellai", func(t *testing.T) {
		t.Parallel()

		a := New(RetellAI, RetellAIDefinition())
		if got := a.URLPriority("https://docs.retellai.com/build/Conversation-Flow/overview"); got != 100 {
			t.Errorf("expected case-insensitive match 100, got %d", got)
		}
		if got := a.URLPriority("https://docs.retellai.com/integrate/custom-llm"); got != 70 {
			t.Errorf("expected 70, got %d", got)
		}
		if !a.ShouldSkip("https://docs.retellai.com/api-reference/create-call") {
			t.Error("expected api reference skipped")
		}
	})

	t.Run("generic never skips and uses zero priority", func(t *testing.T) {
		t.Parallel()

		a := NewGeneric("https://docs.example.com/")
		if a.ShouldSkip("https://docs.example.com/api/x") {
			t.Error("expected nothing skipped")
		}
		if a.URLPriority("https://docs.example.com/a") != 0 {
			t.Error("expected priority 0")
		}
		if a.BaseURL() != "https://docs.example.com" || a.Name() != GenericName {
			t.Errorf("unexpected identity %s %s", a.Name(), a.BaseURL())
		}
		if a.FallbackStrategy() != nil {
			t.Error("expected no fallback")
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	t.Run("detects built-in platforms from URL", func(t *testing.T) {
		t.Parallel()

		r := NewDefaultRegistry()
		tests := map[string]string{
			"https://docs.livekit.io/agents":   LiveKit,
			"https://livekit.io/docs/home":     LiveKit,
			"https://docs.pipecat.ai/":         Pipecat,
			"https://docs.retellai.com/build/": RetellAI,
		}
		for u, want := range tests {
			got, ok := r.Detect(u)
			if !ok || got != want {
				t.Errorf("Detect(%q) = %q, %v; want %q", u, got, ok, want)
			}
			a, err := r.Get("", u)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.Name() != want {
				t.Errorf("Get(%q) returned %s", u, a.Name())
			}
		}
	})

	t.Run("unknown site gets generic adapter", func(t *testing.T) {
		t.Parallel()

		a, err := NewDefaultRegistry().Get("", "https://docs.example.com/")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Name() != GenericName || a.BaseURL() != "https://docs.example.com" {
			t.Errorf("unexpected adapter %s %s", a.Name(), a.BaseURL())
		}
	})

	t.Run("explicit platform wins and is case-insensitive", func(t *testing.T) {
		t.Parallel()

		a, err := NewDefaultRegistry().Get("PipeCat", "https://docs.example.com")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Name() != Pipecat {
			t.Errorf("expected pipecat, got %s", a.Name())
		}
	})

	t.Run("unknown platform is an error", func(t *testing.T) {
		t.Parallel()

		_, err := NewDefaultRegistry().Get("nope", "https://docs.example.com")
		if !errors.Is(err, ErrUnknownPlatform) {
			t.Errorf("expected ErrUnknownPlatform, got %v", err)
		}
	})

	t.Run("names are sorted", func(t *testing.T) {
		t.Parallel()

		want := []string{LiveKit, Pipecat, RetellAI}
		if got := NewDefaultRegistry().Names(); !slices.Equal(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("config platforms are registered", func(t *testing.T) {
		t.Parallel()

		r := NewDefaultRegistry()
		err := r.RegisterPlatforms(map[string]config.PlatformConfig{
			"acme": {
				BaseURL:     "https://docs.acme.dev",
				URLPatterns: []string{"docs.acme.dev"},
				Discovery:   config.StrategyLLMsTxt,
				Fallback:    config.StrategyRecursive,
				Skip:        []config.SkipRule{{Contains: "/legacy/"}},
				Priorities:  []config.PriorityRule{{Contains: "/start", Priority: 99}},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		a, err := r.Get("", "https://docs.acme.dev/start/here")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a.Name() != "acme" || a.URLPriority("https://docs.acme.dev/start/here") != 99 {
			t.Errorf("unexpected adapter %s", a.Name())
		}
		if !a.ShouldSkip("https://docs.acme.dev/legacy/v1") {
			t.Error("expected legacy skipped")
		}
		if a.DiscoveryStrategy().Name() != config.StrategyLLMsTxt || a.FallbackStrategy().Name() != config.StrategyRecursive {
			t.Error("unexpected strategies")
		}
	})

	t.Run("invalid config platform is rejected", func(t *testing.T) {
		t.Parallel()

		err := NewRegistry().RegisterPlatforms(map[string]config.PlatformConfig{
			"bad": {BaseURL: "https://docs.bad.dev", Discovery: "crystal-ball"},
		})
		if !errors.Is(err, config.ErrUnknownStrategy) {
			t.Errorf("expected ErrUnknownStrategy, got %v", err)
		}
	})

	t.Run("empty name cannot be registered", func(t *testing.T) {
		t.Parallel()

		err := NewRegistry().Register(" ", func(u string, _ ...Option) Adapter { return NewGeneric(u) })
		if !errors.Is(err, ErrEmptyPlatformName) {
			t.Errorf("expected ErrEmptyPlatformName, got %v", err)
		}
	})
}
