package adapter

import (
	"slices"

	"github.com/nao1215/docscrape/internal/config"
)

// Built-in platform names.
const (
	LiveKit  = "livekit"
	Pipecat  = "pipecat"
	RetellAI = "retellai"
)

// builtinSkipSelectors extends the defaults with copy buttons.
var builtinSkipSelectors = []string{
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
	".copy-button",
	"script",
	"style",
}

// LiveKitDefinition describes docs.livekit.io, which publishes llms.txt and
// serves pages with a .md suffix.
func LiveKitDefinition() config.PlatformConfig {
	return config.PlatformConfig{
		BaseURL:          "https://docs.livekit.io",
		URLPatterns:      []string{"docs.livekit.io", "livekit.io/docs"},
		Discovery:        config.StrategyLLMsTxt,
		ContentSelectors: []string{"article", ".prose", "main"},
		SkipSelectors:    builtinSkipSelectors,
		Skip: []config.SkipRule{
			{Contains: "/api-reference/"},
			{Contains: "/changelog"},
		},
		Priorities: []config.PriorityRule{
			{Contains: "/agents/", Priority: 100},
			{Contains: "/realtime/", Priority: 90},
			{Contains: "/guides/", Priority: 80},
			{Contains: "/quickstarts/", Priority: 70},
		},
		DefaultPriority:       50,
		KeepMarkdownExtension: true,
	}
}

// PipecatDefinition describes docs.pipecat.ai.
func PipecatDefinition() config.PlatformConfig {
	return config.PlatformConfig{
		BaseURL:          "https://docs.pipecat.ai",
		URLPatterns:      []string{"docs.pipecat.ai", "pipecat.ai/docs"},
		Discovery:        config.StrategySitemap,
		Fallback:         config.StrategyRecursive,
		MaxDepth:         4,
		ContentSelector:  "main",
		ContentSelectors: []string{"article", ".markdown-body", "main", ".prose", "#content"},
		SkipSelectors:    append(slices.Clone(builtinSkipSelectors), ".tabs"),
		Skip: []config.SkipRule{
			{Contains: "/api/", Unless: "/api/overview"},
		},
		Priorities: []config.PriorityRule{
			{Contains: "/quickstart", Priority: 100},
			{Contains: "/getting-started", Priority: 95},
			{Contains: "/introduction", Priority: 90},
			{Contains: "/concepts", Priority: 85},
			{Contains: "/examples", Priority: 80},
			{Contains: "/guides", Priority: 75},
		},
		DefaultPriority: 50,
	}
}

// RetellAIDefinition describes docs.retellai.com.
func RetellAIDefinition() config.PlatformConfig {
	return config.PlatformConfig{
		BaseURL:          "https://docs.retellai.com",
		URLPatterns:      []string{"docs.retellai.com", "retellai.com/docs"},
		Discovery:        config.StrategySitemap,
		Fallback:         config.StrategyRecursive,
		MaxDepth:         4,
		ContentSelector:  "main",
		ContentSelectors: []string{"article", ".markdown-body", "main", ".prose", ".content", "#content"},
		SkipSelectors:    builtinSkipSelectors,
		Skip: []config.SkipRule{
			{Contains: "/api-reference/"},
		},
		Priorities: []config.PriorityRule{
			{Contains: "conversation-flow", Priority: 100, IgnoreCase: true},
			{Contains: "/quickstart", Priority: 95},
			{Contains: "/getting-started", Priority: 90},
			{Contains: "/concepts", Priority: 85},
			{Contains: "/examples", Priority: 80},
			{Contains: "/guides", Priority: 75},
			{Contains: "/custom-llm", Priority: 70},
		},
		DefaultPriority: 50,
	}
}

// Builtins returns the built-in platform definitions by name.
func Builtins() map[string]config.PlatformConfig {
	return map[string]config.PlatformConfig{
		LiveKit:  LiveKitDefinition(),
		Pipecat:  PipecatDefinition(),
		RetellAI: RetellAIDefinition(),
	}
}
