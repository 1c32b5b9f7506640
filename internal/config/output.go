package config

import (
	"net/url"
	"regexp"
	"strings"
)

// hostPrefixes are stripped from the host before naming the output directory.
var hostPrefixes = []string{"docs.", "www.", "developer.", "developers."}

var leadingLabel = regexp.MustCompile(`^[a-zA-Z0-9-]+`)

// DeriveOutputDir picks an output directory name from a documentation URL.
//
//	https://docs.pipecat.ai       -> pipecat
//	https://docs.livekit.io/agents -> livekit
//	https://example.com/docs      -> example
func DeriveOutputDir(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "docs"
	}
	host := u.Hostname()
	for _, prefix := range hostPrefixes {
		host = strings.TrimPrefix(host, prefix)
	}
	if name := leadingLabel.FindString(host); name != "" {
		return strings.ToLower(name)
	}
	return "docs"
}

// NormalizeBaseURL adds https:// to URLs given without a scheme.
func NormalizeBaseURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return "https://" + rawURL
	}
	return rawURL
}
