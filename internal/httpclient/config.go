package httpclient

import (
	"net/http"

	"github.com/nao1215/docscrape/internal/config"
)

// ForConfig creates a client from the request settings of cfg.
func ForConfig(cfg *config.ScrapeConfig) *http.Client {
	return New(Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Headers:   cfg.Headers,
		Cookie:    cfg.Cookie,
	})
}

// Acquire returns injected when it is non-nil, together with a no-op
// release. Otherwise it creates a client for cfg whose release closes its
// idle connections. Callers defer release so the client is let go on every
// exit path.
func Acquire(injected *http.Client, cfg *config.ScrapeConfig) (*http.Client, func()) {
	if injected != nil {
		return injected, func() {}
	}
	client := ForConfig(cfg)
	return client, client.CloseIdleConnections
}
