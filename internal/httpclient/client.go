// Package httpclient builds the HTTP client shared by discovery strategies
// and the crawl loop, and provides a small fetch helper around it.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// maxRedirects caps redirect chains followed by the client.
const maxRedirects = 10

// defaultMaxBodySize is used when maxBody is not positive.
const defaultMaxBodySize = 10 * 1024 * 1024

// ErrBodyTooLarge is returned by Fetch when a body exceeds its size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// Options configures a client created by New.
type Options struct {
	// Timeout applies to each request.
	Timeout time.Duration

	// UserAgent is set on requests that do not already carry one.
	UserAgent string

	// Headers are set on every request.
	Headers map[string]string

	// Cookie is appended to the Cookie header of every request.
	Cookie string

	// Transport overrides the base transport. Nil uses a cloned default.
	Transport http.RoundTripper
}

// New creates an HTTP client for one discovery or crawl run.
// Callers own the client and should call CloseIdleConnections when done.
func New(opts Options) *http.Client {
	base := opts.Transport
	if base == nil {
		t := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport
		t.MaxIdleConnsPerHost = 2
		t.IdleConnTimeout = 30 * time.Second
		base = t
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      base,
			userAgent: opts.UserAgent,
			cookie:    opts.Cookie,
			headers:   opts.Headers,
		},
		Timeout: opts.Timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// configured User-Agent, headers and cookie into every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	cookie    string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}

// CloseIdleConnections releases pooled connections.
func (t *headerInjectingTransport) CloseIdleConnections() {
	type closeIdler interface{ CloseIdleConnections() }
	if c, ok := t.base.(closeIdler); ok {
		c.CloseIdleConnections()
	}
}

// Response is a fully read HTTP response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// IsHTML reports whether the response declares an HTML content type.
func (r *Response) IsHTML() bool {
	return strings.Contains(strings.ToLower(r.ContentType), "text/html")
}

// OK reports whether the status code is 200.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Fetch performs a GET request and reads the body. A body longer than
// maxBody bytes is an ErrBodyTooLarge error rather than a truncated page.
// Non-2xx statuses are not errors here; use Response.StatusCode or Check.
func Fetch(ctx context.Context, client *http.Client, rawURL string, maxBody int64) (*Response, error) {
	if maxBody <= 0 {
		maxBody = defaultMaxBodySize
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if int64(len(body)) > maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, rawURL, maxBody)
	}

	return &Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// Check converts a 4xx/5xx response into a *StatusError.
func Check(resp *Response) error {
	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{URL: resp.URL, StatusCode: resp.StatusCode}
	}
	return nil
}

// StatusError reports an HTTP error status.
type StatusError struct {
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s for %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
}

// IsNotFound reports whether err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
