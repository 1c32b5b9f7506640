package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("injects user agent headers and cookie", func(t *testing.T) {
		t.Parallel()

		var gotUA, gotHeader, gotCookie string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			gotHeader = r.Header.Get("X-Docs-Token")
			gotCookie = r.Header.Get("Cookie")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(Options{
			Timeout:   5 * time.Second,
			UserAgent: "docscrape-test",
			Headers:   map[string]string{"X-Docs-Token": "abc"},
			Cookie:    "sid=1",
		})
		defer client.CloseIdleConnections()

		if _, err := Fetch(context.Background(), client, server.URL, 0); err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		if gotUA != "docscrape-test" {
			t.Errorf("expected user agent 'docscrape-test', got %q", gotUA)
		}
		if gotHeader != "abc" {
			t.Errorf("expected header 'abc', got %q", gotHeader)
		}
		if gotCookie != "sid=1" {
			t.Errorf("expected cookie 'sid=1', got %q", gotCookie)
		}
	})

	t.Run("applies timeout", func(t *testing.T) {
		t.Parallel()

		client := New(Options{Timeout: 3 * time.Second})
		if client.Timeout != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", client.Timeout)
		}
	})
}

func TestFetch(t *testing.T) {
	t.Parallel()

	t.Run("reads body status and content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><title>x</title></html>")
		}))
		defer server.Close()

		resp, err := Fetch(context.Background(), New(Options{}), server.URL, 0)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if !resp.OK() || !resp.IsHTML() {
			t.Errorf("expected OK html response, got %d %q", resp.StatusCode, resp.ContentType)
		}
		if !strings.Contains(string(resp.Body), "<title>x</title>") {
			t.Errorf("unexpected body %q", resp.Body)
		}
		if err := Check(resp); err != nil {
			t.Errorf("expected no status error, got %v", err)
		}
	})

	t.Run("rejects bodies over the limit", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, strings.Repeat("a", 100))
		}))
		defer server.Close()

		if _, err := Fetch(context.Background(), New(Options{}), server.URL, 10); !errors.Is(err, ErrBodyTooLarge) {
			t.Errorf("expected ErrBodyTooLarge, got %v", err)
		}

		resp, err := Fetch(context.Background(), New(Options{}), server.URL, 100)
		if err != nil {
			t.Fatalf("expected body at the limit to be accepted, got %v", err)
		}
		if len(resp.Body) != 100 {
			t.Errorf("expected 100 bytes, got %d", len(resp.Body))
		}
	})

	t.Run("error status becomes StatusError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		resp, err := Fetch(context.Background(), New(Options{}), server.URL, 0)
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}

		err = Check(resp)
		var se *StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
			t.Fatalf("expected 404 StatusError, got %v", err)
		}
		if !IsNotFound(fmt.Errorf("wrapped: %w", err)) {
			t.Error("expected IsNotFound to see through wrapping")
		}
		if IsNotFound(&StatusError{StatusCode: 500}) {
			t.Error("expected 500 not to be NotFound")
		}
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := Fetch(ctx, New(Options{}), server.URL, 0); err == nil {
			t.Error("expected error for cancelled context")
		}
	})
}
