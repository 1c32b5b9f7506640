package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManifest(t *testing.T) *ScrapeManifest {
	t.Helper()

	started := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	m := NewManifest("pipecat", "https://docs.pipecat.ai", "./pipecat", started)
	m.TotalURLs = 3

	page := NewDocumentPage("https://docs.pipecat.ai/quickstart", "Quickstart", "# Quickstart\n\nhello world", "", nil)
	page.FilePath = "pipecat/quickstart.md"
	page.ScrapedAt = started.Add(2 * time.Second)
	m.RecordSuccess(page)
	m.RecordFailure("https://docs.pipecat.ai/missing", "HTTP 404")

	return m
}

func TestScrapeManifest(t *testing.T) {
	t.Parallel()

	t.Run("records keep counters in sync", func(t *testing.T) {
		t.Parallel()

		m := newTestManifest(t)
		if m.Successful != 1 || m.Failed != 1 {
			t.Fatalf("expected 1 success and 1 failure, got %d/%d", m.Successful, m.Failed)
		}
		if !m.Consistent() {
			t.Error("expected manifest to be consistent")
		}
		if m.Processed() != 2 {
			t.Errorf("expected 2 processed, got %d", m.Processed())
		}
		if m.Pages[0].WordCount != 4 {
			t.Errorf("expected word count 4, got %d", m.Pages[0].WordCount)
		}
	})

	t.Run("completed urls are normalized", func(t *testing.T) {
		t.Parallel()

		m := newTestManifest(t)
		done := m.CompletedURLs()
		if _, ok := done["https://docs.pipecat.ai/quickstart"]; !ok {
			t.Errorf("expected quickstart in completed set, got %v", done)
		}
		if _, ok := done["https://docs.pipecat.ai/missing"]; ok {
			t.Error("failed URLs must not be in the completed set")
		}
	})

	t.Run("round trips through json", func(t *testing.T) {
		t.Parallel()

		m := newTestManifest(t)
		m.Finalize(m.StartedAt.Add(time.Minute))

		data, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		var loaded ScrapeManifest
		if err := json.Unmarshal(data, &loaded); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}

		if loaded.Platform != m.Platform || loaded.BaseURL != m.BaseURL || loaded.OutputDir != m.OutputDir {
			t.Errorf("identity fields differ: %+v", loaded)
		}
		if !loaded.StartedAt.Equal(m.StartedAt) {
			t.Errorf("expected started_at %v, got %v", m.StartedAt, loaded.StartedAt)
		}
		if loaded.CompletedAt == nil || !loaded.CompletedAt.Equal(*m.CompletedAt) {
			t.Errorf("expected completed_at %v, got %v", m.CompletedAt, loaded.CompletedAt)
		}
		if loaded.TotalURLs != 3 || loaded.Successful != 1 || loaded.Failed != 1 || loaded.Skipped != 0 {
			t.Errorf("counters differ: %+v", loaded)
		}
		if len(loaded.Pages) != 1 || loaded.Pages[0].FilePath != "pipecat/quickstart.md" {
			t.Errorf("pages differ: %+v", loaded.Pages)
		}
		if !loaded.Pages[0].ScrapedAt.Equal(m.Pages[0].ScrapedAt) {
			t.Errorf("expected scraped_at %v, got %v", m.Pages[0].ScrapedAt, loaded.Pages[0].ScrapedAt)
		}
		if len(loaded.FailedURLs) != 1 || loaded.FailedURLs[0].Error != "HTTP 404" {
			t.Errorf("failed urls differ: %+v", loaded.FailedURLs)
		}
	})

	t.Run("writes stats block and null completed_at", func(t *testing.T) {
		t.Parallel()

		m := newTestManifest(t)
		data, err := json.Marshal(m)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if v, ok := raw["completed_at"]; !ok || v != nil {
			t.Errorf("expected completed_at null, got %v", v)
		}
		stats, ok := raw["stats"].(map[string]any)
		if !ok {
			t.Fatalf("expected stats object, got %T", raw["stats"])
		}
		for _, key := range []string{"total_urls", "successful", "failed", "skipped"} {
			if _, ok := stats[key]; !ok {
				t.Errorf("expected stats.%s", key)
			}
		}
	})

	t.Run("loads manifests without a time zone", func(t *testing.T) {
		t.Parallel()

		data := `{
			"platform": "generic",
			"base_url": "https://example.com",
			"output_dir": "example",
			"started_at": "2024-01-02T03:04:05.123456",
			"completed_at": null,
			"stats": {"total_urls": 2, "successful": 1, "failed": 0, "skipped": 0},
			"pages": [{"url": "https://example.com/a", "filepath": "example/a.md", "title": "A", "word_count": 10, "scraped_at": "2024-01-02T03:04:06"}],
			"failed_urls": []
		}`

		var m ScrapeManifest
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if m.StartedAt.Year() != 2024 || m.StartedAt.Second() != 5 {
			t.Errorf("unexpected started_at %v", m.StartedAt)
		}
		if m.CompletedAt != nil {
			t.Errorf("expected nil completed_at, got %v", m.CompletedAt)
		}
		if m.TotalURLs != 2 || len(m.Pages) != 1 {
			t.Errorf("unexpected manifest %+v", m)
		}
	})

	t.Run("rejects manifests without identity", func(t *testing.T) {
		t.Parallel()

		var m ScrapeManifest
		err := json.Unmarshal([]byte(`{"stats": {}}`), &m)
		if !errors.Is(err, ErrIncompleteManifest) {
			t.Errorf("expected ErrIncompleteManifest, got %v", err)
		}
	})

	t.Run("rejects bad timestamps", func(t *testing.T) {
		t.Parallel()

		var m ScrapeManifest
		err := json.Unmarshal([]byte(`{"platform":"x","base_url":"https://x","started_at":"yesterday"}`), &m)
		if err == nil || !strings.Contains(err.Error(), "started_at") {
			t.Errorf("expected started_at error, got %v", err)
		}
	})
}
