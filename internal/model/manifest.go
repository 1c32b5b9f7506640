package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// PageRecord is the manifest entry for a successfully scraped page.
type PageRecord struct {
	URL       string    `json:"url"`
	FilePath  string    `json:"filepath"`
	Title     string    `json:"title"`
	WordCount int       `json:"word_count"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// FailedURL is the manifest entry for a URL that could not be scraped.
type FailedURL struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// ScrapeManifest is the persistent state of a crawl.
//
// Counters and record lists are only changed through RecordSuccess and
// RecordFailure, so Successful+Failed always equals len(Pages)+len(FailedURLs).
type ScrapeManifest struct {
	Platform    string
	BaseURL     string
	OutputDir   string
	StartedAt   time.Time
	CompletedAt *time.Time

	TotalURLs  int
	Successful int
	Failed     int
	Skipped    int

	Pages      []PageRecord
	FailedURLs []FailedURL
}

// NewManifest creates a fresh manifest started at now.
func NewManifest(platform, baseURL, outputDir string, now time.Time) *ScrapeManifest {
	return &ScrapeManifest{
		Platform:   platform,
		BaseURL:    baseURL,
		OutputDir:  outputDir,
		StartedAt:  now.UTC(),
		Pages:      make([]PageRecord, 0),
		FailedURLs: make([]FailedURL, 0),
	}
}

// RecordSuccess appends a page record and increments Successful.
func (m *ScrapeManifest) RecordSuccess(page *DocumentPage) {
	m.Pages = append(m.Pages, PageRecord{
		URL:       page.URL,
		FilePath:  page.FilePath,
		Title:     page.Title,
		WordCount: page.WordCount(),
		ScrapedAt: page.ScrapedAt,
	})
	m.Successful++
}

// RecordFailure appends a failure record and increments Failed.
func (m *ScrapeManifest) RecordFailure(pageURL, errMsg string) {
	m.FailedURLs = append(m.FailedURLs, FailedURL{URL: pageURL, Error: errMsg})
	m.Failed++
}

// Processed returns Successful+Failed.
func (m *ScrapeManifest) Processed() int {
	return m.Successful + m.Failed
}

// Finalize sets the completion timestamp.
func (m *ScrapeManifest) Finalize(now time.Time) {
	t := now.UTC()
	m.CompletedAt = &t
}

// IsComplete reports whether the manifest has been finalized.
func (m *ScrapeManifest) IsComplete() bool {
	return m.CompletedAt != nil
}

// CompletedURLs returns the normalized URLs of every successfully scraped page.
func (m *ScrapeManifest) CompletedURLs() map[string]struct{} {
	done := make(map[string]struct{}, len(m.Pages))
	for _, p := range m.Pages {
		done[NormalizeURL(p.URL)] = struct{}{}
	}
	return done
}

// Consistent reports whether the counters agree with the record lists.
func (m *ScrapeManifest) Consistent() bool {
	return m.Successful == len(m.Pages) && m.Failed == len(m.FailedURLs)
}

// manifestStats is the "stats" block of the persisted manifest.
type manifestStats struct {
	TotalURLs  int `json:"total_urls"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// manifestPage mirrors PageRecord with a string timestamp so that manifests
// written without a time zone still load.
type manifestPage struct {
	URL       string `json:"url"`
	FilePath  string `json:"filepath"`
	Title     string `json:"title"`
	WordCount int    `json:"word_count"`
	ScrapedAt string `json:"scraped_at"`
}

// manifestJSON is the on-disk shape of a manifest.
type manifestJSON struct {
	Platform    string         `json:"platform"`
	BaseURL     string         `json:"base_url"`
	OutputDir   string         `json:"output_dir"`
	StartedAt   string         `json:"started_at"`
	CompletedAt *string        `json:"completed_at"`
	Stats       manifestStats  `json:"stats"`
	Pages       []manifestPage `json:"pages"`
	FailedURLs  []FailedURL    `json:"failed_urls"`
}

// MarshalJSON writes the manifest with a nested stats block and RFC 3339 timestamps.
func (m *ScrapeManifest) MarshalJSON() ([]byte, error) {
	out := manifestJSON{
		Platform:  m.Platform,
		BaseURL:   m.BaseURL,
		OutputDir: m.OutputDir,
		StartedAt: formatTimestamp(m.StartedAt),
		Stats: manifestStats{
			TotalURLs:  m.TotalURLs,
			Successful: m.Successful,
			Failed:     m.Failed,
			Skipped:    m.Skipped,
		},
		Pages:      make([]manifestPage, 0, len(m.Pages)),
		FailedURLs: m.FailedURLs,
	}
	if out.FailedURLs == nil {
		out.FailedURLs = make([]FailedURL, 0)
	}
	if m.CompletedAt != nil {
		s := formatTimestamp(*m.CompletedAt)
		out.CompletedAt = &s
	}
	for _, p := range m.Pages {
		out.Pages = append(out.Pages, manifestPage{
			URL:       p.URL,
			FilePath:  p.FilePath,
			Title:     p.Title,
			WordCount: p.WordCount,
			ScrapedAt: formatTimestamp(p.ScrapedAt),
		})
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the persisted manifest shape.
func (m *ScrapeManifest) UnmarshalJSON(data []byte) error {
	var in manifestJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Platform == "" || in.BaseURL == "" {
		return ErrIncompleteManifest
	}

	started, err := parseTimestamp(in.StartedAt)
	if err != nil {
		return fmt.Errorf("started_at: %w", err)
	}

	*m = ScrapeManifest{
		Platform:   in.Platform,
		BaseURL:    in.BaseURL,
		OutputDir:  in.OutputDir,
		StartedAt:  started,
		TotalURLs:  in.Stats.TotalURLs,
		Successful: in.Stats.Successful,
		Failed:     in.Stats.Failed,
		Skipped:    in.Stats.Skipped,
		Pages:      make([]PageRecord, 0, len(in.Pages)),
		FailedURLs: in.FailedURLs,
	}
	if m.FailedURLs == nil {
		m.FailedURLs = make([]FailedURL, 0)
	}

	if in.CompletedAt != nil && *in.CompletedAt != "" {
		completed, err := parseTimestamp(*in.CompletedAt)
		if err != nil {
			return fmt.Errorf("completed_at: %w", err)
		}
		m.CompletedAt = &completed
	}

	for _, p := range in.Pages {
		scraped, err := parseTimestamp(p.ScrapedAt)
		if err != nil {
			return fmt.Errorf("page %s scraped_at: %w", p.URL, err)
		}
		m.Pages = append(m.Pages, PageRecord{
			URL:       p.URL,
			FilePath:  p.FilePath,
			Title:     p.Title,
			WordCount: p.WordCount,
			ScrapedAt: scraped,
		})
	}
	return nil
}

// timestampFormats lists the layouts accepted when loading a manifest.
// Older manifests were written without a zone and are read as UTC.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}
