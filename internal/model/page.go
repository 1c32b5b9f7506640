package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// DefaultTitle is used when no title can be extracted from a page.
const DefaultTitle = "Untitled"

// DocumentPage is a documentation page after content extraction.
// It holds both the Markdown rendition and the HTML it was produced from.
type DocumentPage struct {
	// URL is the address the page was fetched from.
	URL string `json:"url"`

	// Title is the extracted page title. Never empty after extraction.
	Title string `json:"title"`

	// Markdown is the cleaned Markdown body.
	Markdown string `json:"-"`

	// HTML is the content element the Markdown was converted from.
	HTML string `json:"-"`

	// Links are same-host links found inside the content element.
	Links []string `json:"links,omitempty"`

	// FilePath is the output path assigned by the adapter.
	FilePath string `json:"filepath"`

	// ScrapedAt is when the page was extracted.
	ScrapedAt time.Time `json:"scraped_at"`
}

// NewDocumentPage creates a page stamped with the current UTC time.
// An empty title is replaced with DefaultTitle.
func NewDocumentPage(pageURL, title, markdown, html string, links []string) *DocumentPage {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}
	return &DocumentPage{
		URL:       pageURL,
		Title:     title,
		Markdown:  markdown,
		HTML:      html,
		Links:     links,
		ScrapedAt: time.Now().UTC(),
	}
}

// WordCount returns the number of whitespace-separated tokens in the Markdown body.
func (p *DocumentPage) WordCount() int {
	return len(strings.Fields(p.Markdown))
}

// ContentHash returns the hex SHA-256 of the Markdown body.
// Used by the history index to detect changed pages between runs.
func (p *DocumentPage) ContentHash() string {
	sum := sha256.Sum256([]byte(p.Markdown))
	return hex.EncodeToString(sum[:])
}
