package model

import "strings"

// DiscoveredURL is a candidate documentation page found by a discovery strategy.
// Its identity is the normalized form of URL; see Key.
type DiscoveredURL struct {
	// URL is the address as it was found (fragment already removed by strategies).
	URL string `json:"url"`

	// Title is the link text or page title when the strategy knows it.
	Title string `json:"title,omitempty"`

	// Priority orders the crawl. Higher values are fetched first.
	Priority int `json:"priority"`

	// Metadata holds strategy-specific values such as "lastmod" or "changefreq".
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Key returns the normalized URL used for equality and deduplication.
func (d DiscoveredURL) Key() string {
	return NormalizeURL(d.URL)
}

// Equal reports whether two discovered URLs refer to the same page.
func (d DiscoveredURL) Equal(other DiscoveredURL) bool {
	return d.Key() == other.Key()
}

// NormalizeURL strips surrounding whitespace, the fragment and any trailing
// slashes from rawURL.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	return strings.TrimRight(rawURL, "/")
}

// DiscoveredSet deduplicates discovered URLs by Key while preserving the
// order in which distinct URLs were first added.
type DiscoveredSet struct {
	index map[string]int
	items []DiscoveredURL
}

// NewDiscoveredSet creates an empty set.
func NewDiscoveredSet() *DiscoveredSet {
	return &DiscoveredSet{index: make(map[string]int)}
}

// Add inserts d unless an equal URL is already present. When the existing
// entry has no title and d has one, the title is adopted. It reports whether
// d was new.
func (s *DiscoveredSet) Add(d DiscoveredURL) bool {
	key := d.Key()
	if i, ok := s.index[key]; ok {
		if s.items[i].Title == "" && d.Title != "" {
			s.items[i].Title = d.Title
		}
		return false
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, d)
	return true
}

// Contains reports whether a URL equal to rawURL has been added.
func (s *DiscoveredSet) Contains(rawURL string) bool {
	_, ok := s.index[NormalizeURL(rawURL)]
	return ok
}

// Len returns the number of distinct URLs.
func (s *DiscoveredSet) Len() int {
	return len(s.items)
}

// Items returns the distinct URLs in insertion order.
func (s *DiscoveredSet) Items() []DiscoveredURL {
	out := make([]DiscoveredURL, len(s.items))
	copy(out, s.items)
	return out
}
