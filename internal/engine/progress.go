package engine

import "github.com/nao1215/docscrape/internal/model"

// EventKind identifies a progress event.
type EventKind int

const (
	// EventDiscovering is sent before discovery starts.
	EventDiscovering EventKind = iota
	// EventDiscovered is sent once the crawl list is final. Total is its length.
	EventDiscovered
	// EventPage is sent after each URL has been processed.
	EventPage
)

// Progress describes one step of a crawl.
type Progress struct {
	Kind   EventKind
	Total  int
	Done   int
	URL    string
	Status model.Status
}

// ProgressFunc receives progress events. It is called synchronously from
// the crawl loop and must not block.
type ProgressFunc func(Progress)
