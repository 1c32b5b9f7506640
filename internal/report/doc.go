// Package report renders a ScrapeManifest for people and tools.
//
// This package contains writers for different output formats:
//   - IndexWriter: The _index.md table of contents kept next to the pages
//   - SummaryWriter: Human-readable end-of-run summary for the terminal
//   - JSONWriter: Structured JSON summary for scripting
//
// Writers implement the Writer interface, so the CLI can pick one by flag
// and the storage backend can regenerate the index with the same API.
package report
