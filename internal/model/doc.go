// Package model defines the core data structures used throughout docscrape.
//
// This package contains the following main types:
//   - DiscoveredURL: A candidate page produced by a discovery strategy
//   - DocumentPage: A fetched page converted to Markdown
//   - CrawlResult: The outcome of fetching a single URL
//   - ScrapeManifest: The persistent, resumable record of a crawl
//
// The models are kept free of network and filesystem access so that every
// other package (discovery, engine, storage, report) can share them without
// import cycles.
package model
