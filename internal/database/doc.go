// Package database provides SQLite-based history storage for docscrape.
//
// The CrawlDB stores:
//   - One row per scraped page (path, title, word count, content hash)
//   - One row per scrape run (counters and timestamps, updated at every checkpoint)
//
// The database lives in the XDG data directory and is shared by every
// output directory, so "docscrape history" can list runs across sites and
// repeated scrapes can tell which pages changed. It is written through
// storage.Indexed and is never required for a crawl to succeed.
package database
