// Package engine runs a documentation crawl from discovery to final manifest.
//
// # Architecture
//
// A Crawler ties together an adapter (discovery choices, URL rules and
// content extraction), a storage backend and a ScrapeConfig. Crawl:
//
//  1. Loads the previous manifest when resuming, otherwise starts fresh
//  2. Discovers URLs through discovery.Orchestrator
//  3. Drops URLs already scraped and applies the page limit
//  4. Fetches URLs one at a time with retries, extracts and saves each page
//  5. Checkpoints the manifest every CheckpointInterval results and at the end
//
// # Ordering
//
// URLs are processed strictly in order and never concurrently. URL N+1 is
// not fetched until the result of URL N has been recorded in the manifest
// and, when due, checkpointed. The request delay after each URL is therefore
// a global rate limit for the target site.
//
// # Failures
//
// A URL that cannot be fetched, extracted or saved becomes a failure record
// in the manifest; it never stops the crawl. A 404 is final on the first
// attempt. Other HTTP errors and transport errors are retried with a linear
// backoff of RequestDelay times the attempt number.
//
// # Cancellation
//
// When the context is canceled the loop stops before the next URL. A URL
// whose processing was under way is recorded neither as a page nor as a
// failure, so the next run picks it up again. The manifest is written once
// more with an uncanceled context, and Crawl returns the partial manifest
// together with the context's error. The manifest is left unfinalized so
// the run can be resumed.
package engine
