// Package crawler provides the recursive discovery strategy.
//
// # Architecture
//
// The Spider walks a documentation site breadth-first from the base URL,
// one request at a time. It keeps a visited set keyed by normalized URL and
// a queue of (URL, depth) pairs, and emits every in-scope HTML page it can
// fetch. The Parser extracts the title and the same-host links of a page,
// optionally restricted to a content area chosen with a CSS selector.
//
// # Politeness
//
//   - The configured request delay follows every fetch, successful or not
//   - Depth is bounded (default 5)
//   - robots.txt is honored when RespectRobots is set
//   - Asset and infrastructure paths are never requested
//
// # Usage
//
//	spider := crawler.NewSpider(crawler.WithMaxDepth(3))
//	for d := range spider.Discover(ctx, cfg) {
//		fmt.Println(d.URL, d.Priority)
//	}
package crawler
