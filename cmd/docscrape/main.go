// Package main provides the entry point for the docscrape CLI.
//
// docscrape downloads a documentation website and converts every page to
// Markdown, keeping a manifest so interrupted runs can be resumed.
//
// Usage:
//
//	docscrape https://docs.example.com
//	docscrape scrape https://docs.example.com -o ./example-docs
//
// See --help for all available options.
package main

// main is the entry point for docscrape.
func main() {
	Execute()
}
