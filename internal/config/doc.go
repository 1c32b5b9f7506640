// Package config provides configuration structures and utilities for docscrape.
// It defines the per-run ScrapeConfig, the compiled include/exclude URL filter,
// and the optional YAML configuration file with per-site request settings and
// custom platform definitions.
package config
