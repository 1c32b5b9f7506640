// Package log provides the docscrape logger: log/slog as the API,
// charmbracelet/log as the terminal renderer, and a redacting handler in
// between that masks cookies, auth headers and tokens.
//
// # Levels
//
//   - LevelQuiet: errors only (--quiet)
//   - LevelNormal: progress and warnings (default)
//   - LevelVerbose: debug detail with timestamps (--verbose)
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, log.LevelFromFlags(verbose, quiet))
//	logger.Info("discovery complete", "urls", 120)
//	logger.Debug("request settings", "headers", cfg.Headers) // auth headers are masked
package log
