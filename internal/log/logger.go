package log

import (
	"io"
	"log/slog"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// Level selects how much is logged.
type Level int

const (
	// LevelQuiet logs errors only.
	LevelQuiet Level = iota
	// LevelNormal logs progress milestones and warnings.
	LevelNormal
	// LevelVerbose logs everything, including per-request detail.
	LevelVerbose
)

// LevelFromFlags maps the --verbose and --quiet flags to a Level.
// Verbose wins if both are set.
func LevelFromFlags(verbose, quiet bool) Level {
	switch {
	case verbose:
		return LevelVerbose
	case quiet:
		return LevelQuiet
	default:
		return LevelNormal
	}
}

func (l Level) charm() charmlog.Level {
	switch l {
	case LevelVerbose:
		return charmlog.DebugLevel
	case LevelQuiet:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// NewLogger creates a slog.Logger that renders through charmbracelet/log
// and masks sensitive attributes.
//
//	logger := log.NewLogger(os.Stderr, log.LevelFromFlags(verbose, quiet))
//	slog.SetDefault(logger)
func NewLogger(w io.Writer, level Level) *slog.Logger {
	backend := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           level.charm(),
		Prefix:          "docscrape",
		ReportTimestamp: level == LevelVerbose,
		TimeFormat:      time.TimeOnly,
	})
	return slog.New(NewRedactingHandler(backend))
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
