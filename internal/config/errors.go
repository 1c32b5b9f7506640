package config

import "errors"

// Configuration validation errors.
// These errors are returned by ScrapeConfig.Validate() and File.Validate()
// so callers can use errors.Is() for programmatic handling.
var (
	// ErrNoBaseURL is returned when no documentation URL was given.
	ErrNoBaseURL = errors.New("no base URL specified")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrNoOutputDir is returned when no output directory is set.
	ErrNoOutputDir = errors.New("no output directory specified")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetries is returned when max retries is not positive.
	// At least one attempt is needed to fetch anything.
	ErrInvalidRetries = errors.New("invalid max retries: must be at least 1")

	// ErrInvalidDelay is returned when the request delay is negative.
	ErrInvalidDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxPages is returned when max pages is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative (0 = unlimited)")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrConflictingVerbosity is returned when both --verbose and --quiet are set.
	ErrConflictingVerbosity = errors.New("conflicting flags: --verbose and --quiet cannot be used together")

	// ErrInvalidPattern is returned when an include or exclude regex does not compile.
	ErrInvalidPattern = errors.New("invalid URL pattern")

	// ErrUnknownStrategy is returned when a platform names a discovery strategy
	// that does not exist.
	ErrUnknownStrategy = errors.New("unknown discovery strategy")

	// ErrInvalidPlatform is returned when a platform definition is incomplete.
	ErrInvalidPlatform = errors.New("invalid platform definition")
)
