package adapter

import "errors"

var (
	// ErrUnknownPlatform is returned when a platform name is not registered.
	ErrUnknownPlatform = errors.New("unknown platform")

	// ErrEmptyPlatformName is returned when registering without a name.
	ErrEmptyPlatformName = errors.New("platform name must not be empty")

	// ErrParseHTML is returned when a page cannot be parsed as HTML.
	ErrParseHTML = errors.New("failed to parse HTML")
)
