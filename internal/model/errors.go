package model

import "errors"

var (
	// ErrIncompleteManifest is returned when a persisted manifest lacks its
	// platform or base URL.
	ErrIncompleteManifest = errors.New("manifest is missing platform or base_url")

	// ErrInvalidTimestamp is returned when a manifest timestamp matches no known layout.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
