package config

import "errors"

// Sentinel errors for configuration failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrInvalidConfig indicates the configuration is syntactically
	// or semantically invalid (bad YAML, conflicting options, etc.).
	ErrInvalidConfig = errors.New("config: invalid configuration")

	// ErrMissingRequired indicates a required configuration field
	// was not provided.
	ErrMissingRequired = errors.New("config: missing required field")

	// ErrProfileNotFound indicates the profile file does not exist.
	ErrProfileNotFound = errors.New("profile file not found")

	// ErrInvalidProfile indicates the profile file is malformed.
	ErrInvalidProfile = errors.New("invalid profile file")
)
