package config

import (
	"errors"
	"fmt"
)

// Configuration validation errors.
// Validate returns them wrapped in a ConfigurationError so that callers can
// match either the category or the specific problem with errors.Is/As.
var (
	// ErrNoTarget is returned when no user or repository was given.
	ErrNoTarget = errors.New("no target specified: provide a GitHub user or owner/repo")

	// ErrMissingToken is returned when no GitHub token was supplied by flag or environment.
	ErrMissingToken = errors.New("missing GitHub token: use --github-token or set GITHUB_TOKEN")

	// ErrInvalidTimeout is returned when the scan timeout is negative.
	ErrInvalidTimeout = errors.New("invalid timeout: must be non-negative")

	// ErrInvalidConcurrency is returned when concurrency is outside 1..MaxConcurrency.
	ErrInvalidConcurrency = fmt.Errorf("invalid concurrency: must be between 1 and %d", MaxConcurrency)

	// ErrConflictingReportFormats is returned when both --json and --markdown are set.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConflictingSelection is returned when both include and exclude lists are set.
	ErrConflictingSelection = errors.New("include and exclude cannot be used together")

	// ErrInvalidRateLimit is returned when requests per second is negative.
	ErrInvalidRateLimit = errors.New("invalid requests per second: must be non-negative")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidCacheTTL is returned when the cache TTL is negative.
	ErrInvalidCacheTTL = errors.New("invalid cache ttl: must be non-negative")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)

// ConfigurationError reports a problem with user-supplied settings: flags,
// the dotfile, the environment or the target string.
type ConfigurationError struct {
	Err error
}

// NewConfigurationError wraps err. It returns nil for a nil err.
func NewConfigurationError(err error) error {
	if err == nil {
		return nil
	}
	return &ConfigurationError{Err: err}
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Err.Error()
}

// Unwrap returns the underlying problem.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ErrInvalidConfigFile is returned when the dotfile cannot be parsed or
// fails validation.
var ErrInvalidConfigFile = errors.New("invalid configuration file")
