package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "ghbuster"

	// DefaultAPIBaseURL is the public GitHub REST endpoint.
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultConcurrency runs a handful of heuristics and sub-scans at once
	// without exhausting the secondary rate limit.
	DefaultConcurrency = 4

	// MaxConcurrency caps the worker pool.
	MaxConcurrency = 32

	// DefaultTimeout bounds the whole scan. Zero disables the deadline.
	DefaultTimeout = 30 * time.Minute

	// DefaultRequestsPerSecond is the client-side request budget.
	DefaultRequestsPerSecond = 10.0

	// DefaultMaxRetries is how often a retryable request is repeated.
	DefaultMaxRetries = 5

	// DefaultRequestTimeout bounds a single HTTP request.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultCacheTTL matches the one hour expiry of cached API responses.
	DefaultCacheTTL = time.Hour

	// TokenEnv is the environment variable holding the GitHub token.
	TokenEnv = "GITHUB_TOKEN"
)

// Config holds all configuration options for a ghbuster run.
// It is populated from defaults, the dotfile, the environment and CLI flags
// and passed down explicitly rather than kept in global state.
type Config struct {
	// Target is the raw user or owner/repo string to scan.
	Target string

	// Token is the GitHub API credential. It is never read from the dotfile.
	Token string

	// Include restricts the scan to these heuristic ids.
	Include []string

	// Exclude removes these heuristic ids from the scan.
	Exclude []string

	// Force keeps scanning after the legitimacy pre-check passes.
	Force bool

	// Concurrency is the size of the heuristic and sub-scan worker pool.
	Concurrency int

	// Timeout is the deadline around the whole scan. Zero means none.
	Timeout time.Duration

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches the log output to JSON.
	LogJSON bool

	// ConfigFilePath is an explicit dotfile path. Empty means search
	// the current directory and then the home directory.
	ConfigFilePath string

	// APIBaseURL is the REST endpoint, overridable for GitHub Enterprise.
	APIBaseURL string

	// Proxy is an optional socks5:// or http(s):// proxy URL.
	Proxy string

	// RequestsPerSecond is the shared client-side rate limit. Zero disables it.
	RequestsPerSecond float64

	// MaxRetries is the retry count for rate-limited or failed requests.
	MaxRetries int

	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration

	// CacheDisabled bypasses the response cache.
	CacheDisabled bool

	// CacheTTL is how long cached responses are served.
	CacheTTL time.Duration

	// CacheDir holds responses.db. Empty means XDGCacheDir.
	CacheDir string

	// JSONReport selects the JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report.
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Concurrency:       DefaultConcurrency,
		Timeout:           DefaultTimeout,
		APIBaseURL:        DefaultAPIBaseURL,
		RequestsPerSecond: DefaultRequestsPerSecond,
		MaxRetries:        DefaultMaxRetries,
		RequestTimeout:    DefaultRequestTimeout,
		CacheTTL:          DefaultCacheTTL,
	}
}

// XDGConfigDir returns the XDG config directory for ghbuster.
// On Linux: ~/.config/ghbuster
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for ghbuster.
// On Linux: ~/.cache/ghbuster
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ResolvedCacheDir returns CacheDir or the XDG default.
func (c *Config) ResolvedCacheDir() string {
	if c.CacheDir != "" {
		return c.CacheDir
	}
	return XDGCacheDir()
}

// Validate checks the configuration and returns the first problem found,
// wrapped in a ConfigurationError.
func (c *Config) Validate() error {
	return NewConfigurationError(c.validate())
}

func (c *Config) validate() error {
	if c.Target == "" {
		return ErrNoTarget
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if len(c.Include) > 0 && len(c.Exclude) > 0 {
		return ErrConflictingSelection
	}
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return ErrInvalidConcurrency
	}
	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.CacheTTL < 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}
