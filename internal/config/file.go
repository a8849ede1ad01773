package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// File represents the structure of the .ghbuster configuration file.
// Zero values leave the corresponding Config field untouched.
type File struct {
	Include     []string      `yaml:"include,omitempty" validate:"excluded_with=Exclude,dive,required"`
	Exclude     []string      `yaml:"exclude,omitempty" validate:"dive,required"`
	Force       bool          `yaml:"force,omitempty"`
	Concurrency int           `yaml:"concurrency,omitempty" validate:"omitempty,min=1,max=32"`
	Timeout     time.Duration `yaml:"timeout,omitempty" validate:"gte=0"`
	API         APIFile       `yaml:"api,omitempty"`
	Cache       CacheFile     `yaml:"cache,omitempty"`
}

// APIFile holds the api section of the dotfile.
type APIFile struct {
	BaseURL           string        `yaml:"base_url,omitempty" validate:"omitempty,url"`
	Proxy             string        `yaml:"proxy,omitempty" validate:"omitempty,url"`
	RequestsPerSecond float64       `yaml:"requests_per_second,omitempty" validate:"gte=0"`
	MaxRetries        int           `yaml:"max_retries,omitempty" validate:"gte=0,lte=20"`
	RequestTimeout    time.Duration `yaml:"request_timeout,omitempty" validate:"gte=0"`
}

// CacheFile holds the cache section of the dotfile.
type CacheFile struct {
	Disabled bool          `yaml:"disabled,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty" validate:"gte=0"`
	Dir      string        `yaml:"dir,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags and reports the first failing field.
func (f *File) Validate() error {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s fails %q", ErrInvalidConfigFile, fieldPath(fe.Namespace()), fe.Tag())
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
}

// fieldPath turns "File.API.MaxRetries" into "api.maxretries".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}
	return strings.ToLower(rest)
}

// ApplyTo copies every set field onto c.
func (f *File) ApplyTo(c *Config) {
	if len(f.Include) > 0 {
		c.Include = append([]string(nil), f.Include...)
	}
	if len(f.Exclude) > 0 {
		c.Exclude = append([]string(nil), f.Exclude...)
	}
	if f.Force {
		c.Force = true
	}
	if f.Concurrency != 0 {
		c.Concurrency = f.Concurrency
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.API.BaseURL != "" {
		c.APIBaseURL = f.API.BaseURL
	}
	if f.API.Proxy != "" {
		c.Proxy = f.API.Proxy
	}
	if f.API.RequestsPerSecond != 0 {
		c.RequestsPerSecond = f.API.RequestsPerSecond
	}
	if f.API.MaxRetries != 0 {
		c.MaxRetries = f.API.MaxRetries
	}
	if f.API.RequestTimeout != 0 {
		c.RequestTimeout = f.API.RequestTimeout
	}
	if f.Cache.Disabled {
		c.CacheDisabled = true
	}
	if f.Cache.TTL != 0 {
		c.CacheTTL = f.Cache.TTL
	}
	if f.Cache.Dir != "" {
		c.CacheDir = f.Cache.Dir
	}
}
