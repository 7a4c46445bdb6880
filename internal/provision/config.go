// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"io"
	"os"
	"path/filepath"

	"envforge/internal/container"
)

type (
	// Config holds configuration for building descriptor images.
	Config struct {
		// ForceRebuild bypasses the image cache and forces a rebuild.
		ForceRebuild bool

		// NoCache additionally disables the engine's own layer cache.
		NoCache bool

		// Pull forces pulling a newer base image if one is available.
		Pull bool

		// CacheDir is where build contexts and manifests are staged.
		// Default: ~/.cache/envforge
		CacheDir string

		// TagSuffix is an optional suffix appended to image tags.
		// This enables test isolation by making each test's images unique.
		// Can be set via ENVFORGE_TAG_SUFFIX environment variable.
		TagSuffix string

		// Retry controls retries of transient engine failures.
		Retry container.RetryConfig

		// Stdout receives engine build progress. Default: os.Stderr, so
		// progress never mixes with machine-readable stdout output.
		Stdout io.Writer

		// Stderr receives engine errors. Default: os.Stderr.
		Stderr io.Writer
	}

	// Option is a functional option for configuring a Config.
	Option func(*Config)
)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	cacheDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", "envforge")
	}

	return &Config{
		CacheDir:  cacheDir,
		TagSuffix: os.Getenv("ENVFORGE_TAG_SUFFIX"),
		Retry:     container.DefaultRetryConfig(),
		Stdout:    os.Stderr,
		Stderr:    os.Stderr,
	}
}

// WithForceRebuild returns an Option that sets ForceRebuild on the config.
func WithForceRebuild(force bool) Option {
	return func(c *Config) {
		c.ForceRebuild = force
	}
}

// WithNoCache returns an Option that sets NoCache on the config.
func WithNoCache(noCache bool) Option {
	return func(c *Config) {
		c.NoCache = noCache
	}
}

// WithPull returns an Option that sets Pull on the config.
func WithPull(pull bool) Option {
	return func(c *Config) {
		c.Pull = pull
	}
}

// WithCacheDir returns an Option that sets CacheDir on the config.
func WithCacheDir(dir string) Option {
	return func(c *Config) {
		c.CacheDir = dir
	}
}

// WithTagSuffix returns an Option that sets TagSuffix on the config.
// This is primarily used for test isolation so parallel tests don't
// compete for the same image tags.
func WithTagSuffix(suffix string) Option {
	return func(c *Config) {
		c.TagSuffix = suffix
	}
}

// WithRetry returns an Option that sets the retry configuration.
func WithRetry(retry container.RetryConfig) Option {
	return func(c *Config) {
		c.Retry = retry
	}
}

// WithOutput returns an Option that sets the build output writers.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *Config) {
		c.Stdout = stdout
		c.Stderr = stderr
	}
}

// Apply applies the given options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}
