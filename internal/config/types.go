// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
)

type (
	// Config is the resolved envforge configuration.
	Config struct {
		// ContainerEngine selects the engine: docker, podman, or auto.
		ContainerEngine string `mapstructure:"container_engine"`

		// CacheDir is where build contexts, manifests, and logs live.
		CacheDir string `mapstructure:"cache_dir"`

		UI  UIConfig  `mapstructure:"ui"`
		Log LogConfig `mapstructure:"log"`
	}

	// UIConfig holds terminal output settings.
	UIConfig struct {
		Verbose bool `mapstructure:"verbose"`
	}

	// LogConfig holds logging settings. An empty File means logs go to
	// stderr only.
	LogConfig struct {
		Level      string `mapstructure:"level"`
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
	}

	// LoadOptions controls where Load looks for configuration.
	LoadOptions struct {
		// ConfigFilePath, when set, is used exclusively (--config flag).
		ConfigFilePath string

		// ConfigDirPath overrides the platform config directory.
		ConfigDirPath string
	}
)

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	cacheDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", AppName)
	}

	return &Config{
		ContainerEngine: "auto",
		CacheDir:        cacheDir,
		UI: UIConfig{
			Verbose: false,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}
