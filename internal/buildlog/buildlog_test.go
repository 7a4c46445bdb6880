// SPDX-License-Identifier: MPL-2.0

package buildlog

import (
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"envforge/internal/config"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"", log.InfoLevel},
		{"bogus", log.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSetup_VerboseOverridesLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.Level = "error"

	closer := Setup(cfg, true)
	defer func() { _ = closer.Close() }()

	if log.Default().GetLevel() != log.DebugLevel {
		t.Errorf("verbose should force debug level, got %v", log.Default().GetLevel())
	}
}

func TestSetup_FileSink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Log.File = filepath.Join(t.TempDir(), "envforge.log")

	closer := Setup(cfg, false)
	if err := closer.Close(); err != nil {
		t.Errorf("closing the file sink failed: %v", err)
	}
}
