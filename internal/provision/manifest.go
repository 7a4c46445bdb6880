// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"envforge/internal/container"
)

// Manifest records what a build produced. One manifest is written per
// built image, next to the cache, so a built image can always be traced
// back to its inputs.
type Manifest struct {
	// Image is the full tag of the built image.
	Image string `toml:"image"`

	// BuildID uniquely identifies this build run.
	BuildID string `toml:"build_id"`

	// CreatedAt is when the build finished.
	CreatedAt time.Time `toml:"created_at"`

	// SourceRevision is the VCS revision of the application source, empty
	// when the source is not a git checkout.
	SourceRevision string `toml:"source_revision,omitempty"`

	// Stages lists the executed stage kinds in order.
	Stages []string `toml:"stages"`

	// Extras lists the extra package specs as declared.
	Extras []string `toml:"extras,omitempty"`
}

// WriteManifest serializes the manifest to a TOML file.
func WriteManifest(path string, m *Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest from a TOML file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// manifestFileName derives the manifest file name from an image tag.
// Tags contain a colon, which is not filename-safe everywhere.
func manifestFileName(tag container.ImageTag) string {
	return strings.ReplaceAll(tag.String(), ":", "-") + ".toml"
}
