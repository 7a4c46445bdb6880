// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"envforge/internal/container"
	"envforge/pkg/buildfile"
)

// Cleaner removes cached images and their manifests.
type Cleaner struct {
	engine container.Engine
	config *Config
}

// NewCleaner creates a new Cleaner.
func NewCleaner(engine container.Engine, cfg *Config) *Cleaner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Cleaner{
		engine: engine,
		config: cfg,
	}
}

// Clean removes built images. With a name, only that project's images are
// removed; with an empty name, every managed image goes. Returns the tags
// that were removed.
func (c *Cleaner) Clean(ctx context.Context, name buildfile.ProjectName, force bool) ([]container.ImageTag, error) {
	filter := LabelManaged + "=true"
	if name != "" {
		filter = LabelName + "=" + name.String()
	}

	tags, err := c.engine.ListImages(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list managed images: %w", err)
	}

	var removed []container.ImageTag
	var errs []string
	for _, tag := range tags {
		if err := c.engine.RemoveImage(ctx, tag, force); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", tag, err))
			continue
		}
		removed = append(removed, tag)
		c.removeManifest(tag)
	}

	if len(errs) > 0 {
		return removed, fmt.Errorf("failed to remove %d image(s):\n  %s", len(errs), strings.Join(errs, "\n  "))
	}
	return removed, nil
}

// removeManifest deletes the manifest belonging to a removed image.
// Best-effort: a stale manifest is harmless.
func (c *Cleaner) removeManifest(tag container.ImageTag) {
	path := filepath.Join(c.config.CacheDir, "manifests", manifestFileName(tag))
	_ = os.Remove(path)
}
