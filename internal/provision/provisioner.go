// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"envforge/internal/container"
	"envforge/pkg/buildfile"
)

// Image labels stamped on every built image. Managed images are found
// again for cleanup via the managed label.
const (
	LabelManaged  = "org.envforge.managed"
	LabelName     = "org.envforge.name"
	LabelRevision = "org.envforge.revision"
)

type (
	// Provisioner builds descriptor images. Implementations cache built
	// images by content hash so unchanged descriptors are reused.
	Provisioner interface {
		// Provision builds (or reuses) the image for a descriptor and
		// returns the result. The cleanup function removes temporary build
		// resources, never the cached image.
		Provision(ctx context.Context, bf *buildfile.Buildfile) (*Result, error)
	}

	// Result contains the output of a provisioning operation.
	Result struct {
		// ImageTag is the tag of the built image (e.g. "sheep-env:3f9c2ab81d04").
		ImageTag container.ImageTag

		// CacheHit is true when an up-to-date image already existed and no
		// build was run.
		CacheHit bool

		// Dockerfile is the rendered Dockerfile content the image was (or
		// would be) built from.
		Dockerfile string

		// ManifestPath is the path of the build manifest, empty on cache hits.
		ManifestPath string

		// Cleanup removes the temporary build context. May be nil when
		// nothing was staged.
		Cleanup func()
	}
)

// Compile-time interface check
var _ Provisioner = (*ImageProvisioner)(nil)

// ImageProvisioner builds images from descriptors through a container
// engine CLI.
//
// Built images are cached by a key derived from:
//   - the rendered Dockerfile (covers base image, env, packages, installer)
//   - the application source tree content
//
// The same descriptor plus the same source always maps to the same tag,
// so a rebuild of unchanged inputs is a cache hit.
type ImageProvisioner struct {
	engine container.Engine
	config *Config
}

// NewImageProvisioner creates a new ImageProvisioner.
func NewImageProvisioner(engine container.Engine, cfg *Config) *ImageProvisioner {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ImageProvisioner{
		engine: engine,
		config: cfg,
	}
}

// Config returns the provisioner's configuration.
func (p *ImageProvisioner) Config() *Config {
	return p.config
}

// Provision builds or reuses the image for the descriptor.
func (p *ImageProvisioner) Provision(ctx context.Context, bf *buildfile.Buildfile) (*Result, error) {
	plan := NewPlan(bf)
	dockerfile := RenderDockerfile(plan)

	cacheKey, err := p.calculateCacheKey(bf, dockerfile)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate cache key: %w", err)
	}

	tag := p.buildImageTag(bf.Name, cacheKey[:12])

	if !p.config.ForceRebuild {
		exists, _ := p.engine.ImageExists(ctx, tag) //nolint:errcheck // Error treated as "not found"
		if exists {
			return &Result{
				ImageTag:   tag,
				CacheHit:   true,
				Dockerfile: dockerfile,
			}, nil
		}
	}

	buildCtx, cleanup, err := p.prepareBuildContext(bf, dockerfile)
	if err != nil {
		return nil, err
	}

	if err := p.buildImage(ctx, bf, buildCtx, tag); err != nil {
		cleanup()
		return nil, err
	}

	manifestPath, err := p.writeManifest(bf, plan, tag)
	if err != nil {
		// The image exists and works; a failed manifest write should not
		// fail the build.
		manifestPath = ""
	}

	return &Result{
		ImageTag:     tag,
		Dockerfile:   dockerfile,
		ManifestPath: manifestPath,
		Cleanup:      cleanup,
	}, nil
}

// Check runs a command inside a built image to verify the environment is
// actually usable, e.g. importing a package the extras stage installed.
// The container is removed after the run; a non-zero exit is a failure.
func (p *ImageProvisioner) Check(ctx context.Context, tag container.ImageTag, command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("check command must be non-empty")
	}

	result, err := p.engine.Run(ctx, container.RunOptions{
		Image:   tag,
		Command: command,
		Remove:  true,
		Stdout:  p.config.Stdout,
		Stderr:  p.config.Stderr,
	})
	if err != nil {
		return fmt.Errorf("failed to run check in %s: %w", tag, err)
	}
	if result.Error != nil {
		return fmt.Errorf("failed to run check in %s: %w", tag, result.Error)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("check command exited with status %d in %s", result.ExitCode, tag)
	}
	return nil
}

// ImageTagFor returns the tag that Provision would use for the descriptor
// without building anything. Useful for checking whether an image is cached.
func (p *ImageProvisioner) ImageTagFor(bf *buildfile.Buildfile) (container.ImageTag, error) {
	dockerfile := RenderDockerfile(NewPlan(bf))
	cacheKey, err := p.calculateCacheKey(bf, dockerfile)
	if err != nil {
		return "", err
	}
	return p.buildImageTag(bf.Name, cacheKey[:12]), nil
}

// IsImageCached checks whether the descriptor's image already exists.
func (p *ImageProvisioner) IsImageCached(ctx context.Context, bf *buildfile.Buildfile) (bool, error) {
	tag, err := p.ImageTagFor(bf)
	if err != nil {
		return false, err
	}
	return p.engine.ImageExists(ctx, tag)
}

// buildImageTag constructs the image tag with optional suffix.
// When TagSuffix is set, the tag format is "<name>:<hash>-<suffix>".
func (p *ImageProvisioner) buildImageTag(name buildfile.ProjectName, hash string) container.ImageTag {
	if p.config.TagSuffix != "" {
		return container.ImageTag(fmt.Sprintf("%s:%s-%s", name, hash, p.config.TagSuffix))
	}
	return container.ImageTag(fmt.Sprintf("%s:%s", name, hash))
}

// calculateCacheKey derives the content hash of all build inputs.
func (p *ImageProvisioner) calculateCacheKey(bf *buildfile.Buildfile, dockerfile string) (string, error) {
	h := sha256.New()

	h.Write([]byte("dockerfile:" + dockerfile))

	if bf.HasApp() {
		srcDir := p.resolveSourceDir(bf)
		srcHash, err := CalculateDirHash(srcDir)
		if err != nil {
			return "", fmt.Errorf("failed to hash source directory %s: %w", srcDir, err)
		}
		h.Write([]byte("source:" + srcHash))
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// resolveSourceDir resolves the app source path relative to the
// descriptor's directory.
func (p *ImageProvisioner) resolveSourceDir(bf *buildfile.Buildfile) string {
	src := bf.App.Source.String()
	if filepath.IsAbs(src) {
		return src
	}
	base := "."
	if bf.FilePath != "" {
		base = filepath.Dir(bf.FilePath)
	}
	return filepath.Join(base, src)
}

// buildImage runs the engine build. Only transient engine failures are
// retried; a failing build instruction is deterministic and surfaces
// immediately.
func (p *ImageProvisioner) buildImage(ctx context.Context, bf *buildfile.Buildfile, buildCtx string, tag container.ImageTag) error {
	opts := container.BuildOptions{
		ContextDir: buildCtx,
		Dockerfile: "Dockerfile",
		Tag:        tag,
		Labels: map[string]string{
			LabelManaged: "true",
			LabelName:    bf.Name.String(),
		},
		NoCache: p.config.NoCache,
		Pull:    p.config.Pull,
		Stdout:  p.config.Stdout,
		Stderr:  p.config.Stderr,
	}

	if rev := SourceRevision(p.resolveSourceDir(bf)); rev != "" {
		opts.Labels[LabelRevision] = rev
	}

	return container.RetryWithBackoff(ctx, p.config.Retry, func() error {
		return p.engine.Build(ctx, opts)
	})
}

// prepareBuildContext stages a temporary directory holding the rendered
// Dockerfile and, when the descriptor has an app stage, a copy of the
// source tree under src/.
func (p *ImageProvisioner) prepareBuildContext(bf *buildfile.Buildfile, dockerfile string) (buildContextDir string, cleanup func(), err error) {
	parent := filepath.Join(p.config.CacheDir, "contexts")
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create build context parent directory: %w", err)
	}

	tmpDir, err := os.MkdirTemp(parent, "ctx-*")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	cleanup = func() {
		_ = os.RemoveAll(tmpDir) // Cleanup temp dir; error non-critical
	}

	dockerfilePath := filepath.Join(tmpDir, "Dockerfile")
	if err := os.WriteFile(dockerfilePath, []byte(dockerfile), 0o644); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write Dockerfile: %w", err)
	}

	if bf.HasApp() {
		srcDst := filepath.Join(tmpDir, sourceDirName)
		if err := CopyDir(p.resolveSourceDir(bf), srcDst); err != nil {
			cleanup()
			return "", nil, fmt.Errorf("failed to copy application source: %w", err)
		}
	}

	return tmpDir, cleanup, nil
}

// writeManifest records what was built alongside the image cache.
func (p *ImageProvisioner) writeManifest(bf *buildfile.Buildfile, plan *Plan, tag container.ImageTag) (string, error) {
	stages := make([]string, 0, len(plan.Stages))
	for _, kind := range plan.Kinds() {
		stages = append(stages, string(kind))
	}

	extras := make([]string, 0, len(bf.Extras))
	for _, pkg := range bf.Extras {
		extras = append(extras, pkg.String())
	}

	m := &Manifest{
		Image:          tag.String(),
		BuildID:        uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		SourceRevision: SourceRevision(p.resolveSourceDir(bf)),
		Stages:         stages,
		Extras:         extras,
	}

	dir := filepath.Join(p.config.CacheDir, "manifests")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, manifestFileName(tag))
	if err := WriteManifest(path, m); err != nil {
		return "", err
	}
	return path, nil
}
