// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"fmt"
	"io"
)

// Engine defines the interface for container operations.
type Engine interface {
	// Name returns the engine name (docker or podman).
	Name() string
	// Available checks if the engine is usable on the system.
	Available() bool
	// Version returns the engine version.
	Version(ctx context.Context) (string, error)

	// Build builds an image from a Dockerfile. Any failing instruction
	// aborts the build; no image is tagged on failure.
	Build(ctx context.Context, opts BuildOptions) error
	// Run runs a command in a container.
	Run(ctx context.Context, opts RunOptions) (*RunResult, error)
	// ImageExists checks if an image exists locally.
	ImageExists(ctx context.Context, image ImageTag) (bool, error)
	// ListImages returns local image tags matching a label filter.
	ListImages(ctx context.Context, labelFilter string) ([]ImageTag, error)
	// RemoveImage removes an image.
	RemoveImage(ctx context.Context, image ImageTag, force bool) error
}

// BuildOptions contains options for building an image.
type BuildOptions struct {
	// ContextDir is the build context directory.
	ContextDir string
	// Dockerfile is the path to the Dockerfile, relative to ContextDir.
	Dockerfile string
	// Tag is the image tag.
	Tag ImageTag
	// Labels are stamped onto the image via --label.
	Labels map[string]string
	// BuildArgs are build-time variables.
	BuildArgs map[string]string
	// NoCache disables the engine's layer cache.
	NoCache bool
	// Pull forces pulling a newer base image if available.
	Pull bool
	// Stdout is where build progress is written.
	Stdout io.Writer
	// Stderr is where build errors are written.
	Stderr io.Writer
}

// RunOptions contains options for running a container.
type RunOptions struct {
	// Image is the image to run.
	Image ImageTag
	// Command is the command to run.
	Command []string
	// WorkDir is the working directory inside the container.
	WorkDir string
	// Env contains environment variables.
	Env map[string]string
	// Remove automatically removes the container after exit.
	Remove bool
	// Stdout is where standard output is written.
	Stdout io.Writer
	// Stderr is where standard error is written.
	Stderr io.Writer
}

// RunResult contains the result of running a container.
type RunResult struct {
	// ExitCode is the container's exit code.
	ExitCode int
	// Error holds infrastructure failures (engine missing, etc.);
	// a non-zero exit code alone is not an Error.
	Error error
}

// EngineType identifies the container engine flavor.
type EngineType string

const (
	EngineTypeDocker EngineType = "docker"
	EngineTypePodman EngineType = "podman"
	// EngineTypeAuto selects whichever engine is available.
	EngineTypeAuto EngineType = "auto"
)

// ErrEngineNotAvailable is returned when no usable container engine exists.
type ErrEngineNotAvailable struct {
	Engine string
	Reason string
}

func (e *ErrEngineNotAvailable) Error() string {
	return fmt.Sprintf("container engine '%s' is not available: %s", e.Engine, e.Reason)
}

// ParseEngineType parses a configuration value into an EngineType.
// Empty input means auto-detection.
func ParseEngineType(value string) (EngineType, error) {
	switch EngineType(value) {
	case EngineTypeDocker, EngineTypePodman, EngineTypeAuto:
		return EngineType(value), nil
	case "":
		return EngineTypeAuto, nil
	default:
		return "", fmt.Errorf("unknown container engine type: %q (valid: docker, podman, auto)", value)
	}
}

// NewEngine creates a container engine honoring the preference, falling back
// to the other flavor when the preferred one is not available.
func NewEngine(preferred EngineType) (Engine, error) {
	switch preferred {
	case EngineTypeDocker:
		if engine := NewDockerEngine(); engine.Available() {
			return engine, nil
		}
		if engine := NewPodmanEngine(); engine.Available() {
			return engine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: string(EngineTypeDocker),
			Reason: "docker is not installed or not accessible, and podman fallback is also not available",
		}

	case EngineTypePodman:
		if engine := NewPodmanEngine(); engine.Available() {
			return engine, nil
		}
		if engine := NewDockerEngine(); engine.Available() {
			return engine, nil
		}
		return nil, &ErrEngineNotAvailable{
			Engine: string(EngineTypePodman),
			Reason: "podman is not installed or not accessible, and docker fallback is also not available",
		}

	case EngineTypeAuto:
		return AutoDetectEngine()

	default:
		return nil, fmt.Errorf("unknown container engine type: %s", preferred)
	}
}

// AutoDetectEngine tries to find an available container engine.
// Docker is tried first: it is the flavor the produced images are most
// commonly deployed with.
func AutoDetectEngine() (Engine, error) {
	if docker := NewDockerEngine(); docker.Available() {
		return docker, nil
	}
	if podman := NewPodmanEngine(); podman.Available() {
		return podman, nil
	}
	return nil, &ErrEngineNotAvailable{
		Engine: "any",
		Reason: "no container engine (docker or podman) is available on this system",
	}
}
