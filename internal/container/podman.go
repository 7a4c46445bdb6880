// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// PodmanEngine implements Engine using the Podman CLI.
type PodmanEngine struct {
	*BaseCLIEngine
}

// NewPodmanEngine creates a new Podman engine instance.
func NewPodmanEngine(opts ...BaseCLIEngineOption) *PodmanEngine {
	binaryPath, err := exec.LookPath("podman")
	if err != nil {
		binaryPath = "podman" // will fail on Available() check
	}

	baseOpts := append([]BaseCLIEngineOption{WithName("podman")}, opts...)
	return &PodmanEngine{
		BaseCLIEngine: NewBaseCLIEngine(binaryPath, baseOpts...),
	}
}

// Available checks if Podman is installed and responding.
func (p *PodmanEngine) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return p.RunCommandStatus(ctx, "version", "--format", "{{.Client.Version}}") == nil
}

// Version returns the Podman version.
func (p *PodmanEngine) Version(ctx context.Context) (string, error) {
	out, err := p.RunCommandWithOutput(ctx, "version", "--format", "{{.Client.Version}}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ImageExists checks if an image exists locally using Podman's native
// `image exists` subcommand.
func (p *PodmanEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	if err := image.Validate(); err != nil {
		return false, err
	}

	err := p.RunCommandStatus(ctx, "image", "exists", string(image))
	if err != nil {
		// `image exists` exits 1 for a missing image; other failures mean
		// podman itself could not answer.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
