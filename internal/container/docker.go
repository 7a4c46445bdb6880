// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// DockerEngine implements Engine using the Docker CLI.
type DockerEngine struct {
	*BaseCLIEngine
}

// NewDockerEngine creates a new Docker engine instance.
func NewDockerEngine(opts ...BaseCLIEngineOption) *DockerEngine {
	binaryPath, err := exec.LookPath("docker")
	if err != nil {
		binaryPath = "docker" // will fail on Available() check
	}

	baseOpts := append([]BaseCLIEngineOption{WithName("docker")}, opts...)
	return &DockerEngine{
		BaseCLIEngine: NewBaseCLIEngine(binaryPath, baseOpts...),
	}
}

// Available checks if Docker is installed and the daemon is reachable.
func (d *DockerEngine) Available() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return d.RunCommandStatus(ctx, "version", "--format", "{{.Server.Version}}") == nil
}

// Version returns the Docker server version.
func (d *DockerEngine) Version(ctx context.Context) (string, error) {
	out, err := d.RunCommandWithOutput(ctx, "version", "--format", "{{.Server.Version}}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ImageExists checks if an image exists locally. Docker has no `image
// exists` subcommand, so a silent inspect is used instead.
func (d *DockerEngine) ImageExists(ctx context.Context, image ImageTag) (bool, error) {
	if err := image.Validate(); err != nil {
		return false, err
	}

	err := d.RunCommandStatus(ctx, "image", "inspect", "--format", "{{.Id}}", string(image))
	if err != nil {
		// inspect exits non-zero when the image is absent; that is the
		// negative answer, not a failure. Anything else (binary missing,
		// daemon down, cancelled context) is reported to the caller.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
