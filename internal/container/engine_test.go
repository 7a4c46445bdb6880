// SPDX-License-Identifier: MPL-2.0

package container

import (
	"context"
	"os/exec"
	"testing"
)

// execReturning injects a command substitute for every engine invocation.
func execReturning(path string) BaseCLIEngineOption {
	return WithExecCommand(func(ctx context.Context, _ string, _ ...string) *exec.Cmd {
		return exec.CommandContext(ctx, path)
	})
}

func TestDockerImageExists_AbsentVersusBroken(t *testing.T) {
	t.Parallel()

	// A clean non-zero inspect means "image not found".
	absent := NewDockerEngine(execReturning("false"))
	exists, err := absent.ImageExists(context.Background(), "app:abc123")
	if err != nil {
		t.Fatalf("ImageExists() error = %v", err)
	}
	if exists {
		t.Error("non-zero inspect should report the image as absent")
	}

	present := NewDockerEngine(execReturning("true"))
	exists, err = present.ImageExists(context.Background(), "app:abc123")
	if err != nil || !exists {
		t.Errorf("ImageExists() = (%v, %v), want (true, nil)", exists, err)
	}

	// A docker binary that cannot even be invoked is a failure, not a
	// missing image.
	broken := NewDockerEngine(execReturning("/nonexistent/docker"))
	if _, err := broken.ImageExists(context.Background(), "app:abc123"); err == nil {
		t.Error("expected an error when the engine cannot be invoked")
	}
}

func TestPodmanImageExists_AbsentVersusBroken(t *testing.T) {
	t.Parallel()

	absent := NewPodmanEngine(execReturning("false"))
	exists, err := absent.ImageExists(context.Background(), "app:abc123")
	if err != nil {
		t.Fatalf("ImageExists() error = %v", err)
	}
	if exists {
		t.Error("non-zero `image exists` should report the image as absent")
	}

	broken := NewPodmanEngine(execReturning("/nonexistent/podman"))
	if _, err := broken.ImageExists(context.Background(), "app:abc123"); err == nil {
		t.Error("expected an error when the engine cannot be invoked")
	}
}

func TestParseEngineType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    EngineType
		wantErr bool
	}{
		{"docker", EngineTypeDocker, false},
		{"podman", EngineTypePodman, false},
		{"auto", EngineTypeAuto, false},
		{"", EngineTypeAuto, false},
		{"containerd", "", true},
		{"Docker", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseEngineType(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEngineType(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseEngineType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
