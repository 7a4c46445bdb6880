// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManifest_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sheep-env-abc123.toml")
	in := &Manifest{
		Image:          "sheep-env:abc123def456",
		BuildID:        uuid.NewString(),
		CreatedAt:      time.Now().UTC().Truncate(time.Second),
		SourceRevision: "0123456789abcdef0123456789abcdef01234567",
		Stages:         []string{"base", "system", "app", "extras"},
		Extras:         []string{"dm_control"},
	}

	if err := WriteManifest(path, in); err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	out, err := ReadManifest(path)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}

	if out.Image != in.Image {
		t.Errorf("Image = %q, want %q", out.Image, in.Image)
	}
	if out.BuildID != in.BuildID {
		t.Errorf("BuildID = %q, want %q", out.BuildID, in.BuildID)
	}
	if !out.CreatedAt.Equal(in.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", out.CreatedAt, in.CreatedAt)
	}
	if out.SourceRevision != in.SourceRevision {
		t.Errorf("SourceRevision = %q, want %q", out.SourceRevision, in.SourceRevision)
	}
	if len(out.Stages) != 4 || out.Stages[0] != "base" {
		t.Errorf("Stages = %v", out.Stages)
	}
}

func TestReadManifest_Missing(t *testing.T) {
	t.Parallel()

	if _, err := ReadManifest(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestManifestFileName(t *testing.T) {
	t.Parallel()

	got := manifestFileName("sheep-env:abc123")
	if got != "sheep-env-abc123.toml" {
		t.Errorf("manifestFileName() = %q", got)
	}
}
