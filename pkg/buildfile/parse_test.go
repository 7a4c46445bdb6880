// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDescriptor = `
name: "sheep-env"
base: {
	image: "python:3.10"
	env: {
		PYTHONDONTWRITEBYTECODE: "1"
		PYTHONUNBUFFERED:        "1"
	}
}
system: {
	manager: "apt"
	packages: ["git", "build-essential", "libglfw3", "libglew-dev", "libgl1-mesa-glx", "libosmesa6", "wget"]
}
app: {
	source:    "."
	installer: "pip"
}
extras: ["dm_control"]
`

func TestParseBytes_FullDescriptor(t *testing.T) {
	t.Parallel()

	bf, err := ParseBytes([]byte(fullDescriptor), "envforge.cue")
	require.NoError(t, err)

	assert.Equal(t, ProjectName("sheep-env"), bf.Name)
	assert.Equal(t, ImageRef("python:3.10"), bf.Base.Image)
	assert.Equal(t, "1", bf.Base.Env["PYTHONUNBUFFERED"])
	assert.Equal(t, "envforge.cue", bf.FilePath)

	require.NotNil(t, bf.System)
	assert.Equal(t, ManagerApt, bf.System.Manager)
	assert.Len(t, bf.System.Packages, 7)

	require.NotNil(t, bf.App)
	assert.Equal(t, InstallerPip, bf.App.Installer)

	require.Len(t, bf.Extras, 1)
	assert.Equal(t, "dm_control", bf.Extras[0].Name())
	assert.Empty(t, bf.Extras[0].Version())
}

func TestParseBytes_DefaultsApplied(t *testing.T) {
	t.Parallel()

	bf, err := ParseBytes([]byte(`
name: "minimal"
base: image: "alpine:3.20"
app: {}
`), "envforge.cue")
	require.NoError(t, err)

	assert.Equal(t, DefaultWorkdir, bf.Workdir)
	assert.Equal(t, SourcePath("."), bf.App.Source)
	assert.Equal(t, InstallerPip, bf.App.Installer)
	assert.False(t, bf.HasSystem())
	assert.True(t, bf.HasApp())
}

func TestParseBytes_UnknownFieldRejected(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`
name: "bad"
base: image: "alpine:3.20"
bogus: true
`), "envforge.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestParseBytes_MissingName(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`base: image: "alpine:3.20"`), "envforge.cue")
	require.Error(t, err)
}

func TestParseBytes_EmptySystemPackagesRejected(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`
name: "bad"
base: image: "alpine:3.20"
system: packages: []
`), "envforge.cue")
	require.Error(t, err)
}

func TestParseBytes_RelativeWorkdirRejected(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`
name: "bad"
base: image: "alpine:3.20"
workdir: "app"
`), "envforge.cue")
	require.Error(t, err)
}

func TestParseBytes_MalformedScriptRejected(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`
name: "bad"
base: image: "alpine:3.20"
app: {
	installer: "script"
	script: "if true; then echo unclosed"
}
`), "envforge.cue")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidScript), "expected ErrInvalidScript, got %v", err)
}

func TestParseBytes_ScriptWithoutScriptInstallerRejected(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`
name: "bad"
base: image: "alpine:3.20"
app: {
	installer: "pip"
	script: "echo hi"
}
`), "envforge.cue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.script")
}

func TestParseBytes_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	_, err := ParseBytes([]byte(`
name: "bad"
base: image: "alpine:3.20"
system: packages: ["ok-package", "bad;package"]
extras: ["dm_control@"]
`), "envforge.cue")
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
	assert.True(t, errors.Is(err, ErrInvalidOSPackage))
	assert.True(t, errors.Is(err, ErrInvalidPackageSpec))
}

func TestParse_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Parse("testdata/does-not-exist.cue")
	require.Error(t, err)
}
