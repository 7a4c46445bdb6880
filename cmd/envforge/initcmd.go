// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"envforge/internal/issue"
	"envforge/pkg/buildfile"
)

// descriptorTemplate is the scaffolded starting point: a Python runtime
// with the OS packages OpenGL-based simulation stacks typically need.
const descriptorTemplate = `// envforge build descriptor.
// Run 'envforge build' to build the image, 'envforge render' to inspect
// the generated Dockerfile.

name: %q

base: {
	// Pin a concrete version; "latest" defeats reproducible builds.
	image: "python:3.10"
	env: {
		PYTHONDONTWRITEBYTECODE: "1"
		PYTHONUNBUFFERED:        "1"
	}
}

system: {
	manager: "apt"
	packages: [
		"git",
		"build-essential",
		"libglfw3",
		"libglew-dev",
		"libgl1-mesa-glx",
		"libosmesa6",
		"wget",
	]
}

app: {
	source:    "."
	installer: "pip"
}

// Extra packages install after the app, one step each.
// Pin versions with "name@version".
extras: ["dm_control"]
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold a build descriptor in the current directory",
	Long: `Create an envforge.cue starter descriptor in the current directory.

The scaffold describes a Python runtime with the OS packages needed for
OpenGL rendering; adjust it to your project.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(_ *cobra.Command, _ []string) error {
	path := buildfile.DefaultFileName

	if _, err := os.Stat(path); err == nil {
		return issue.NewErrorContext().
			WithOperation("scaffold build descriptor").
			WithResource(path).
			WithSuggestion("Edit the existing file instead").
			WithSuggestion("Or remove it first if you want a fresh scaffold").
			Wrap(fmt.Errorf("%s already exists", path)).
			BuildError()
	}

	name := projectNameFromDir()
	content := fmt.Sprintf(descriptorTemplate, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Println(SuccessStyle.Render("✓ ") + "Created " + CmdStyle.Render(path))
	fmt.Println(SubtitleStyle.Render("Edit it, then run 'envforge build'."))
	return nil
}

// projectNameFromDir derives a valid project name from the working
// directory, falling back to a generic name.
func projectNameFromDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "my-env"
	}

	name := buildfile.NormalizeProjectName(filepath.Base(cwd))
	if name == "" {
		return "my-env"
	}
	return name
}
