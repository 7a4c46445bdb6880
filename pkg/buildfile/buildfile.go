// SPDX-License-Identifier: MPL-2.0

package buildfile

type (
	// Buildfile is a parsed build descriptor. Field order mirrors stage
	// order: base environment, system packages, application, extras.
	Buildfile struct {
		// Name is the image repository name for the produced artifact.
		Name ProjectName `json:"name"`

		// Base selects the runtime image and environment flags.
		Base BaseSpec `json:"base"`

		// Workdir is the application root inside the image. Defaults to /app.
		Workdir WorkdirPath `json:"workdir,omitempty"`

		// System is the OS package stage. Nil means no native dependencies.
		System *SystemSpec `json:"system,omitempty"`

		// App is the application install stage. Nil means no local source.
		App *AppSpec `json:"app,omitempty"`

		// Extras are published packages installed after the application.
		// Each entry is independent: removing one never affects earlier stages.
		Extras []PackageSpec `json:"extras,omitempty"`

		// Labels are additional OCI labels stamped onto the image.
		Labels map[string]string `json:"labels,omitempty"`

		// FilePath is where this descriptor was loaded from. Not part of the
		// document itself.
		FilePath string `json:"-"`
	}

	// BaseSpec pins the runtime image and its environment flags.
	BaseSpec struct {
		Image ImageRef          `json:"image"`
		Env   map[string]string `json:"env,omitempty"`
	}

	// SystemSpec installs OS packages in a single fail-fast step.
	SystemSpec struct {
		Manager  PackageManager `json:"manager,omitempty"`
		Packages []OSPackage    `json:"packages"`
	}

	// AppSpec installs the local source tree via its packaging metadata.
	AppSpec struct {
		Source    SourcePath    `json:"source,omitempty"`
		Installer InstallerKind `json:"installer,omitempty"`
		Script    ScriptSource  `json:"script,omitempty"`
	}
)

// DefaultFileName is the descriptor filename looked up when none is given.
const DefaultFileName = "envforge.cue"

// DefaultWorkdir is the application root used when the descriptor omits one.
const DefaultWorkdir WorkdirPath = "/app"

// ApplyDefaults fills in the optional fields the schema leaves open.
func (b *Buildfile) ApplyDefaults() {
	if b.Workdir == "" {
		b.Workdir = DefaultWorkdir
	}
	if b.System != nil && b.System.Manager == "" {
		b.System.Manager = ManagerApt
	}
	if b.App != nil {
		if b.App.Source == "" {
			b.App.Source = "."
		}
		if b.App.Installer == "" {
			b.App.Installer = InstallerPip
		}
	}
}

// HasSystem reports whether the descriptor declares an OS package stage.
func (b *Buildfile) HasSystem() bool {
	return b.System != nil && len(b.System.Packages) > 0
}

// HasApp reports whether the descriptor declares an application install stage.
func (b *Buildfile) HasApp() bool {
	return b.App != nil
}
