// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

const (
	// ManagerApt selects Debian-family package installation (apt-get).
	ManagerApt PackageManager = "apt"
	// ManagerApk selects Alpine package installation (apk).
	ManagerApk PackageManager = "apk"

	// InstallerPip installs the source tree with "pip install .".
	InstallerPip InstallerKind = "pip"
	// InstallerPipEditable installs the source tree with "pip install -e .".
	InstallerPipEditable InstallerKind = "pip-editable"
	// InstallerScript runs a user-provided install script instead.
	InstallerScript InstallerKind = "script"
)

var (
	// ErrInvalidProjectName is the sentinel error wrapped by InvalidProjectNameError.
	ErrInvalidProjectName = errors.New("invalid project name")

	// ErrInvalidImageRef is the sentinel error wrapped by InvalidImageRefError.
	ErrInvalidImageRef = errors.New("invalid image reference")

	// ErrInvalidWorkdir is the sentinel error wrapped by InvalidWorkdirError.
	ErrInvalidWorkdir = errors.New("invalid workdir")

	// ErrInvalidPackageManager is the sentinel error wrapped by InvalidPackageManagerError.
	ErrInvalidPackageManager = errors.New("invalid package manager")

	// ErrInvalidOSPackage is the sentinel error wrapped by InvalidOSPackageError.
	ErrInvalidOSPackage = errors.New("invalid OS package name")

	// ErrInvalidInstaller is the sentinel error wrapped by InvalidInstallerError.
	ErrInvalidInstaller = errors.New("invalid installer")

	// ErrInvalidPackageSpec is the sentinel error wrapped by InvalidPackageSpecError.
	ErrInvalidPackageSpec = errors.New("invalid package spec")

	// ErrInvalidScript is the sentinel error wrapped by InvalidScriptError.
	ErrInvalidScript = errors.New("invalid install script")

	projectNameRe = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*$`)
	osPackageRe   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9+.:_-]*$`)
	packageNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*(\[[A-Za-z0-9._,-]+\])?$`)
)

type (
	// ProjectName is the image repository name for the produced artifact.
	ProjectName string

	// InvalidProjectNameError is returned when a ProjectName does not match
	// the image repository grammar.
	InvalidProjectNameError struct {
		Value ProjectName
	}

	// ImageRef is a container image reference such as "python:3.10".
	ImageRef string

	// InvalidImageRefError is returned when an ImageRef is empty or contains
	// whitespace.
	InvalidImageRefError struct {
		Value ImageRef
	}

	// WorkdirPath is the application root inside the image.
	WorkdirPath string

	// InvalidWorkdirError is returned when a WorkdirPath is not absolute.
	InvalidWorkdirError struct {
		Value WorkdirPath
	}

	// PackageManager selects the OS package installation flavor.
	// The zero value ("") is valid and means "default to apt".
	PackageManager string

	// InvalidPackageManagerError is returned for unrecognized managers.
	InvalidPackageManagerError struct {
		Value PackageManager
	}

	// OSPackage is a single OS package name (e.g. libglfw3, build-essential).
	OSPackage string

	// InvalidOSPackageError is returned when an OSPackage contains characters
	// outside the package-name grammar. This also keeps shell metacharacters
	// out of the generated install step.
	InvalidOSPackageError struct {
		Value OSPackage
	}

	// InstallerKind selects how the application source tree is installed.
	// The zero value ("") is valid and means "default to pip".
	InstallerKind string

	// InvalidInstallerError is returned for unrecognized installer kinds.
	InvalidInstallerError struct {
		Value InstallerKind
	}

	// SourcePath is the local source tree copied into the image.
	SourcePath string

	// PackageSpec is a published package request: "name" or "name@version".
	PackageSpec string

	// InvalidPackageSpecError is returned when a PackageSpec does not parse.
	InvalidPackageSpecError struct {
		Value  PackageSpec
		Reason string
	}

	// ScriptSource is an install script hook. Must parse as POSIX shell.
	ScriptSource string

	// InvalidScriptError is returned when a ScriptSource fails to parse.
	InvalidScriptError struct {
		Cause error
	}
)

// String returns the string representation of the ProjectName.
func (n ProjectName) String() string { return string(n) }

// Validate returns an error unless the name matches the image repository
// grammar (lowercase alphanumerics, dots, dashes, underscores).
func (n ProjectName) Validate() error {
	if !projectNameRe.MatchString(string(n)) {
		return &InvalidProjectNameError{Value: n}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidProjectNameError) Error() string {
	return fmt.Sprintf("invalid project name %q: must match %s", e.Value, projectNameRe)
}

// Unwrap returns ErrInvalidProjectName for errors.Is compatibility.
func (e *InvalidProjectNameError) Unwrap() error { return ErrInvalidProjectName }

// NormalizeProjectName coerces an arbitrary string into the project name
// grammar: lowercased, invalid characters replaced with dashes, leading
// separators stripped. Returns "" when nothing usable remains.
func NormalizeProjectName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteRune('-')
		}
	}
	return strings.TrimLeft(sb.String(), "._-")
}

// String returns the string representation of the ImageRef.
func (r ImageRef) String() string { return string(r) }

// Validate returns an error if the reference is empty or has whitespace.
func (r ImageRef) Validate() error {
	s := string(r)
	if strings.TrimSpace(s) == "" || strings.ContainsAny(s, " \t\n") {
		return &InvalidImageRefError{Value: r}
	}
	return nil
}

// IsPinned reports whether the reference carries an explicit, non-"latest"
// tag or digest. Unpinned bases still build, but break reproducible rebuilds.
func (r ImageRef) IsPinned() bool {
	s := string(r)
	if strings.Contains(s, "@") {
		return true
	}
	// A colon after the last slash separates the tag from the repository.
	rest := s
	if i := strings.LastIndex(s, "/"); i >= 0 {
		rest = s[i+1:]
	}
	i := strings.Index(rest, ":")
	if i < 0 {
		return false
	}
	return rest[i+1:] != "latest" && rest[i+1:] != ""
}

// Error implements the error interface.
func (e *InvalidImageRefError) Error() string {
	return fmt.Sprintf("invalid image reference %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidImageRef for errors.Is compatibility.
func (e *InvalidImageRefError) Unwrap() error { return ErrInvalidImageRef }

// String returns the string representation of the WorkdirPath.
func (w WorkdirPath) String() string { return string(w) }

// Validate returns an error unless the path is absolute. The zero value is
// valid; ApplyDefaults replaces it with DefaultWorkdir.
func (w WorkdirPath) Validate() error {
	if w == "" {
		return nil
	}
	if !strings.HasPrefix(string(w), "/") {
		return &InvalidWorkdirError{Value: w}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidWorkdirError) Error() string {
	return fmt.Sprintf("invalid workdir %q: must be an absolute path", e.Value)
}

// Unwrap returns ErrInvalidWorkdir for errors.Is compatibility.
func (e *InvalidWorkdirError) Unwrap() error { return ErrInvalidWorkdir }

// String returns the string representation of the PackageManager.
func (m PackageManager) String() string { return string(m) }

// Validate returns an error if the manager is not one of the known flavors.
func (m PackageManager) Validate() error {
	switch m {
	case ManagerApt, ManagerApk, "":
		return nil
	default:
		return &InvalidPackageManagerError{Value: m}
	}
}

// Error implements the error interface.
func (e *InvalidPackageManagerError) Error() string {
	return fmt.Sprintf("invalid package manager %q (valid: apt, apk)", e.Value)
}

// Unwrap returns ErrInvalidPackageManager for errors.Is compatibility.
func (e *InvalidPackageManagerError) Unwrap() error { return ErrInvalidPackageManager }

// String returns the string representation of the OSPackage.
func (p OSPackage) String() string { return string(p) }

// Validate returns an error unless the name matches the package grammar.
func (p OSPackage) Validate() error {
	if !osPackageRe.MatchString(string(p)) {
		return &InvalidOSPackageError{Value: p}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidOSPackageError) Error() string {
	return fmt.Sprintf("invalid OS package name %q", e.Value)
}

// Unwrap returns ErrInvalidOSPackage for errors.Is compatibility.
func (e *InvalidOSPackageError) Unwrap() error { return ErrInvalidOSPackage }

// String returns the string representation of the InstallerKind.
func (k InstallerKind) String() string { return string(k) }

// Validate returns an error if the kind is not one of the known installers.
func (k InstallerKind) Validate() error {
	switch k {
	case InstallerPip, InstallerPipEditable, InstallerScript, "":
		return nil
	default:
		return &InvalidInstallerError{Value: k}
	}
}

// Error implements the error interface.
func (e *InvalidInstallerError) Error() string {
	return fmt.Sprintf("invalid installer %q (valid: pip, pip-editable, script)", e.Value)
}

// Unwrap returns ErrInvalidInstaller for errors.Is compatibility.
func (e *InvalidInstallerError) Unwrap() error { return ErrInvalidInstaller }

// String returns the string representation of the SourcePath.
func (s SourcePath) String() string { return string(s) }

// String returns the string representation of the PackageSpec.
func (p PackageSpec) String() string { return string(p) }

// Name returns the package name without any version pin.
func (p PackageSpec) Name() string {
	name, _, _ := strings.Cut(string(p), "@")
	return name
}

// Version returns the pinned version, or "" when the spec is unpinned.
func (p PackageSpec) Version() string {
	_, version, _ := strings.Cut(string(p), "@")
	return version
}

// Validate returns an error unless the spec is "name" or "name@version"
// with a well-formed name (optional extras suffix allowed, e.g. "pkg[all]").
func (p PackageSpec) Validate() error {
	name, version, pinned := strings.Cut(string(p), "@")
	if !packageNameRe.MatchString(name) {
		return &InvalidPackageSpecError{Value: p, Reason: "package name must start with an alphanumeric"}
	}
	if pinned && strings.TrimSpace(version) == "" {
		return &InvalidPackageSpecError{Value: p, Reason: "version after '@' must be non-empty"}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidPackageSpecError) Error() string {
	return fmt.Sprintf("invalid package spec %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPackageSpec for errors.Is compatibility.
func (e *InvalidPackageSpecError) Unwrap() error { return ErrInvalidPackageSpec }

// String returns the string representation of the ScriptSource.
func (s ScriptSource) String() string { return string(s) }

// Validate parses the script as POSIX shell so malformed hooks fail at
// descriptor load time instead of mid-build.
func (s ScriptSource) Validate() error {
	if s == "" {
		return nil
	}
	parser := syntax.NewParser(syntax.Variant(syntax.LangPOSIX))
	if _, err := parser.Parse(strings.NewReader(string(s)), ""); err != nil {
		return &InvalidScriptError{Cause: err}
	}
	return nil
}

// Error implements the error interface.
func (e *InvalidScriptError) Error() string {
	return fmt.Sprintf("invalid install script: %v", e.Cause)
}

// Unwrap returns ErrInvalidScript for errors.Is compatibility.
func (e *InvalidScriptError) Unwrap() error { return ErrInvalidScript }
