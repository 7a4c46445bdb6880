// SPDX-License-Identifier: MPL-2.0

package buildfile

import (
	"fmt"
	"strings"
)

// ValidationErrors collects every constraint violation found in a descriptor
// so the user can fix all of them in one pass.
type ValidationErrors []error

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 1 {
		return v[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation error(s):", len(v))
	for _, err := range v {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual errors to errors.Is/As.
func (v ValidationErrors) Unwrap() []error { return v }

// Validate checks the constraints the CUE schema cannot express and returns
// every violation found. A nil slice means the descriptor is valid.
func (b *Buildfile) Validate() ValidationErrors {
	var errs ValidationErrors

	if err := b.Name.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := b.Base.Image.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := b.Workdir.Validate(); err != nil {
		errs = append(errs, err)
	}

	if b.System != nil {
		if err := b.System.Manager.Validate(); err != nil {
			errs = append(errs, err)
		}
		if len(b.System.Packages) == 0 {
			errs = append(errs, fmt.Errorf("system.packages must not be empty when a system stage is declared"))
		}
		for i, pkg := range b.System.Packages {
			if err := pkg.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("system.packages[%d]: %w", i, err))
			}
		}
	}

	if b.App != nil {
		if err := b.App.Installer.Validate(); err != nil {
			errs = append(errs, err)
		}
		if b.App.Installer == InstallerScript && b.App.Script == "" {
			errs = append(errs, fmt.Errorf("app.script is required when app.installer is %q", InstallerScript))
		}
		if b.App.Installer != InstallerScript && b.App.Script != "" {
			errs = append(errs, fmt.Errorf("app.script is only allowed when app.installer is %q", InstallerScript))
		}
		if err := b.App.Script.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("app.script: %w", err))
		}
	}

	for i, extra := range b.Extras {
		if err := extra.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("extras[%d]: %w", i, err))
		}
	}

	for key := range b.Labels {
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Errorf("labels: keys must be non-empty"))
		}
	}

	return errs
}
