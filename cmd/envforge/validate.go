// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	validateFile string

	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate a build descriptor without building",
		Long: `Check a build descriptor for schema and semantic problems.

All violations are reported at once, not just the first, so a broken
descriptor can be fixed in one pass.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}
)

func init() {
	validateCmd.Flags().StringVarP(&validateFile, "file", "f", "", "path to the build descriptor (default ./envforge.cue)")
}

func runValidate(_ *cobra.Command, _ []string) error {
	bf, err := loadDescriptor(validateFile)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	fmt.Println(SuccessStyle.Render("✓ ") + "Descriptor is valid: " + CmdStyle.Render(bf.Name.String()))

	if !bf.Base.Image.IsPinned() {
		fmt.Println(WarningStyle.Render("! ") +
			fmt.Sprintf("base image %q is not pinned; consider an explicit version tag", bf.Base.Image))
	}

	return nil
}
