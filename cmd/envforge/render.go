// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"envforge/internal/provision"
)

var (
	renderFile string

	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render the Dockerfile for a build descriptor",
		Long: `Render a build descriptor into its Dockerfile without building.

Rendering is deterministic: the same descriptor always prints the same
bytes. The output goes to stdout and can be piped straight into a
container engine.`,
		Args: cobra.NoArgs,
		RunE: runRender,
	}
)

func init() {
	renderCmd.Flags().StringVarP(&renderFile, "file", "f", "", "path to the build descriptor (default ./envforge.cue)")
}

func runRender(_ *cobra.Command, _ []string) error {
	bf, err := loadDescriptor(renderFile)
	if err != nil {
		return err
	}

	fmt.Print(provision.RenderDockerfile(provision.NewPlan(bf)))
	return nil
}
