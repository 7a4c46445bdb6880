// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"envforge/internal/provision"
	"envforge/pkg/buildfile"
)

var (
	cleanFile  string
	cleanAll   bool
	cleanForce bool

	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove built images",
		Long: `Remove images built from the current descriptor.

With --all, every image envforge has ever built on this machine is
removed instead, regardless of descriptor.`,
		Args: cobra.NoArgs,
		RunE: runClean,
	}
)

func init() {
	cleanCmd.Flags().StringVarP(&cleanFile, "file", "f", "", "path to the build descriptor (default ./envforge.cue)")
	cleanCmd.Flags().BoolVar(&cleanAll, "all", false, "remove all envforge-built images, not just this descriptor's")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "force removal of images in use")
}

func runClean(cmd *cobra.Command, _ []string) error {
	var name buildfile.ProjectName
	if !cleanAll {
		bf, err := loadDescriptor(cleanFile)
		if err != nil {
			return err
		}
		name = bf.Name
	}

	cfg := effectiveConfig()
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	cleaner := provision.NewCleaner(engine, newProvisionConfig(cfg))

	removed, err := cleaner.Clean(cmd.Context(), name, cleanForce)
	for _, tag := range removed {
		fmt.Println(SuccessStyle.Render("✓ ") + "Removed " + CmdStyle.Render(tag.String()))
	}
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}

	if len(removed) == 0 {
		fmt.Println(SubtitleStyle.Render("Nothing to remove."))
	}
	return nil
}
