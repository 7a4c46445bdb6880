// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"envforge/internal/issue"
	"envforge/internal/provision"
)

var (
	buildFile         string
	buildForceRebuild bool
	buildNoCache      bool
	buildPull         bool
	buildCheck        string

	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build the image for a build descriptor",
		Long: `Build a container image from a build descriptor (envforge.cue).

The descriptor is rendered into a Dockerfile and built through the
configured container engine. Images are tagged by a content hash of the
descriptor and the application source, so rebuilding unchanged inputs is
a cache hit and runs no build at all.

The build pipeline is sequential and fail-fast: base image and
environment first, then OS packages in a single step, then the
application install, then extra packages one step each. The first
failing step aborts the build and no image is tagged.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildFile, "file", "f", "", "path to the build descriptor (default ./envforge.cue)")
	buildCmd.Flags().BoolVar(&buildForceRebuild, "force-rebuild", false, "ignore the image cache and rebuild")
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "also disable the engine's layer cache")
	buildCmd.Flags().BoolVar(&buildPull, "pull", false, "always attempt to pull a newer base image")
	buildCmd.Flags().StringVar(&buildCheck, "check", "", "command to run inside the built image (via sh -c) to verify it")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	bf, err := loadDescriptor(buildFile)
	if err != nil {
		return err
	}

	if !bf.Base.Image.IsPinned() {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+
			fmt.Sprintf("base image %q is not pinned to a version; builds may not be reproducible", bf.Base.Image))
	}

	cfg := effectiveConfig()
	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	log.Debug("using container engine", "engine", engine.Name())

	pc := newProvisionConfig(cfg,
		provision.WithForceRebuild(buildForceRebuild),
		provision.WithNoCache(buildNoCache),
		provision.WithPull(buildPull),
	)

	provisioner := provision.NewImageProvisioner(engine, pc)

	result, err := provisioner.Provision(cmd.Context(), bf)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ ")+"Build failed")
		printIssue(issue.StageFailedId)
		return &ExitError{Code: 1, Err: err}
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	if result.CacheHit {
		log.Info("image up to date", "image", result.ImageTag)
		fmt.Println(SuccessStyle.Render("✓ ") + "Image up to date: " + CmdStyle.Render(result.ImageTag.String()))
	} else {
		log.Info("image built", "image", result.ImageTag, "manifest", result.ManifestPath)
		fmt.Println(SuccessStyle.Render("✓ ") + "Built " + CmdStyle.Render(result.ImageTag.String()))
	}

	if buildCheck != "" {
		if verbose {
			fmt.Println(VerboseStyle.Render("running check: " + buildCheck))
		}
		if err := provisioner.Check(cmd.Context(), result.ImageTag, []string{"/bin/sh", "-c", buildCheck}); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ ")+"Image check failed")
			return &ExitError{Code: 1, Err: err}
		}
		fmt.Println(SuccessStyle.Render("✓ ") + "Check passed")
	}

	return nil
}
