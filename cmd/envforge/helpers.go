// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"os"

	"envforge/internal/config"
	"envforge/internal/container"
	"envforge/internal/issue"
	"envforge/internal/provision"
	"envforge/pkg/buildfile"
)

// issueOut receives rendered issue catalog pages. Swapped in tests.
var issueOut io.Writer = os.Stderr

// printIssue writes the rendered catalog page for id to issueOut. The page
// supplements the returned error; rendering problems are dropped.
func printIssue(id issue.Id) {
	page := issue.Get(id)
	if page == nil {
		return
	}
	if rendered, err := page.Render("dark"); err == nil {
		fmt.Fprint(issueOut, rendered)
	}
}

// loadDescriptor loads and validates the build descriptor at path,
// defaulting to ./envforge.cue.
func loadDescriptor(path string) (*buildfile.Buildfile, error) {
	if path == "" {
		path = buildfile.DefaultFileName
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		printIssue(issue.BuildfileNotFoundId)
		return nil, issue.NewErrorContext().
			WithOperation("load build descriptor").
			WithResource(path).
			WithSuggestion("Run 'envforge init' to scaffold a descriptor").
			WithSuggestion("Or point at one with 'envforge build -f path/to/envforge.cue'").
			Wrap(fmt.Errorf("descriptor not found: %s", path)).
			BuildError()
	}

	bf, err := buildfile.Parse(path)
	if err != nil {
		printIssue(issue.BuildfileParseErrorId)
		return nil, issue.NewErrorContext().
			WithOperation("parse build descriptor").
			WithResource(path).
			WithSuggestion("Run 'envforge validate' for the full list of problems").
			WithSuggestion("Check field names and values against 'envforge init' output").
			Wrap(err).
			BuildError()
	}

	return bf, nil
}

// effectiveConfig returns the loaded configuration, falling back to
// defaults when command setup has not run (tests call RunE directly).
func effectiveConfig() *config.Config {
	if loadedCfg != nil {
		return loadedCfg
	}
	return config.DefaultConfig()
}

// newEngine creates the configured container engine.
func newEngine(cfg *config.Config) (container.Engine, error) {
	engineType, err := container.ParseEngineType(cfg.ContainerEngine)
	if err != nil {
		return nil, err
	}

	engine, err := container.NewEngine(engineType)
	if err != nil {
		printIssue(issue.ContainerEngineNotFoundId)
		return nil, issue.NewErrorContext().
			WithOperation("find container engine").
			WithSuggestion("Install Docker (https://docs.docker.com/get-docker/) or Podman (https://podman.io)").
			WithSuggestion("If one is installed, check its daemon/service is running").
			WithSuggestion("Set container_engine in ~/.config/envforge/config.cue to pick one explicitly").
			Wrap(err).
			BuildError()
	}
	return engine, nil
}

// newProvisionConfig derives the provisioner configuration from the
// resolved app config and build flags.
func newProvisionConfig(cfg *config.Config, opts ...provision.Option) *provision.Config {
	pc := provision.DefaultConfig()
	if cfg.CacheDir != "" {
		pc.Apply(provision.WithCacheDir(cfg.CacheDir))
	}
	pc.Apply(opts...)
	return pc
}
