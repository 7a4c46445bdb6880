// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"fmt"
	"sort"
	"strings"

	"envforge/pkg/buildfile"
)

// StageKind identifies one of the fixed build pipeline stages.
type StageKind string

const (
	// StageBase sets the base image and environment variables.
	StageBase StageKind = "base"
	// StageSystem installs OS packages in a single fail-fast step.
	StageSystem StageKind = "system"
	// StageApp copies and installs the application source.
	StageApp StageKind = "app"
	// StageExtras installs additional packages, one step per package.
	StageExtras StageKind = "extras"
)

type (
	// Stage is one rendered pipeline stage: its kind plus the Dockerfile
	// instructions that implement it.
	Stage struct {
		Kind  StageKind
		Lines []string
	}

	// Plan is the ordered sequence of stages for a descriptor. Stage order
	// is fixed (base, system, app, extras); stages a descriptor does not
	// declare are absent rather than empty.
	Plan struct {
		Name   buildfile.ProjectName
		Stages []Stage
	}
)

// sourceDirName is the directory inside the build context that holds the
// copied application source. Keeping it fixed makes the rendered COPY
// instruction independent of where the source lives on the host.
const sourceDirName = "src"

// NewPlan computes the stage plan for a descriptor. The descriptor is
// expected to be validated already; NewPlan only arranges it.
func NewPlan(bf *buildfile.Buildfile) *Plan {
	p := &Plan{Name: bf.Name}

	p.Stages = append(p.Stages, baseStage(bf))

	if bf.HasSystem() {
		p.Stages = append(p.Stages, systemStage(bf.System))
	}

	if bf.HasApp() {
		p.Stages = append(p.Stages, appStage(bf))
	}

	if len(bf.Extras) > 0 {
		p.Stages = append(p.Stages, extrasStage(bf.Extras))
	}

	return p
}

// Kinds returns the stage kinds in execution order.
func (p *Plan) Kinds() []StageKind {
	kinds := make([]StageKind, len(p.Stages))
	for i, s := range p.Stages {
		kinds[i] = s.Kind
	}
	return kinds
}

// Stage returns the stage of the given kind, or nil if the plan has none.
func (p *Plan) Stage(kind StageKind) *Stage {
	for i := range p.Stages {
		if p.Stages[i].Kind == kind {
			return &p.Stages[i]
		}
	}
	return nil
}

// --- Stage rendering ---

func baseStage(bf *buildfile.Buildfile) Stage {
	lines := []string{fmt.Sprintf("FROM %s", bf.Base.Image)}

	// Sorted so the same descriptor always renders the same bytes.
	for _, k := range sortedKeys(bf.Base.Env) {
		lines = append(lines, fmt.Sprintf("ENV %s=%q", k, bf.Base.Env[k]))
	}

	for _, k := range sortedKeys(bf.Labels) {
		lines = append(lines, fmt.Sprintf("LABEL %s=%q", k, bf.Labels[k]))
	}

	return Stage{Kind: StageBase, Lines: lines}
}

// systemStage renders OS package installation as one RUN instruction.
// A single instruction means a single failure domain: the first package
// manager error aborts the whole stage and nothing is committed.
func systemStage(sys *buildfile.SystemSpec) Stage {
	var sb strings.Builder

	switch sys.Manager {
	case buildfile.ManagerApk:
		sb.WriteString("RUN apk add --no-cache")
		for _, pkg := range sys.Packages {
			sb.WriteString(" \\\n        ")
			sb.WriteString(pkg.String())
		}
	default: // apt
		sb.WriteString("RUN apt-get update \\\n")
		sb.WriteString("    && apt-get install -y --no-install-recommends")
		for _, pkg := range sys.Packages {
			sb.WriteString(" \\\n        ")
			sb.WriteString(pkg.String())
		}
		sb.WriteString(" \\\n    && rm -rf /var/lib/apt/lists/*")
	}

	return Stage{Kind: StageSystem, Lines: []string{sb.String()}}
}

func appStage(bf *buildfile.Buildfile) Stage {
	lines := []string{
		fmt.Sprintf("WORKDIR %s", bf.Workdir),
		fmt.Sprintf("COPY %s/ %s/", sourceDirName, bf.Workdir),
	}

	switch bf.App.Installer {
	case buildfile.InstallerPipEditable:
		lines = append(lines, "RUN pip install --no-cache-dir -e .")
	case buildfile.InstallerScript:
		lines = append(lines, renderScript(bf.App.Script))
	default: // pip
		lines = append(lines, "RUN pip install --no-cache-dir .")
	}

	return Stage{Kind: StageApp, Lines: lines}
}

// extrasStage gives every extra package its own RUN instruction so each
// install is an independent layer: one failing extra does not invalidate
// the layers of the ones before it. Requests are always quoted: extras
// like "gymnasium[atari]" would otherwise be glob patterns to the shell.
func extrasStage(extras []buildfile.PackageSpec) Stage {
	lines := make([]string, 0, len(extras))
	for _, pkg := range extras {
		if v := pkg.Version(); v != "" {
			lines = append(lines, fmt.Sprintf("RUN pip install --no-cache-dir '%s==%s'", pkg.Name(), v))
		} else {
			lines = append(lines, fmt.Sprintf("RUN pip install --no-cache-dir '%s'", pkg.Name()))
		}
	}
	return Stage{Kind: StageExtras, Lines: lines}
}

// renderScript turns a multi-line install script into a single RUN
// instruction. Lines are chained with && so the stage stops at the first
// failing command; lines that already end in a shell operator keep it.
func renderScript(script buildfile.ScriptSource) string {
	scriptLines := strings.Split(strings.TrimSpace(script.String()), "\n")
	var sb strings.Builder
	sb.WriteString("RUN ")
	for i, l := range scriptLines {
		l = strings.TrimRight(l, " \t")
		if i > 0 {
			sb.WriteString(" \\\n    ")
		}
		sb.WriteString(l)
		if i < len(scriptLines)-1 && !endsWithOperator(l) {
			sb.WriteString(" &&")
		}
	}
	return sb.String()
}

func endsWithOperator(line string) bool {
	for _, op := range []string{"&&", "||", ";", "|", "\\"} {
		if strings.HasSuffix(line, op) {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
