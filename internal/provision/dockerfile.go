// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"strings"
)

// dockerfileHeader marks generated Dockerfiles. It carries no varying
// data so rendering stays deterministic.
const dockerfileHeader = "# Generated by envforge from a build descriptor. Do not edit."

// RenderDockerfile renders the plan into Dockerfile content. The output
// is a pure function of the plan: the same descriptor always renders to
// the same bytes, which is what makes content-addressed caching work.
func RenderDockerfile(p *Plan) string {
	var sb strings.Builder

	sb.WriteString(dockerfileHeader)
	sb.WriteString("\n")

	for _, stage := range p.Stages {
		sb.WriteString("\n# stage: ")
		sb.WriteString(string(stage.Kind))
		sb.WriteString("\n")
		for _, line := range stage.Lines {
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
