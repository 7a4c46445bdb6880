// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"strings"
	"testing"
)

func TestRenderDockerfile_Deterministic(t *testing.T) {
	t.Parallel()

	// Render twice from independently constructed descriptors: map
	// iteration order must not leak into the output.
	a := RenderDockerfile(NewPlan(testBuildfile()))
	for range 20 {
		b := RenderDockerfile(NewPlan(testBuildfile()))
		if a != b {
			t.Fatalf("render is not deterministic:\n--- first ---\n%s\n--- second ---\n%s", a, b)
		}
	}
}

func TestRenderDockerfile_FullPipeline(t *testing.T) {
	t.Parallel()

	out := RenderDockerfile(NewPlan(testBuildfile()))

	want := `# Generated by envforge from a build descriptor. Do not edit.

# stage: base
FROM python:3.10
ENV PYTHONDONTWRITEBYTECODE="1"
ENV PYTHONUNBUFFERED="1"

# stage: system
RUN apt-get update \
    && apt-get install -y --no-install-recommends \
        git \
        build-essential \
        libglfw3 \
        libglew-dev \
        libgl1-mesa-glx \
        libosmesa6 \
        wget \
    && rm -rf /var/lib/apt/lists/*

# stage: app
WORKDIR /app
COPY src/ /app/
RUN pip install --no-cache-dir .

# stage: extras
RUN pip install --no-cache-dir 'dm_control'
`
	if out != want {
		t.Errorf("rendered Dockerfile mismatch:\n--- got ---\n%s\n--- want ---\n%s", out, want)
	}
}

func TestRenderDockerfile_StagesInOrder(t *testing.T) {
	t.Parallel()

	out := RenderDockerfile(NewPlan(testBuildfile()))

	// The FROM instruction comes first; environment configuration
	// precedes package installs, which precede the app install.
	idxFrom := strings.Index(out, "FROM ")
	idxEnv := strings.Index(out, "ENV ")
	idxApt := strings.Index(out, "apt-get")
	idxCopy := strings.Index(out, "COPY ")
	idxExtra := strings.Index(out, "dm_control")

	if !(idxFrom < idxEnv && idxEnv < idxApt && idxApt < idxCopy && idxCopy < idxExtra) {
		t.Errorf("stages out of order:\n%s", out)
	}
}

func TestRenderDockerfile_ExtrasIndependentOfEarlierStages(t *testing.T) {
	t.Parallel()

	withExtras := RenderDockerfile(NewPlan(testBuildfile()))

	bf := testBuildfile()
	bf.Extras = nil
	withoutExtras := RenderDockerfile(NewPlan(bf))

	// Dropping extras must not touch a single byte of the base, system,
	// or app stages.
	if !strings.HasPrefix(withExtras, withoutExtras) {
		t.Errorf("removing extras changed earlier stages:\n--- with ---\n%s\n--- without ---\n%s", withExtras, withoutExtras)
	}
}

func TestRenderDockerfile_Labels(t *testing.T) {
	t.Parallel()

	bf := testBuildfile()
	bf.Labels = map[string]string{
		"org.opencontainers.image.title": "sheep-env",
		"maintainer":                     "rl-team",
	}

	out := RenderDockerfile(NewPlan(bf))
	idxMaint := strings.Index(out, `LABEL maintainer="rl-team"`)
	idxTitle := strings.Index(out, `LABEL org.opencontainers.image.title="sheep-env"`)
	if idxMaint == -1 || idxTitle == -1 {
		t.Fatalf("labels missing:\n%s", out)
	}
	if idxMaint > idxTitle {
		t.Error("labels should render in sorted key order")
	}
}
