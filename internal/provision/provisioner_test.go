// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"envforge/internal/container"
	"envforge/pkg/buildfile"
)

// mockEngine is a recording container.Engine for provisioner tests.
type mockEngine struct {
	existing  map[container.ImageTag]bool
	buildErr  error
	runErr    error
	runResult *container.RunResult

	builds  []container.BuildOptions
	runs    []container.RunOptions
	removed []container.ImageTag
	listed  []container.ImageTag
}

func newMockEngine() *mockEngine {
	return &mockEngine{existing: make(map[container.ImageTag]bool)}
}

func (m *mockEngine) Name() string                            { return "mock" }
func (m *mockEngine) Available() bool                         { return true }
func (m *mockEngine) Version(context.Context) (string, error) { return "0.0.0-test", nil }

func (m *mockEngine) Run(_ context.Context, opts container.RunOptions) (*container.RunResult, error) {
	m.runs = append(m.runs, opts)
	if m.runErr != nil {
		return nil, m.runErr
	}
	if m.runResult != nil {
		return m.runResult, nil
	}
	return &container.RunResult{}, nil
}

func (m *mockEngine) Build(_ context.Context, opts container.BuildOptions) error {
	m.builds = append(m.builds, opts)
	if m.buildErr != nil {
		return m.buildErr
	}
	m.existing[opts.Tag] = true
	return nil
}

func (m *mockEngine) ImageExists(_ context.Context, image container.ImageTag) (bool, error) {
	return m.existing[image], nil
}

func (m *mockEngine) ListImages(context.Context, string) ([]container.ImageTag, error) {
	return m.listed, nil
}

func (m *mockEngine) RemoveImage(_ context.Context, image container.ImageTag, _ bool) error {
	m.removed = append(m.removed, image)
	delete(m.existing, image)
	return nil
}

// provisionFixture stages a descriptor with a tiny source tree and
// returns a provisioner pointed at a per-test cache dir.
func provisionFixture(t *testing.T, engine container.Engine) (*ImageProvisioner, *buildfile.Buildfile) {
	t.Helper()

	srcDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(srcDir, "setup.py"), []byte("from setuptools import setup\nsetup()\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	bf := testBuildfile()
	bf.FilePath = filepath.Join(srcDir, buildfile.DefaultFileName)

	cfg := DefaultConfig()
	cfg.Apply(WithCacheDir(t.TempDir()))

	return NewImageProvisioner(engine, cfg), bf
}

func TestProvision_BuildsAndTagsByContent(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	result, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatalf("Provision() error = %v", err)
	}
	t.Cleanup(result.Cleanup)

	if result.CacheHit {
		t.Error("first build should not be a cache hit")
	}
	if len(engine.builds) != 1 {
		t.Fatalf("engine built %d times, want 1", len(engine.builds))
	}

	tag := result.ImageTag.String()
	if !strings.HasPrefix(tag, "sheep-env:") {
		t.Errorf("tag = %q, want sheep-env:<hash> format", tag)
	}
	if hash := strings.TrimPrefix(tag, "sheep-env:"); len(hash) != 12 {
		t.Errorf("tag hash %q should be 12 characters", hash)
	}
}

func TestProvision_SecondBuildIsCacheHit(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	first, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(first.Cleanup)

	second, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatal(err)
	}

	if !second.CacheHit {
		t.Error("unchanged inputs should be a cache hit")
	}
	if second.ImageTag != first.ImageTag {
		t.Errorf("tags differ across identical builds: %s vs %s", first.ImageTag, second.ImageTag)
	}
	if len(engine.builds) != 1 {
		t.Errorf("engine built %d times, want 1", len(engine.builds))
	}
}

func TestProvision_ForceRebuildBypassesCache(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)
	p.Config().Apply(WithForceRebuild(true))

	for range 2 {
		result, err := p.Provision(context.Background(), bf)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(result.Cleanup)
		if result.CacheHit {
			t.Error("force rebuild must never report a cache hit")
		}
	}

	if len(engine.builds) != 2 {
		t.Errorf("engine built %d times, want 2", len(engine.builds))
	}
}

func TestProvision_SourceChangeChangesTag(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	before, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}

	srcDir := filepath.Dir(bf.FilePath)
	if err := os.WriteFile(filepath.Join(srcDir, "setup.py"), []byte("from setuptools import setup\nsetup(name='changed')\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	after, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}

	if before == after {
		t.Error("editing the source tree should change the image tag")
	}
}

func TestProvision_DescriptorChangeChangesTag(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	before, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}

	bf.System.Packages = append(bf.System.Packages, "ffmpeg")

	after, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}

	if before == after {
		t.Error("adding an OS package should change the image tag")
	}
}

func TestProvision_FailedBuildWritesNoManifest(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	engine.buildErr = errors.New("exit status 100")
	p, bf := provisionFixture(t, engine)

	_, err := p.Provision(context.Background(), bf)
	if err == nil {
		t.Fatal("expected build failure")
	}

	manifests, _ := os.ReadDir(filepath.Join(p.Config().CacheDir, "manifests"))
	if len(manifests) != 0 {
		t.Errorf("failed build left %d manifest(s) behind", len(manifests))
	}
}

func TestProvision_StampsManagedLabels(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	result, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(result.Cleanup)

	labels := engine.builds[0].Labels
	if labels[LabelManaged] != "true" {
		t.Errorf("missing %s=true label", LabelManaged)
	}
	if labels[LabelName] != "sheep-env" {
		t.Errorf("%s = %q, want sheep-env", LabelName, labels[LabelName])
	}
}

func TestProvision_WritesManifest(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	result, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(result.Cleanup)

	if result.ManifestPath == "" {
		t.Fatal("successful build should record a manifest")
	}

	m, err := ReadManifest(result.ManifestPath)
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if m.Image != result.ImageTag.String() {
		t.Errorf("manifest image = %q, want %q", m.Image, result.ImageTag)
	}
	if m.BuildID == "" {
		t.Error("manifest should carry a build id")
	}
	wantStages := []string{"base", "system", "app", "extras"}
	if len(m.Stages) != len(wantStages) {
		t.Fatalf("manifest stages = %v, want %v", m.Stages, wantStages)
	}
	for i, s := range wantStages {
		if m.Stages[i] != s {
			t.Errorf("manifest stages[%d] = %q, want %q", i, m.Stages[i], s)
		}
	}
}

func TestProvision_TagSuffixIsolation(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)
	p.Config().Apply(WithTagSuffix("t1"))

	tag, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(tag.String(), "-t1") {
		t.Errorf("tag = %q, want -t1 suffix", tag)
	}
}

func TestProvision_StagesBuildContext(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	result, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatal(err)
	}

	ctxDir := engine.builds[0].ContextDir
	if _, err := os.Stat(filepath.Join(ctxDir, "Dockerfile")); err != nil {
		t.Errorf("build context missing Dockerfile: %v", err)
	}
	if _, err := os.Stat(filepath.Join(ctxDir, "src", "setup.py")); err != nil {
		t.Errorf("build context missing copied source: %v", err)
	}

	result.Cleanup()
	if _, err := os.Stat(ctxDir); !os.IsNotExist(err) {
		t.Error("Cleanup() should remove the staged build context")
	}
}

func TestCheck_RunsCommandInBuiltImage(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	result, err := p.Provision(context.Background(), bf)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(result.Cleanup)

	command := []string{"python", "-c", "import dm_control"}
	if err := p.Check(context.Background(), result.ImageTag, command); err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if len(engine.runs) != 1 {
		t.Fatalf("engine ran %d containers, want 1", len(engine.runs))
	}
	run := engine.runs[0]
	if run.Image != result.ImageTag {
		t.Errorf("check ran in %s, want %s", run.Image, result.ImageTag)
	}
	if !reflect.DeepEqual(run.Command, command) {
		t.Errorf("check command = %v, want %v", run.Command, command)
	}
	if !run.Remove {
		t.Error("check containers should be removed after the run")
	}
}

func TestCheck_NonZeroExitFails(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	engine.runResult = &container.RunResult{ExitCode: 1}
	p, bf := provisionFixture(t, engine)

	tag, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}

	err = p.Check(context.Background(), tag, []string{"python", "-c", "import dm_control"})
	if err == nil {
		t.Fatal("a failing check command should be an error")
	}
	if !strings.Contains(err.Error(), "status 1") {
		t.Errorf("error %q should carry the exit status", err)
	}
}

func TestCheck_EmptyCommandRejected(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	p, bf := provisionFixture(t, engine)

	tag, err := p.ImageTagFor(bf)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Check(context.Background(), tag, nil); err == nil {
		t.Error("empty check command should be rejected")
	}
	if len(engine.runs) != 0 {
		t.Error("no container should run for an empty check command")
	}
}

func TestCleaner_RemovesManagedImages(t *testing.T) {
	t.Parallel()

	engine := newMockEngine()
	engine.listed = []container.ImageTag{"sheep-env:abc123def456", "sheep-env:fedcba654321"}
	for _, tag := range engine.listed {
		engine.existing[tag] = true
	}

	cfg := DefaultConfig()
	cfg.Apply(WithCacheDir(t.TempDir()))
	cleaner := NewCleaner(engine, cfg)

	removed, err := cleaner.Clean(context.Background(), "sheep-env", false)
	if err != nil {
		t.Fatalf("Clean() error = %v", err)
	}
	if len(removed) != 2 {
		t.Errorf("removed %d images, want 2", len(removed))
	}
	if len(engine.existing) != 0 {
		t.Errorf("%d images survived cleanup", len(engine.existing))
	}
}
