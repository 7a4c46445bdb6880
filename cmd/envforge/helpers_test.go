// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"envforge/internal/issue"
)

// captureIssueOut redirects rendered issue pages into a buffer for the
// duration of a test. Tests using it must not run in parallel.
func captureIssueOut(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	issueOut = &buf
	t.Cleanup(func() { issueOut = os.Stderr })
	return &buf
}

func TestLoadDescriptor_MissingFileShowsHelpPage(t *testing.T) {
	buf := captureIssueOut(t)

	_, err := loadDescriptor(filepath.Join(t.TempDir(), "envforge.cue"))
	if err == nil {
		t.Fatal("expected an error for a missing descriptor")
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error %T should be actionable", err)
	}
	if buf.Len() == 0 {
		t.Error("a missing descriptor should render its help page")
	}
}

func TestLoadDescriptor_ParseErrorShowsHelpPage(t *testing.T) {
	buf := captureIssueOut(t)

	path := filepath.Join(t.TempDir(), "envforge.cue")
	if err := os.WriteFile(path, []byte(`name: "broken" base: {`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := loadDescriptor(path)
	if err == nil {
		t.Fatal("expected an error for a malformed descriptor")
	}
	if buf.Len() == 0 {
		t.Error("a malformed descriptor should render its help page")
	}
}

func TestPrintIssue_RendersCatalogPage(t *testing.T) {
	buf := captureIssueOut(t)

	printIssue(issue.ContainerEngineNotFoundId)
	if buf.Len() == 0 {
		t.Fatal("expected a rendered page for a known issue id")
	}

	buf.Reset()
	printIssue(issue.Id(9999))
	if buf.Len() != 0 {
		t.Error("unknown issue ids should render nothing")
	}
}
