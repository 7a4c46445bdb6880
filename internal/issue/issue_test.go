// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestId_Constants(t *testing.T) {
	ids := []Id{
		BuildfileNotFoundId,
		BuildfileParseErrorId,
		ContainerEngineNotFoundId,
		BaseImagePullFailedId,
		StageFailedId,
		ConfigLoadFailedId,
		PermissionDeniedId,
	}

	seen := make(map[Id]bool)
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	if BuildfileNotFoundId != 1 {
		t.Errorf("BuildfileNotFoundId = %d, want 1", BuildfileNotFoundId)
	}
}

func TestGet_AllIdsRegistered(t *testing.T) {
	for id := BuildfileNotFoundId; id <= PermissionDeniedId; id++ {
		issue := Get(id)
		if issue == nil {
			t.Errorf("Get(%d) returned nil", id)
			continue
		}
		if issue.Id() != id {
			t.Errorf("issue.Id() = %d, want %d", issue.Id(), id)
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("issue %d has empty markdown message", id)
		}
	}
}

func TestIssue_MarkdownMsg(t *testing.T) {
	issue := Get(StageFailedId)
	if issue == nil {
		t.Fatal("Get(StageFailedId) returned nil")
	}

	msg := string(issue.MarkdownMsg())
	if !strings.Contains(msg, "build stage failed") {
		t.Error("MarkdownMsg() should describe the failing stage")
	}
	if !strings.Contains(msg, "no image was tagged") {
		t.Error("MarkdownMsg() should state that failed builds tag nothing")
	}
}

func TestValues_ReturnsAllIssues(t *testing.T) {
	values := Values()
	if len(values) != len(issues) {
		t.Errorf("Values() returned %d issues, want %d", len(values), len(issues))
	}
}

func TestIssue_Render(t *testing.T) {
	// Swap the renderer so the test does not depend on terminal styling.
	original := render
	defer func() { render = original }()

	var captured string
	render = func(in string, stylePath string) (string, error) {
		captured = in
		return in, nil
	}

	issue := Get(BuildfileNotFoundId)
	out, err := issue.Render("auto")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out == "" {
		t.Error("Render() returned empty output")
	}
	if !strings.Contains(captured, "envforge init") {
		t.Error("rendered markdown should mention 'envforge init'")
	}
}
