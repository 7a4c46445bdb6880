// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "render dockerfile"},
			want: "failed to render dockerfile",
		},
		{
			name: "operation and resource",
			err: &ActionableError{
				Operation: "load build descriptor",
				Resource:  "./envforge.cue",
			},
			want: "failed to load build descriptor: ./envforge.cue",
		},
		{
			name: "full",
			err: &ActionableError{
				Operation: "build image",
				Resource:  "sheep-env:abc123",
				Cause:     errors.New("exit status 100"),
			},
			want: "failed to build image: sheep-env:abc123: exit status 100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := WrapWithOperation(cause, "build image")

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("build image").
		WithResource("sheep-env:abc123").
		WithSuggestion("Check the failing step in the build output").
		WithSuggestion("Run with --verbose for full engine output").
		Wrap(errors.New("exit status 100")).
		Build()

	short := err.Format(false)
	if !strings.Contains(short, "• Check the failing step") {
		t.Error("Format(false) should include suggestions")
	}
	if strings.Contains(short, "Error chain:") {
		t.Error("Format(false) should not include the error chain")
	}

	long := err.Format(true)
	if !strings.Contains(long, "Error chain:") {
		t.Error("Format(true) should include the error chain")
	}
	if !strings.Contains(long, "1. exit status 100") {
		t.Error("Format(true) should enumerate the chain")
	}
}

func TestErrorContext_BuildRequiresOperation(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestWrapWithContext_NilError(t *testing.T) {
	t.Parallel()

	if got := WrapWithContext(nil, "op", "res"); got != nil {
		t.Errorf("WrapWithContext(nil) = %v, want nil", got)
	}
	if got := WrapWithOperation(nil, "op"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}
}

func TestHasSuggestions(t *testing.T) {
	t.Parallel()

	plain := NewActionableError("build image")
	if plain.HasSuggestions() {
		t.Error("HasSuggestions() = true for error without suggestions")
	}

	withSugs := NewErrorContext().
		WithOperation("build image").
		WithSuggestions("a", "b").
		Build()
	if !withSugs.HasSuggestions() {
		t.Error("HasSuggestions() = false for error with suggestions")
	}
}
