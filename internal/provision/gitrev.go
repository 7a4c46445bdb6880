// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"github.com/go-git/go-git/v5"
)

// SourceRevision returns the HEAD commit hash of the git repository
// containing dir, or "" when dir is not inside a repository. The
// revision is informational (image label, manifest); a missing
// repository is not an error.
func SourceRevision(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return ""
	}

	head, err := repo.Head()
	if err != nil {
		return ""
	}

	return head.Hash().String()
}
