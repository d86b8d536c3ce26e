// Package git exposes repository operations as tools: status, diff, staging
// and commit, all through go-git rather than the git binary so they work
// without git on PATH and stay inside the workspace.
package git

import (
	"errors"
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"

	"crucible/internal/tool/pathutil"
)

// ErrNotARepository is returned when the workspace root is not inside a git
// repository.
var ErrNotARepository = errors.New("workspace is not a git repository")

// ErrEmptyCommitMessage rejects commits without a message.
var ErrEmptyCommitMessage = errors.New("commit message cannot be empty")

// openRepo opens the repository containing the workspace root. The .git
// directory may live above the root when the agent works in a subdirectory.
func openRepo(resolver *pathutil.Resolver) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(resolver.Root(), &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, ErrNotARepository
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

// changedPaths returns the paths in the status with any staged or worktree
// change, sorted for stable output.
func changedPaths(status gogit.Status) []string {
	var paths []string
	for path, fs := range status {
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
