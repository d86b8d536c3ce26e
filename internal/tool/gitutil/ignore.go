// Package gitutil wraps the go-git primitives shared by the directory,
// search, and git tools: gitignore matching and repository access.
package gitutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// IgnoreReadError is returned when .gitignore exists but cannot be read.
type IgnoreReadError struct {
	Path  string
	Cause error
}

func (e *IgnoreReadError) Error() string {
	return fmt.Sprintf("failed to read .gitignore at %s: %v", e.Path, e.Cause)
}
func (e *IgnoreReadError) Unwrap() error { return e.Cause }

// Ignore matches workspace-relative paths against the root .gitignore. The
// .git directory itself is always ignored.
type Ignore struct {
	matcher gitignore.Matcher
}

// NewIgnore loads .gitignore from the workspace root. A missing file yields
// a matcher that only hides .git.
func NewIgnore(workspaceRoot string) (*Ignore, error) {
	gitignorePath := filepath.Join(workspaceRoot, ".gitignore")

	content, err := os.ReadFile(gitignorePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Ignore{}, nil
		}
		return nil, &IgnoreReadError{Path: gitignorePath, Cause: err}
	}

	var patterns []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if pattern := gitignore.ParsePattern(line, nil); pattern != nil {
			patterns = append(patterns, pattern)
		}
	}

	return &Ignore{matcher: gitignore.NewMatcher(patterns)}, nil
}

// Match reports whether a workspace-relative path is ignored.
func (g *Ignore) Match(relativePath string, isDir bool) bool {
	segments := splitPath(relativePath)
	if len(segments) > 0 && segments[0] == ".git" {
		return true
	}
	if g.matcher == nil {
		return false
	}
	return g.matcher.Match(segments, isDir)
}

// splitPath splits a path into segments for gitignore matching, dropping
// empty and "." segments.
func splitPath(path string) []string {
	normalized := filepath.ToSlash(path)
	parts := strings.Split(normalized, "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}
	return segments
}
