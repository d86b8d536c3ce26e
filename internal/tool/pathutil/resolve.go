// Package pathutil implements the path safety guard: every filesystem-scoped
// tool argument passes through a Resolver before any tool touches disk.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolver validates paths against a canonical project root.
type Resolver struct {
	root string
}

// NewResolver creates a path resolver for the given canonical root.
// The root must already be canonicalized via CanonicaliseRoot.
func NewResolver(root string) *Resolver {
	return &Resolver{root: root}
}

// Root returns the canonical project root.
func (r *Resolver) Root() string { return r.root }

// CanonicaliseRoot canonicalises a project root by making it absolute and
// resolving symlinks. Returns an error if the path doesn't exist or isn't a
// directory.
func CanonicaliseRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", &RootError{Root: root, Cause: err}
	}

	resolved, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return "", &RootError{Root: absRoot, Cause: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &RootError{Root: resolved, Cause: err}
	}
	if !info.IsDir() {
		return "", &RootError{Root: resolved, Cause: ErrNotADirectory}
	}
	return resolved, nil
}

// Abs resolves any path to a canonical absolute path and validates it is
// within the project root. Symlinks are resolved before the containment
// check, so a relative path pointing at an out-of-root symlink target is
// rejected, never rewritten. Abs is idempotent on its own output.
func (r *Resolver) Abs(path string) (string, error) {
	if r.root == "" {
		return "", ErrRootNotSet
	}

	var abs string
	if filepath.IsAbs(path) {
		abs = filepath.Clean(path)
	} else {
		abs = filepath.Clean(filepath.Join(r.root, path))
	}

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", &ResolveError{Path: path, Cause: err}
	}

	if !strings.HasPrefix(resolved, r.root+string(filepath.Separator)) && resolved != r.root {
		return "", &EscapeError{Path: path, Root: r.root}
	}

	return resolved, nil
}

// Rel resolves a path and returns it relative to the project root, using
// forward slashes. The root itself maps to "".
func (r *Resolver) Rel(path string) (string, error) {
	abs, err := r.Abs(path)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", &EscapeError{Path: path, Root: r.root}
	}

	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// resolveExisting resolves symlinks in the longest existing prefix of abs and
// rejoins the non-existing remainder. Paths that do not exist yet (write
// targets) are still checked against the root through their existing parent.
func resolveExisting(abs string) (string, error) {
	var remainder []string
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			if len(remainder) == 0 {
				return resolved, nil
			}
			parts := append([]string{resolved}, remainder...)
			return filepath.Join(parts...), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			// Nothing on the path exists; keep the cleaned form.
			return abs, nil
		}
		remainder = append([]string{filepath.Base(cur)}, remainder...)
		cur = parent
	}
}
