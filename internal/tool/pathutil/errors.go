package pathutil

import (
	"errors"
	"fmt"
)

var (
	// ErrPathEscape is returned when a path resolves outside the project root,
	// including escapes through symlink indirection.
	ErrPathEscape = errors.New("path escapes project root")

	// ErrRootNotSet is returned when a Resolver is used before a root is configured.
	ErrRootNotSet = errors.New("project root not set")

	// ErrNotADirectory is returned when the configured root is not a directory.
	ErrNotADirectory = errors.New("project root is not a directory")
)

// RootError is returned when the project root itself cannot be canonicalized.
type RootError struct {
	Root  string
	Cause error
}

func (e *RootError) Error() string {
	return fmt.Sprintf("invalid project root %s: %v", e.Root, e.Cause)
}
func (e *RootError) Unwrap() error { return e.Cause }

// EscapeError reports the offending path alongside the root it escaped.
type EscapeError struct {
	Path string
	Root string
}

func (e *EscapeError) Error() string {
	return fmt.Sprintf("path %s escapes project root %s", e.Path, e.Root)
}
func (e *EscapeError) Unwrap() error { return ErrPathEscape }

// ResolveError is returned when symlink resolution fails for reasons other
// than the path not existing yet.
type ResolveError struct {
	Path  string
	Cause error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("failed to resolve path %s: %v", e.Path, e.Cause)
}
func (e *ResolveError) Unwrap() error { return e.Cause }
