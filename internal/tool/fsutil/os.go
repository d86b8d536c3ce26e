// Package fsutil provides the OS filesystem adapter shared by the file,
// directory and search tools. Tools depend on the narrow interfaces they
// declare; this package supplies the production implementation.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"crucible/internal/tool"
)

// OSFileSystem implements filesystem operations on the local OS.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (r *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFileRange reads a byte range from a file. If offset and limit are both
// zero the entire file is read.
func (r *OSFileSystem) ReadFileRange(path string, offset, limit int64) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if offset == 0 && limit == 0 {
		return io.ReadAll(file)
	}
	if offset < 0 {
		return nil, tool.ErrInvalidOffset
	}
	if limit < 0 {
		return nil, tool.ErrInvalidLimit
	}
	if offset >= info.Size() {
		return []byte{}, nil
	}

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}

	remaining := info.Size() - offset
	readSize := remaining
	if limit > 0 && limit < remaining {
		readSize = limit
	}

	content := make([]byte, readSize)
	n, err := io.ReadFull(file, content)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	return content[:n], nil
}

// WriteFileAtomic writes content via temp file + rename so a crash mid-write
// never leaves a half-written target.
func (r *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return os.Chmod(path, perm)
}

// AppendFile appends content to a file, creating it if missing.
func (r *OSFileSystem) AppendFile(path string, content []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write(content)
	return err
}

// EnsureDirs creates parent directories recursively if they don't exist.
func (r *OSFileSystem) EnsureDirs(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// ListDir lists the entries of a directory.
func (r *OSFileSystem) ListDir(path string) ([]os.FileInfo, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	infos := make([]os.FileInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}
