package gitutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnoreMissingFile(t *testing.T) {
	ign, err := NewIgnore(t.TempDir())
	require.NoError(t, err)

	assert.False(t, ign.Match("main.go", false))
	assert.True(t, ign.Match(".git/config", false), ".git is always hidden")
}

func TestIgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"),
		[]byte("*.log\nbuild/\n!keep.log\n"), 0o644))

	ign, err := NewIgnore(dir)
	require.NoError(t, err)

	assert.True(t, ign.Match("debug.log", false))
	assert.True(t, ign.Match("sub/debug.log", false))
	assert.True(t, ign.Match("build", true))
	assert.True(t, ign.Match("build/out.bin", false))
	assert.False(t, ign.Match("keep.log", false), "negation pattern wins")
	assert.False(t, ign.Match("main.go", false))
}

func TestIgnoreCRLF(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"),
		[]byte("*.tmp\r\nout/\r\n"), 0o644))

	ign, err := NewIgnore(dir)
	require.NoError(t, err)

	assert.True(t, ign.Match("x.tmp", false))
	assert.True(t, ign.Match("out", true))
}
