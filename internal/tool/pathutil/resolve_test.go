package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root, err := CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	return NewResolver(root), root
}

func TestCanonicaliseRoot(t *testing.T) {
	t.Run("resolves existing directory", func(t *testing.T) {
		dir := t.TempDir()
		root, err := CanonicaliseRoot(dir)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(root))
	})

	t.Run("rejects missing directory", func(t *testing.T) {
		_, err := CanonicaliseRoot(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})

	t.Run("rejects file as root", func(t *testing.T) {
		dir := t.TempDir()
		f := filepath.Join(dir, "file.txt")
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
		_, err := CanonicaliseRoot(f)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotADirectory)
	})

	t.Run("resolves symlinked root", func(t *testing.T) {
		dir := t.TempDir()
		real := filepath.Join(dir, "real")
		require.NoError(t, os.Mkdir(real, 0o755))
		link := filepath.Join(dir, "link")
		require.NoError(t, os.Symlink(real, link))

		root, err := CanonicaliseRoot(link)
		require.NoError(t, err)

		expected, err := filepath.EvalSymlinks(real)
		require.NoError(t, err)
		assert.Equal(t, expected, root)
	})
}

func TestResolverAbs(t *testing.T) {
	t.Run("relative path inside root", func(t *testing.T) {
		r, root := newTestResolver(t)
		abs, err := r.Abs("sub/file.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "sub", "file.txt"), abs)
	})

	t.Run("root itself", func(t *testing.T) {
		r, root := newTestResolver(t)
		abs, err := r.Abs(".")
		require.NoError(t, err)
		assert.Equal(t, root, abs)
	})

	t.Run("rejects parent traversal", func(t *testing.T) {
		r, _ := newTestResolver(t)
		_, err := r.Abs("../outside.txt")
		assert.ErrorIs(t, err, ErrPathEscape)
	})

	t.Run("rejects nested traversal", func(t *testing.T) {
		r, _ := newTestResolver(t)
		_, err := r.Abs("sub/../../outside.txt")
		assert.ErrorIs(t, err, ErrPathEscape)
	})

	t.Run("rejects absolute path outside root", func(t *testing.T) {
		r, _ := newTestResolver(t)
		_, err := r.Abs("/etc/passwd")
		assert.ErrorIs(t, err, ErrPathEscape)
	})

	t.Run("rejects symlink escaping root", func(t *testing.T) {
		r, root := newTestResolver(t)
		outside := t.TempDir()
		require.NoError(t, os.Symlink(outside, filepath.Join(root, "sneaky")))

		_, err := r.Abs("sneaky/secrets.txt")
		assert.ErrorIs(t, err, ErrPathEscape)
	})

	t.Run("accepts symlink staying inside root", func(t *testing.T) {
		r, root := newTestResolver(t)
		target := filepath.Join(root, "real")
		require.NoError(t, os.Mkdir(target, 0o755))
		require.NoError(t, os.Symlink(target, filepath.Join(root, "alias")))

		abs, err := r.Abs("alias/file.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(target, "file.txt"), abs)
	})

	t.Run("idempotent on its own output", func(t *testing.T) {
		r, _ := newTestResolver(t)
		first, err := r.Abs("a/b/c.txt")
		require.NoError(t, err)
		second, err := r.Abs(first)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("nonexistent target under existing root is allowed", func(t *testing.T) {
		r, root := newTestResolver(t)
		abs, err := r.Abs("new/deep/file.txt")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "new", "deep", "file.txt"), abs)
	})

	t.Run("empty root rejected", func(t *testing.T) {
		r := NewResolver("")
		_, err := r.Abs("anything")
		assert.ErrorIs(t, err, ErrRootNotSet)
	})
}

func TestResolverRel(t *testing.T) {
	r, _ := newTestResolver(t)

	rel, err := r.Rel("sub/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "sub/file.txt", rel)

	rel, err = r.Rel(".")
	require.NoError(t, err)
	assert.Equal(t, "", rel)

	_, err = r.Rel("../nope")
	assert.ErrorIs(t, err, ErrPathEscape)
}
