package directory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crucible/internal/config"
	"crucible/internal/tool"
	"crucible/internal/tool/gitutil"
	"crucible/internal/tool/pathutil"
)

// fixture builds a small workspace:
//
//	.gitignore (ignores *.log and target/)
//	main.go
//	debug.log
//	src/lib.go
//	src/nested/deep.go
//	target/out.bin
func fixture(t *testing.T) (string, *pathutil.Resolver, *gitutil.Ignore) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		".gitignore":         "*.log\ntarget/\n",
		"main.go":            "package main\n",
		"debug.log":          "noise\n",
		"src/lib.go":         "package src\n",
		"src/nested/deep.go": "package nested\n",
		"target/out.bin":     "bin\n",
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	root, err := pathutil.CanonicaliseRoot(dir)
	require.NoError(t, err)
	resolver := pathutil.NewResolver(root)

	ignore, err := gitutil.NewIgnore(root)
	require.NoError(t, err)

	return root, resolver, ignore
}

func TestEmptyPathDefaultsToRoot(t *testing.T) {
	_, resolver, ignore := fixture(t)
	cfg := config.DefaultConfig().Tools

	t.Run("list_dir", func(t *testing.T) {
		out, err := NewListDir(resolver, ignore, cfg).Execute(context.Background(), &ListDirRequest{})
		require.NoError(t, err)
		assert.Contains(t, out, "main.go")
	})

	t.Run("tree", func(t *testing.T) {
		out, err := NewTree(resolver, ignore, cfg).Execute(context.Background(), &TreeRequest{})
		require.NoError(t, err)
		assert.Contains(t, out, "src/")
	})

	t.Run("find_file", func(t *testing.T) {
		out, err := NewFindFile(resolver, ignore, cfg).Execute(context.Background(), &FindFileRequest{Pattern: "*.go"})
		require.NoError(t, err)
		assert.Contains(t, out, "main.go")
	})
}

func TestListDir(t *testing.T) {
	root, resolver, ignore := fixture(t)
	list := NewListDir(resolver, ignore, config.DefaultConfig().Tools)

	out, err := list.Execute(context.Background(), &ListDirRequest{Path: root})
	require.NoError(t, err)

	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "src/")
	assert.NotContains(t, out, "debug.log", "gitignored file hidden")
	assert.NotContains(t, out, "target", "gitignored directory hidden")
}

func TestListDirMissing(t *testing.T) {
	root, resolver, ignore := fixture(t)
	list := NewListDir(resolver, ignore, config.DefaultConfig().Tools)

	_, err := list.Execute(context.Background(), &ListDirRequest{Path: filepath.Join(root, "nope")})
	assert.ErrorIs(t, err, tool.ErrFileMissing)
}

func TestListDirCapsEntries(t *testing.T) {
	root, resolver, ignore := fixture(t)
	cfg := config.DefaultConfig().Tools
	cfg.MaxListEntries = 2
	list := NewListDir(resolver, ignore, cfg)

	out, err := list.Execute(context.Background(), &ListDirRequest{Path: root})
	require.NoError(t, err)
	assert.Contains(t, out, "more entries")
}

func TestTree(t *testing.T) {
	root, resolver, ignore := fixture(t)
	tree := NewTree(resolver, ignore, config.DefaultConfig().Tools)

	out, err := tree.Execute(context.Background(), &TreeRequest{Path: root})
	require.NoError(t, err)

	assert.Contains(t, out, "src/")
	assert.Contains(t, out, "  lib.go")
	assert.Contains(t, out, "  nested/")
	assert.Contains(t, out, "    deep.go")
	assert.NotContains(t, out, "debug.log")
}

func TestTreeDepthLimit(t *testing.T) {
	root, resolver, ignore := fixture(t)
	tree := NewTree(resolver, ignore, config.DefaultConfig().Tools)

	out, err := tree.Execute(context.Background(), &TreeRequest{Path: root, Depth: 1})
	require.NoError(t, err)

	assert.Contains(t, out, "src/")
	assert.NotContains(t, out, "lib.go", "depth 1 stops at top level")
}

func TestFindFile(t *testing.T) {
	root, resolver, ignore := fixture(t)
	find := NewFindFile(resolver, ignore, config.DefaultConfig().Tools)

	out, err := find.Execute(context.Background(), &FindFileRequest{Pattern: "*.go", Path: root})
	require.NoError(t, err)

	assert.Contains(t, out, "main.go")
	assert.Contains(t, out, "src/lib.go")
	assert.Contains(t, out, "src/nested/deep.go")
}

func TestFindFileNoMatches(t *testing.T) {
	root, resolver, ignore := fixture(t)
	find := NewFindFile(resolver, ignore, config.DefaultConfig().Tools)

	out, err := find.Execute(context.Background(), &FindFileRequest{Pattern: "*.rs", Path: root})
	require.NoError(t, err)
	assert.Contains(t, out, "No files matching")
}

func TestFindFileInvalidPattern(t *testing.T) {
	root, resolver, ignore := fixture(t)
	find := NewFindFile(resolver, ignore, config.DefaultConfig().Tools)

	_, err := find.Execute(context.Background(), &FindFileRequest{Pattern: "[", Path: root})
	assert.ErrorContains(t, err, "invalid glob pattern")
}

func TestFindFileSkipsIgnoredTrees(t *testing.T) {
	root, resolver, ignore := fixture(t)
	find := NewFindFile(resolver, ignore, config.DefaultConfig().Tools)

	out, err := find.Execute(context.Background(), &FindFileRequest{Pattern: "*", Path: root})
	require.NoError(t, err)
	assert.NotContains(t, out, "out.bin")
	assert.NotContains(t, out, "debug.log")
}
