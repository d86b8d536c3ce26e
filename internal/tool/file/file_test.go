package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crucible/internal/config"
	"crucible/internal/tool"
	"crucible/internal/tool/fsutil"
)

// The OS adapter must satisfy every interface the tools declare.
var (
	_ fileWriter = (*fsutil.OSFileSystem)(nil)
	_ fileReader = (*fsutil.OSFileSystem)(nil)
	_ replacer   = (*fsutil.OSFileSystem)(nil)
)

func testTools(t *testing.T) (*ReadFile, *WriteFile, *AppendFile, *ReplaceInFile, string) {
	t.Helper()
	dir := t.TempDir()
	fs := fsutil.NewOSFileSystem()
	binary := fsutil.NewBinaryDetector(8000)
	cfg := config.DefaultConfig().Tools
	return NewReadFile(fs, binary, cfg),
		NewWriteFile(fs),
		NewAppendFile(fs),
		NewReplaceInFile(fs, binary),
		dir
}

func TestReadFile(t *testing.T) {
	read, _, _, _, dir := testTools(t)
	path := filepath.Join(dir, "data.txt")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	t.Run("full read", func(t *testing.T) {
		out, err := read.Execute(context.Background(), &ReadFileRequest{Path: path})
		require.NoError(t, err)
		assert.Equal(t, "0123456789", out)
	})

	t.Run("partial read is marked", func(t *testing.T) {
		out, err := read.Execute(context.Background(), &ReadFileRequest{Path: path, Offset: 2, Limit: 3})
		require.NoError(t, err)
		assert.Contains(t, out, "234")
		assert.Contains(t, out, "[partial read: bytes 2-5 of 10]")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := read.Execute(context.Background(), &ReadFileRequest{Path: filepath.Join(dir, "nope.txt")})
		assert.ErrorIs(t, err, tool.ErrFileMissing)
	})

	t.Run("directory", func(t *testing.T) {
		_, err := read.Execute(context.Background(), &ReadFileRequest{Path: dir})
		assert.ErrorContains(t, err, "is a directory")
	})

	t.Run("binary file", func(t *testing.T) {
		binPath := filepath.Join(dir, "blob.bin")
		require.NoError(t, os.WriteFile(binPath, []byte{'a', 0x00, 'b'}, 0o644))
		_, err := read.Execute(context.Background(), &ReadFileRequest{Path: binPath})
		assert.ErrorIs(t, err, tool.ErrBinaryFile)
	})

	t.Run("negative offset", func(t *testing.T) {
		_, err := read.Execute(context.Background(), &ReadFileRequest{Path: path, Offset: -1})
		assert.ErrorIs(t, err, tool.ErrInvalidOffset)
	})
}

func TestReadFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	fs := fsutil.NewOSFileSystem()
	cfg := config.DefaultConfig().Tools
	cfg.MaxFileSize = 4
	read := NewReadFile(fs, fsutil.NewBinaryDetector(8000), cfg)

	path := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(path, []byte("too big"), 0o644))

	_, err := read.Execute(context.Background(), &ReadFileRequest{Path: path})
	assert.ErrorIs(t, err, tool.ErrTooLarge)
}

func TestWriteFileCreatesParents(t *testing.T) {
	_, write, _, _, dir := testTools(t)
	path := filepath.Join(dir, "a", "b", "new.txt")

	out, err := write.Execute(context.Background(), &WriteFileRequest{Path: path, Content: "hello"})
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 5 bytes")

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestWriteFileRejectsDirectory(t *testing.T) {
	_, write, _, _, dir := testTools(t)

	_, err := write.Execute(context.Background(), &WriteFileRequest{Path: dir, Content: "x"})
	assert.ErrorContains(t, err, "is a directory")
}

func TestAppendFile(t *testing.T) {
	_, _, appendTool, _, dir := testTools(t)
	path := filepath.Join(dir, "log.txt")

	_, err := appendTool.Execute(context.Background(), &AppendFileRequest{Path: path, Content: "a"})
	require.NoError(t, err)
	_, err = appendTool.Execute(context.Background(), &AppendFileRequest{Path: path, Content: "b"})
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(got))
}

func TestReplaceInFile(t *testing.T) {
	_, _, _, replace, dir := testTools(t)
	path := filepath.Join(dir, "code.go")

	write := func(content string) {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	t.Run("unique match", func(t *testing.T) {
		write("func old() {}\n")
		out, err := replace.Execute(context.Background(), &ReplaceRequest{
			Path: path, Find: "old", Replace: "renamed",
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Replaced 1 occurrence(s)")

		got, _ := os.ReadFile(path)
		assert.Equal(t, "func renamed() {}\n", string(got))
	})

	t.Run("snippet missing", func(t *testing.T) {
		write("nothing here\n")
		_, err := replace.Execute(context.Background(), &ReplaceRequest{
			Path: path, Find: "absent", Replace: "x",
		})
		assert.ErrorIs(t, err, tool.ErrSnippetNotFound)
	})

	t.Run("ambiguous match rejected", func(t *testing.T) {
		write("x = 1\nx = 1\n")
		_, err := replace.Execute(context.Background(), &ReplaceRequest{
			Path: path, Find: "x = 1", Replace: "x = 2",
		})
		assert.ErrorContains(t, err, "occurs 2 times")
	})

	t.Run("replace all", func(t *testing.T) {
		write("x = 1\nx = 1\n")
		out, err := replace.Execute(context.Background(), &ReplaceRequest{
			Path: path, Find: "x = 1", Replace: "x = 2", All: true,
		})
		require.NoError(t, err)
		assert.Contains(t, out, "Replaced 2 occurrence(s)")

		got, _ := os.ReadFile(path)
		assert.Equal(t, "x = 2\nx = 2\n", string(got))
	})

	t.Run("empty find", func(t *testing.T) {
		write("content\n")
		_, err := replace.Execute(context.Background(), &ReplaceRequest{
			Path: path, Find: "", Replace: "x",
		})
		assert.ErrorContains(t, err, "must not be empty")
	})
}

func TestDeclarationsAreWellFormed(t *testing.T) {
	read, write, appendTool, replace, _ := testTools(t)

	for _, tl := range []interface {
		Declaration() tool.Declaration
		PathParams() []string
	}{read, write, appendTool, replace} {
		decl := tl.Declaration()
		assert.NotEmpty(t, decl.Name)
		assert.NotEmpty(t, decl.Description)
		for _, param := range tl.PathParams() {
			_, ok := decl.Parameters.Properties[param]
			assert.True(t, ok, "%s: path param %q not declared", decl.Name, param)
		}
	}
}
