package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"crucible/internal/tool"
)

// fileWriter defines the filesystem operations needed by the writing tools.
type fileWriter interface {
	Stat(path string) (os.FileInfo, error)
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error
	AppendFile(path string, data []byte, perm os.FileMode) error
	EnsureDirs(path string, perm os.FileMode) error
}

// WriteFileRequest carries the arguments of a write_file call.
type WriteFileRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

// WriteFile creates or overwrites a file. Parent directories are created as
// needed; the write itself is atomic.
type WriteFile struct {
	fs fileWriter
}

func NewWriteFile(fs fileWriter) *WriteFile {
	return &WriteFile{fs: fs}
}

func (t *WriteFile) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "write_file",
		Description: "Create or overwrite a file with the given content. Parent directories are created automatically.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "Path relative to the workspace root"},
				"content": {Type: tool.TypeString, Description: "Full file content"},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *WriteFile) Capability() tool.Capability { return tool.CapabilityFSWrite }
func (t *WriteFile) NewRequest() any             { return &WriteFileRequest{} }
func (t *WriteFile) PathParams() []string        { return []string{"path"} }

func (t *WriteFile) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*WriteFileRequest)

	if info, err := t.fs.Stat(r.Path); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", r.Path)
	}
	if err := t.fs.EnsureDirs(filepath.Dir(r.Path), 0o755); err != nil {
		return "", fmt.Errorf("create parent directories for %s: %w", r.Path, err)
	}
	if err := t.fs.WriteFileAtomic(r.Path, []byte(r.Content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", r.Path, err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(r.Content), r.Path), nil
}

// AppendFileRequest carries the arguments of an append_file call.
type AppendFileRequest struct {
	Path    string `mapstructure:"path"`
	Content string `mapstructure:"content"`
}

// AppendFile appends to a file, creating it if missing.
type AppendFile struct {
	fs fileWriter
}

func NewAppendFile(fs fileWriter) *AppendFile {
	return &AppendFile{fs: fs}
}

func (t *AppendFile) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "append_file",
		Description: "Append content to the end of a file, creating it if it does not exist.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "Path relative to the workspace root"},
				"content": {Type: tool.TypeString, Description: "Content to append"},
			},
			Required: []string{"path", "content"},
		},
	}
}

func (t *AppendFile) Capability() tool.Capability { return tool.CapabilityFSWrite }
func (t *AppendFile) NewRequest() any             { return &AppendFileRequest{} }
func (t *AppendFile) PathParams() []string        { return []string{"path"} }

func (t *AppendFile) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*AppendFileRequest)

	if info, err := t.fs.Stat(r.Path); err == nil && info.IsDir() {
		return "", fmt.Errorf("%s is a directory", r.Path)
	}
	if err := t.fs.EnsureDirs(filepath.Dir(r.Path), 0o755); err != nil {
		return "", fmt.Errorf("create parent directories for %s: %w", r.Path, err)
	}
	if err := t.fs.AppendFile(r.Path, []byte(r.Content), 0o644); err != nil {
		return "", fmt.Errorf("append to %s: %w", r.Path, err)
	}
	return fmt.Sprintf("Appended %d bytes to %s", len(r.Content), r.Path), nil
}
