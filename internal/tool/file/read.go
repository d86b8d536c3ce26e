// Package file implements the file reading and editing tools. Paths arrive
// already resolved to absolute form by the tool manager's path guard; the
// tools here only do I/O and content checks.
package file

import (
	"context"
	"fmt"
	"os"

	"crucible/internal/config"
	"crucible/internal/tool"
)

// fileReader defines the minimal filesystem operations needed for reading files.
type fileReader interface {
	Stat(path string) (os.FileInfo, error)
	ReadFileRange(path string, offset, limit int64) ([]byte, error)
}

// binaryDetector reports whether content looks like binary data.
type binaryDetector interface {
	IsBinaryContent(content []byte) bool
}

// ReadFileRequest carries the arguments of a read_file call.
type ReadFileRequest struct {
	Path   string `mapstructure:"path"`
	Offset int64  `mapstructure:"offset"`
	Limit  int64  `mapstructure:"limit"`
}

// ReadFile reads text files from the workspace with optional offset and
// limit for partial reads.
type ReadFile struct {
	fs     fileReader
	binary binaryDetector
	cfg    config.ToolsConfig
}

// NewReadFile creates the tool with injected dependencies.
func NewReadFile(fs fileReader, binary binaryDetector, cfg config.ToolsConfig) *ReadFile {
	return &ReadFile{fs: fs, binary: binary, cfg: cfg}
}

func (t *ReadFile) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "read_file",
		Description: "Read a text file from the workspace. Supports partial reads via byte offset and limit.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":   {Type: tool.TypeString, Description: "Path relative to the workspace root"},
				"offset": {Type: tool.TypeInteger, Description: "Byte offset to start reading from"},
				"limit":  {Type: tool.TypeInteger, Description: "Maximum number of bytes to read"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *ReadFile) Capability() tool.Capability { return tool.CapabilityFSRead }
func (t *ReadFile) NewRequest() any             { return &ReadFileRequest{} }
func (t *ReadFile) PathParams() []string        { return []string{"path"} }

func (t *ReadFile) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*ReadFileRequest)

	info, err := t.fs.Stat(r.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", tool.ErrFileMissing, r.Path)
		}
		return "", fmt.Errorf("stat %s: %w", r.Path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory, use list_dir", r.Path)
	}
	if info.Size() > t.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: %s is %d bytes, limit is %d", tool.ErrTooLarge, r.Path, info.Size(), t.cfg.MaxFileSize)
	}
	if r.Offset < 0 {
		return "", fmt.Errorf("%w: %d", tool.ErrInvalidOffset, r.Offset)
	}
	if r.Limit < 0 {
		return "", fmt.Errorf("%w: %d", tool.ErrInvalidLimit, r.Limit)
	}

	content, err := t.fs.ReadFileRange(r.Path, r.Offset, r.Limit)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", r.Path, err)
	}
	if t.binary.IsBinaryContent(content) {
		return "", fmt.Errorf("%w: %s", tool.ErrBinaryFile, r.Path)
	}

	out := string(content)
	if r.Offset > 0 || int64(len(content)) < info.Size() {
		out += fmt.Sprintf("\n[partial read: bytes %d-%d of %d]",
			r.Offset, r.Offset+int64(len(content)), info.Size())
	}
	return out, nil
}
