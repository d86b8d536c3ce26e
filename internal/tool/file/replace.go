package file

import (
	"context"
	"fmt"
	"strings"

	"crucible/internal/tool"
)

// replacer combines the read and write sides needed by replace_in_file.
type replacer interface {
	fileReader
	fileWriter
}

// ReplaceRequest carries the arguments of a replace_in_file call.
type ReplaceRequest struct {
	Path    string `mapstructure:"path"`
	Find    string `mapstructure:"find"`
	Replace string `mapstructure:"replace"`
	All     bool   `mapstructure:"all"`
}

// ReplaceInFile swaps an exact snippet for new content. Without the all
// flag the snippet must occur exactly once, so a loosely specified edit
// fails instead of landing somewhere unintended.
type ReplaceInFile struct {
	fs     replacer
	binary binaryDetector
}

func NewReplaceInFile(fs replacer, binary binaryDetector) *ReplaceInFile {
	return &ReplaceInFile{fs: fs, binary: binary}
}

func (t *ReplaceInFile) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "replace_in_file",
		Description: "Replace an exact text snippet in a file. The snippet must occur exactly once unless 'all' is set.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":    {Type: tool.TypeString, Description: "Path relative to the workspace root"},
				"find":    {Type: tool.TypeString, Description: "Exact text to find"},
				"replace": {Type: tool.TypeString, Description: "Replacement text"},
				"all":     {Type: tool.TypeBoolean, Description: "Replace every occurrence instead of requiring a unique match"},
			},
			Required: []string{"path", "find", "replace"},
		},
	}
}

func (t *ReplaceInFile) Capability() tool.Capability { return tool.CapabilityFSWrite }
func (t *ReplaceInFile) NewRequest() any             { return &ReplaceRequest{} }
func (t *ReplaceInFile) PathParams() []string        { return []string{"path"} }

func (t *ReplaceInFile) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*ReplaceRequest)

	if r.Find == "" {
		return "", fmt.Errorf("find must not be empty")
	}

	content, err := t.fs.ReadFileRange(r.Path, 0, 0)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", r.Path, err)
	}
	if t.binary.IsBinaryContent(content) {
		return "", fmt.Errorf("%w: %s", tool.ErrBinaryFile, r.Path)
	}

	text := string(content)
	count := strings.Count(text, r.Find)
	switch {
	case count == 0:
		return "", fmt.Errorf("%w in %s", tool.ErrSnippetNotFound, r.Path)
	case count > 1 && !r.All:
		return "", fmt.Errorf("snippet occurs %d times in %s, provide more context or set all=true", count, r.Path)
	}

	replaced := count
	if !r.All {
		replaced = 1
	}
	updated := strings.Replace(text, r.Find, r.Replace, replaced)

	if err := t.fs.WriteFileAtomic(r.Path, []byte(updated), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", r.Path, err)
	}
	return fmt.Sprintf("Replaced %d occurrence(s) in %s", replaced, r.Path), nil
}
