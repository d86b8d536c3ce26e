package directory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"crucible/internal/config"
	"crucible/internal/tool"
	"crucible/internal/tool/gitutil"
	"crucible/internal/tool/pathutil"
)

// FindFileRequest carries the arguments of a find_file call.
type FindFileRequest struct {
	Pattern string `mapstructure:"pattern"`
	Path    string `mapstructure:"path"`
}

// FindFile walks a subtree and matches file names against a glob pattern.
type FindFile struct {
	resolver *pathutil.Resolver
	ignore   *gitutil.Ignore
	cfg      config.ToolsConfig
}

func NewFindFile(resolver *pathutil.Resolver, ignore *gitutil.Ignore, cfg config.ToolsConfig) *FindFile {
	return &FindFile{resolver: resolver, ignore: ignore, cfg: cfg}
}

func (t *FindFile) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "find_file",
		Description: "Find files by name. The pattern is a glob matched against file names, e.g. '*.go' or 'config.*'.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"pattern": {Type: tool.TypeString, Description: "Glob pattern matched against file names"},
				"path":    {Type: tool.TypeString, Description: "Subtree to search, defaults to the workspace root"},
			},
			Required: []string{"pattern"},
		},
	}
}

func (t *FindFile) Capability() tool.Capability { return tool.CapabilityFSRead }
func (t *FindFile) NewRequest() any             { return &FindFileRequest{} }
func (t *FindFile) PathParams() []string        { return []string{"path"} }

func (t *FindFile) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*FindFileRequest)

	if _, err := filepath.Match(r.Pattern, "x"); err != nil {
		return "", fmt.Errorf("invalid glob pattern %q: %w", r.Pattern, err)
	}

	root := r.Path
	if root == "" {
		root = t.resolver.Root()
	}

	var matches []string
	truncated := false
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := t.resolver.Rel(path)
		if relErr != nil {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if t.ignore.Match(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ok, _ := filepath.Match(r.Pattern, d.Name()); ok {
			matches = append(matches, rel)
			if len(matches) >= t.cfg.MaxSearchResults {
				truncated = true
				return filepath.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", tool.ErrFileMissing, root)
		}
		return "", fmt.Errorf("find in %s: %w", root, err)
	}

	if len(matches) == 0 {
		return fmt.Sprintf("No files matching %q", r.Pattern), nil
	}
	out := strings.Join(matches, "\n")
	if truncated {
		out += fmt.Sprintf("\n[results truncated at %d matches]", t.cfg.MaxSearchResults)
	}
	return out, nil
}
