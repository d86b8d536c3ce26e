// Package directory implements the workspace navigation tools: listing,
// tree rendering, and name-based file finding. All of them respect the
// workspace .gitignore.
package directory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"crucible/internal/config"
	"crucible/internal/tool"
	"crucible/internal/tool/gitutil"
	"crucible/internal/tool/pathutil"
)

// ListDirRequest carries the arguments of a list_dir call.
type ListDirRequest struct {
	Path string `mapstructure:"path"`
}

// ListDir lists the entries of a single directory.
type ListDir struct {
	resolver *pathutil.Resolver
	ignore   *gitutil.Ignore
	cfg      config.ToolsConfig
}

func NewListDir(resolver *pathutil.Resolver, ignore *gitutil.Ignore, cfg config.ToolsConfig) *ListDir {
	return &ListDir{resolver: resolver, ignore: ignore, cfg: cfg}
}

func (t *ListDir) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "list_dir",
		Description: "List the entries of a directory. Directories are suffixed with a slash; gitignored entries are hidden.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path": {Type: tool.TypeString, Description: "Directory path relative to the workspace root, defaults to the root"},
			},
		},
	}
}

func (t *ListDir) Capability() tool.Capability { return tool.CapabilityFSRead }
func (t *ListDir) NewRequest() any             { return &ListDirRequest{} }
func (t *ListDir) PathParams() []string        { return []string{"path"} }

func (t *ListDir) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*ListDirRequest)

	dir := r.Path
	if dir == "" {
		dir = t.resolver.Root()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", tool.ErrFileMissing, dir)
		}
		return "", fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		rel, err := t.resolver.Rel(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		if t.ignore.Match(rel, entry.IsDir()) {
			continue
		}
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		return "(empty directory)", nil
	}
	if len(names) > t.cfg.MaxListEntries {
		omitted := len(names) - t.cfg.MaxListEntries
		names = append(names[:t.cfg.MaxListEntries], fmt.Sprintf("... and %d more entries", omitted))
	}
	return strings.Join(names, "\n"), nil
}
