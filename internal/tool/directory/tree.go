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

// TreeRequest carries the arguments of a tree call.
type TreeRequest struct {
	Path  string `mapstructure:"path"`
	Depth int    `mapstructure:"depth"`
}

// Tree renders a directory subtree with indentation, depth-limited.
type Tree struct {
	resolver *pathutil.Resolver
	ignore   *gitutil.Ignore
	cfg      config.ToolsConfig
}

func NewTree(resolver *pathutil.Resolver, ignore *gitutil.Ignore, cfg config.ToolsConfig) *Tree {
	return &Tree{resolver: resolver, ignore: ignore, cfg: cfg}
}

func (t *Tree) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "tree",
		Description: "Render a directory subtree. Depth is capped; gitignored entries are hidden.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path":  {Type: tool.TypeString, Description: "Directory path relative to the workspace root, defaults to the root"},
				"depth": {Type: tool.TypeInteger, Description: "Maximum depth to descend"},
			},
		},
	}
}

func (t *Tree) Capability() tool.Capability { return tool.CapabilityFSRead }
func (t *Tree) NewRequest() any             { return &TreeRequest{} }
func (t *Tree) PathParams() []string        { return []string{"path"} }

func (t *Tree) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*TreeRequest)

	dir := r.Path
	if dir == "" {
		dir = t.resolver.Root()
	}

	depth := r.Depth
	if depth <= 0 || depth > t.cfg.MaxTreeDepth {
		depth = t.cfg.MaxTreeDepth
	}

	var b strings.Builder
	if err := t.render(&b, dir, 0, depth); err != nil {
		return "", err
	}
	if b.Len() == 0 {
		return "(empty directory)", nil
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (t *Tree) render(b *strings.Builder, dir string, level, maxDepth int) error {
	if level >= maxDepth {
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", tool.ErrFileMissing, dir)
		}
		return fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	indent := strings.Repeat("  ", level)
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		rel, err := t.resolver.Rel(child)
		if err != nil {
			continue
		}
		if t.ignore.Match(rel, entry.IsDir()) {
			continue
		}
		if entry.IsDir() {
			fmt.Fprintf(b, "%s%s/\n", indent, entry.Name())
			if err := t.render(b, child, level+1, maxDepth); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(b, "%s%s\n", indent, entry.Name())
		}
	}
	return nil
}
