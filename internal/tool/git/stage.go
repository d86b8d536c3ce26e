package git

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"

	"crucible/internal/tool"
	"crucible/internal/tool/pathutil"
)

// StageRequest carries the arguments of a git_stage call.
type StageRequest struct {
	Paths []string `mapstructure:"paths"`
}

// Stage adds files to the index. Directories stage recursively; an empty
// path list stages every change in the worktree.
type Stage struct {
	resolver *pathutil.Resolver
}

func NewStage(resolver *pathutil.Resolver) *Stage {
	return &Stage{resolver: resolver}
}

func (t *Stage) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "git_stage",
		Description: "Stage files for commit. Omit paths to stage all changes.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"paths": {
					Type:        tool.TypeArray,
					Description: "Paths relative to the workspace root. Directories stage recursively.",
					Items:       &tool.Schema{Type: tool.TypeString},
				},
			},
		},
	}
}

func (t *Stage) Capability() tool.Capability { return tool.CapabilityVCS }
func (t *Stage) NewRequest() any             { return &StageRequest{} }

func (t *Stage) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*StageRequest)

	repo, err := openRepo(t.resolver)
	if err != nil {
		return "", err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("git stage: %w", err)
	}

	if len(r.Paths) == 0 {
		if err := worktree.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
			return "", fmt.Errorf("git stage: %w", err)
		}
		return "Staged all changes.", nil
	}

	var staged []string
	for _, path := range r.Paths {
		abs, err := t.resolver.Abs(path)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(worktree.Filesystem.Root(), abs)
		if err != nil {
			return "", fmt.Errorf("git stage %s: %w", path, err)
		}
		if _, err := worktree.Add(filepath.ToSlash(rel)); err != nil {
			return "", fmt.Errorf("git stage %s: %w", path, err)
		}
		staged = append(staged, filepath.ToSlash(rel))
	}
	return "Staged: " + strings.Join(staged, ", "), nil
}
