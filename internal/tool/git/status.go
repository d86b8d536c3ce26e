package git

import (
	"context"
	"fmt"
	"strings"

	"crucible/internal/tool"
	"crucible/internal/tool/pathutil"
)

// StatusRequest carries the arguments of a git_status call.
type StatusRequest struct{}

// Status reports the repository state in short format.
type Status struct {
	resolver *pathutil.Resolver
}

func NewStatus(resolver *pathutil.Resolver) *Status {
	return &Status{resolver: resolver}
}

func (t *Status) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "git_status",
		Description: "Show the working tree status: staged, modified and untracked files.",
		Parameters: &tool.Schema{
			Type:       tool.TypeObject,
			Properties: map[string]*tool.Schema{},
		},
	}
}

func (t *Status) Capability() tool.Capability { return tool.CapabilityVCS }
func (t *Status) NewRequest() any             { return &StatusRequest{} }

func (t *Status) Execute(ctx context.Context, req any) (string, error) {
	repo, err := openRepo(t.resolver)
	if err != nil {
		return "", err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("git status: %w", err)
	}

	paths := changedPaths(status)
	if len(paths) == 0 {
		return "Working tree clean. Nothing to commit.", nil
	}

	var b strings.Builder
	b.WriteString("Git status:\n")
	for _, path := range paths {
		fs := status[path]
		fmt.Fprintf(&b, "%c%c %s\n", byte(fs.Staging), byte(fs.Worktree), path)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
