package git

import (
	"context"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"

	"crucible/internal/tool"
	"crucible/internal/tool/pathutil"
)

// CommitRequest carries the arguments of a git_commit call.
type CommitRequest struct {
	Message string `mapstructure:"message"`
}

// Commit records the staged changes. The author comes from the repository
// configuration, falling back to a fixed agent identity when none is set.
type Commit struct {
	resolver *pathutil.Resolver
}

func NewCommit(resolver *pathutil.Resolver) *Commit {
	return &Commit{resolver: resolver}
}

func (t *Commit) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "git_commit",
		Description: "Commit the currently staged changes with the given message.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"message": {Type: tool.TypeString, Description: "Commit message"},
			},
			Required: []string{"message"},
		},
	}
}

func (t *Commit) Capability() tool.Capability { return tool.CapabilityVCS }
func (t *Commit) NewRequest() any             { return &CommitRequest{} }

func (t *Commit) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*CommitRequest)
	if strings.TrimSpace(r.Message) == "" {
		return "", ErrEmptyCommitMessage
	}

	repo, err := openRepo(t.resolver)
	if err != nil {
		return "", err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}

	hash, err := worktree.Commit(r.Message, &gogit.CommitOptions{
		Author: author(repo),
	})
	if err != nil {
		return "", fmt.Errorf("git commit: %w", err)
	}
	return fmt.Sprintf("Commit created.\n%s %s", hash.String()[:7], firstLine(r.Message)), nil
}

func author(repo *gogit.Repository) *object.Signature {
	sig := &object.Signature{
		Name:  "crucible",
		Email: "crucible@localhost",
		When:  time.Now(),
	}
	cfg, err := repo.ConfigScoped(config.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return message[:i]
	}
	return message
}
