package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/sergi/go-diff/diffmatchpatch"

	"crucible/internal/tool"
	"crucible/internal/tool/pathutil"
)

// contextLines bounds the unchanged lines shown around each change.
const contextLines = 3

// DiffRequest carries the arguments of a git_diff call.
type DiffRequest struct {
	Path string `mapstructure:"path"`
}

// Diff renders the changes between HEAD and the worktree. With a path it is
// limited to that file or directory.
type Diff struct {
	resolver *pathutil.Resolver
	binary   binaryDetector
}

type binaryDetector interface {
	IsBinaryContent(content []byte) bool
}

func NewDiff(resolver *pathutil.Resolver, binary binaryDetector) *Diff {
	return &Diff{resolver: resolver, binary: binary}
}

func (t *Diff) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "git_diff",
		Description: "Show uncommitted changes against HEAD. Optionally limited to a path.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path": {Type: tool.TypeString, Description: "File or directory to limit the diff to"},
			},
		},
	}
}

func (t *Diff) Capability() tool.Capability { return tool.CapabilityVCS }
func (t *Diff) NewRequest() any             { return &DiffRequest{} }
func (t *Diff) PathParams() []string        { return []string{"path"} }

func (t *Diff) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*DiffRequest)

	repo, err := openRepo(t.resolver)
	if err != nil {
		return "", err
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("git diff: %w", err)
	}

	scope, err := t.scope(r.Path, worktree)
	if err != nil {
		return "", err
	}

	head, err := headCommit(repo)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, path := range changedPaths(status) {
		if scope != "" && path != scope && !strings.HasPrefix(path, scope+"/") {
			continue
		}
		old := headContent(head, path)
		current := worktreeContent(worktree, path)
		if old == current {
			continue
		}
		if t.binary.IsBinaryContent([]byte(old)) || t.binary.IsBinaryContent([]byte(current)) {
			fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\nBinary files differ\n\n", path, path)
			continue
		}
		fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n%s\n", path, path, renderDiff(old, current))
	}

	if b.Len() == 0 {
		return "No changes.", nil
	}
	return "Git diff:\n" + strings.TrimRight(b.String(), "\n"), nil
}

// scope resolves the optional path filter to a repository-relative prefix.
func (t *Diff) scope(path string, worktree *gogit.Worktree) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := t.resolver.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(worktree.Filesystem.Root(), abs)
	if err != nil {
		return "", fmt.Errorf("git diff %s: %w", path, err)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// headCommit returns the HEAD commit, or nil on an unborn branch where every
// file diffs against empty content.
func headCommit(repo *gogit.Repository) (*object.Commit, error) {
	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}
	commit, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}
	return commit, nil
}

func headContent(head *object.Commit, path string) string {
	if head == nil {
		return ""
	}
	file, err := head.File(path)
	if err != nil {
		return ""
	}
	content, err := file.Contents()
	if err != nil {
		return ""
	}
	return content
}

func worktreeContent(worktree *gogit.Worktree, path string) string {
	content, err := os.ReadFile(filepath.Join(worktree.Filesystem.Root(), path))
	if err != nil {
		return ""
	}
	return string(content)
}

// renderDiff produces a line-based diff with +/- prefixes and bounded
// context around changes.
func renderDiff(old, current string) string {
	dmp := diffmatchpatch.New()
	a, b, lineIndex := dmp.DiffLinesToChars(old, current)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineIndex)

	var out strings.Builder
	for i, diff := range diffs {
		lines := splitLines(diff.Text)
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			writePrefixed(&out, "-", lines)
		case diffmatchpatch.DiffInsert:
			writePrefixed(&out, "+", lines)
		case diffmatchpatch.DiffEqual:
			writePrefixed(&out, " ", trimContext(lines, i == 0, i == len(diffs)-1))
		}
	}
	return strings.TrimRight(out.String(), "\n")
}

// trimContext keeps only contextLines of an unchanged block on each side
// that borders a change, collapsing the middle.
func trimContext(lines []string, first, last bool) []string {
	keepHead := contextLines
	keepTail := contextLines
	if first {
		keepHead = 0
	}
	if last {
		keepTail = 0
	}
	if len(lines) <= keepHead+keepTail+1 {
		return lines
	}
	trimmed := append([]string(nil), lines[:keepHead]...)
	trimmed = append(trimmed, "...")
	return append(trimmed, lines[len(lines)-keepTail:]...)
}

func writePrefixed(out *strings.Builder, prefix string, lines []string) {
	for _, line := range lines {
		out.WriteString(prefix)
		out.WriteString(line)
		out.WriteByte('\n')
	}
}

func splitLines(text string) []string {
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	return lines
}
