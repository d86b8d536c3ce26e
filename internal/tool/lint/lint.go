// Package lint provides a static-analysis tool that picks the checker by
// file extension and reports findings back to the model.
package lint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"crucible/internal/config"
	"crucible/internal/tool"
	"crucible/internal/tool/shell"
)

// linter describes how to check files of one extension. When file is true
// the target path is appended to the arguments, otherwise the command runs
// in the target's directory and checks the surrounding package.
type linter struct {
	words []string
	file  bool
}

var linters = map[string]linter{
	".go":  {words: []string{"go", "vet", "."}},
	".rs":  {words: []string{"cargo", "check", "--message-format=short", "--quiet"}},
	".js":  {words: []string{"npx", "eslint"}, file: true},
	".jsx": {words: []string{"npx", "eslint"}, file: true},
	".ts":  {words: []string{"npx", "eslint"}, file: true},
	".tsx": {words: []string{"npx", "eslint"}, file: true},
	".py":  {words: []string{"ruff", "check"}, file: true},
}

// runner abstracts command execution for tests.
type runner interface {
	Run(ctx context.Context, words []string, dir string, timeout time.Duration) (*shell.Result, error)
}

// Request carries the arguments of a lint call.
type Request struct {
	Path string `mapstructure:"path"`
}

// Lint runs the stack-appropriate static checker on a file. The commands are
// fixed per extension, never model input, so they run outside the shell
// allowlist.
type Lint struct {
	runner  runner
	timeout time.Duration
}

func New(runner runner, cfg config.ToolsConfig) *Lint {
	return &Lint{
		runner:  runner,
		timeout: time.Duration(cfg.CommandTimeoutMs) * time.Millisecond,
	}
}

func (t *Lint) Declaration() tool.Declaration {
	return tool.Declaration{
		Name:        "lint",
		Description: "Run the static checker matching a file's language (go vet, cargo check, eslint, ruff) and report its findings.",
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"path": {Type: tool.TypeString, Description: "File to check, relative to the workspace root"},
			},
			Required: []string{"path"},
		},
	}
}

func (t *Lint) Capability() tool.Capability { return tool.CapabilityAnalysis }
func (t *Lint) NewRequest() any             { return &Request{} }
func (t *Lint) PathParams() []string        { return []string{"path"} }

func (t *Lint) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*Request)

	info, err := os.Stat(r.Path)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%w: %s", tool.ErrFileMissing, r.Path)
	}
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not a file: %s", r.Path)
	}

	ext := strings.ToLower(filepath.Ext(r.Path))
	check, ok := linters[ext]
	if !ok {
		return fmt.Sprintf("No linter available for %s files.", extLabel(ext)), nil
	}

	words := check.words
	if check.file {
		words = append(append([]string{}, words...), r.Path)
	}

	result, err := t.runner.Run(ctx, words, filepath.Dir(r.Path), t.timeout)
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Sprintf("%s not available, skipping lint check.", words[0]), nil
	}
	if err != nil {
		return "", err
	}
	return report(words[0], result), nil
}

// report renders the checker outcome. Findings are content for the model,
// not a tool failure.
func report(name string, r *shell.Result) string {
	if r.ExitCode == 0 && r.Stdout == "" && r.Stderr == "" {
		return "Lint passed. No issues found."
	}

	var b strings.Builder
	if r.ExitCode == 0 {
		b.WriteString("Lint passed.\n")
	} else {
		fmt.Fprintf(&b, "Lint found issues (%s exit status %d):\n", name, r.ExitCode)
	}
	if r.Stdout != "" {
		b.WriteString(r.Stdout)
		if !strings.HasSuffix(r.Stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if r.Stderr != "" {
		b.WriteString(r.Stderr)
		if !strings.HasSuffix(r.Stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	if r.Truncated {
		b.WriteString("[output truncated]\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func extLabel(ext string) string {
	if ext == "" {
		return "extensionless"
	}
	return ext
}
