package shell

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crucible/internal/config"
	"crucible/internal/policy"
	"crucible/internal/tool"
)

// RunCommandRequest carries the arguments of a run_command call.
type RunCommandRequest struct {
	Command string `mapstructure:"command"`
	Dir     string `mapstructure:"dir"`
}

// RunCommand executes a shell command after checking it against the session
// allowlist. The command runs directly, not through a shell, so pipes and
// redirection are not available.
type RunCommand struct {
	executor  *Executor
	allowlist *policy.Allowlist
	timeout   time.Duration
}

func NewRunCommand(executor *Executor, allowlist *policy.Allowlist, cfg config.ToolsConfig) *RunCommand {
	return &RunCommand{
		executor:  executor,
		allowlist: allowlist,
		timeout:   time.Duration(cfg.CommandTimeoutMs) * time.Millisecond,
	}
}

func (t *RunCommand) Declaration() tool.Declaration {
	return tool.Declaration{
		Name: "run_command",
		Description: "Run a command in the workspace. The command must match an allowlisted prefix " +
			"and is executed directly without a shell. Allowed prefixes: " + strings.Join(t.allowlist.Rules(), ", "),
		Parameters: &tool.Schema{
			Type: tool.TypeObject,
			Properties: map[string]*tool.Schema{
				"command": {Type: tool.TypeString, Description: "Command line to execute, e.g. 'go test ./...'"},
				"dir":     {Type: tool.TypeString, Description: "Working directory relative to the workspace root, defaults to the root"},
			},
			Required: []string{"command"},
		},
	}
}

func (t *RunCommand) Capability() tool.Capability { return tool.CapabilityShell }
func (t *RunCommand) NewRequest() any             { return &RunCommandRequest{} }
func (t *RunCommand) PathParams() []string        { return []string{"dir"} }

func (t *RunCommand) Execute(ctx context.Context, req any) (string, error) {
	r := req.(*RunCommandRequest)

	words, err := t.allowlist.Authorize(r.Command)
	if err != nil {
		return "", err
	}

	result, err := t.executor.Run(ctx, words, r.Dir, t.timeout)
	if result == nil {
		return "", err
	}

	report := formatResult(result)
	if result.TimedOut {
		return "", fmt.Errorf("%w\n%s", err, report)
	}
	if err != nil && result.ExitCode == -1 {
		// Could not run at all (context cancelled, signal).
		return "", err
	}
	return report, nil
}

// formatResult renders the combined outcome the model sees. Non-zero exits
// are reported in the content, not as errors: a failing test run is useful
// output, not a tool failure.
func formatResult(r *Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "exit status %d\n", r.ExitCode)
	if r.Stdout != "" {
		b.WriteString("stdout:\n")
		b.WriteString(r.Stdout)
		if !strings.HasSuffix(r.Stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if r.Stderr != "" {
		b.WriteString("stderr:\n")
		b.WriteString(r.Stderr)
		if !strings.HasSuffix(r.Stderr, "\n") {
			b.WriteByte('\n')
		}
	}
	if r.Stdout == "" && r.Stderr == "" {
		b.WriteString("(no output)\n")
	}
	if r.Truncated {
		b.WriteString("[output truncated]\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
