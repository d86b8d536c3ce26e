package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"crucible/internal/config"
	"crucible/internal/conversation"
	"crucible/internal/policy"
	"crucible/internal/provider"
	"crucible/internal/provider/gemini"
	"crucible/internal/stack"
	"crucible/internal/tool/directory"
	"crucible/internal/tool/file"
	"crucible/internal/tool/fsutil"
	gittool "crucible/internal/tool/git"
	"crucible/internal/tool/gitutil"
	"crucible/internal/tool/lint"
	"crucible/internal/tool/pathutil"
	"crucible/internal/tool/search"
	"crucible/internal/tool/shell"
	"crucible/internal/workflow"
	"crucible/internal/workflow/loop"
	"crucible/internal/workflow/router"
	"crucible/internal/workflow/toolmanager"
)

const specialistPromptFormat = `You are %s, a specialist coding agent working inside a project
directory. Your remit: %s

Stay within your remit. Work step by step: inspect before you edit,
verify after you change. Use relative paths within the project. When the
task is complete, answer the user directly without calling further tools.`

func runCrew(cmd *cobra.Command, args []string) error {
	request, err := readRequest(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	crew, err := LoadCrew(crewPath)
	if err != nil {
		return err
	}

	backend, err := newBackend(ctx)
	if err != nil {
		return err
	}

	selected := route(ctx, backend, crew, request)
	if selected != nil {
		logger.Info("routed to specialist", zap.String("agent", selected.Name))
		fmt.Fprintf(os.Stderr, "[%s]\n", selected.Name)
	} else {
		logger.Debug("coordinator answers itself")
	}

	manager, loopCfg, err := buildAgent(selected)
	if err != nil {
		return err
	}

	prompt := crew.Coordinator.Instruction
	name := "coordinator"
	if selected != nil {
		prompt = fmt.Sprintf(specialistPromptFormat, selected.Name, selected.Remit)
		name = selected.Name
	}
	store := conversation.NewStore(conversation.NewSession(name, prompt))

	events := make(chan workflow.Event, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		renderEvents(os.Stderr, events)
	}()

	agent := loop.New(backend, manager, loopCfg, loop.Options{
		Sampling: provider.Sampling{
			Temperature: cfg.Provider.Temperature,
			TopP:        cfg.Provider.TopP,
			TopK:        cfg.Provider.TopK,
			MaxTokens:   cfg.Provider.MaxTokens,
		},
		Logger: logger,
		Events: events,
	})
	outcome, runErr := agent.Run(ctx, store, request)

	close(events)
	<-drained

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			fmt.Fprintln(os.Stderr, "Cancelled.")
			return nil
		}
		return runErr
	}

	if outcome.Truncated {
		fmt.Fprintln(os.Stderr, "Stopped: tool step budget reached before a final answer.")
	}
	if outcome.Answer != "" {
		fmt.Println(outcome.Answer)
	}
	return nil
}

// route picks the specialist for the request, once. Any routing trouble is
// logged and the coordinator answers itself; routing never blocks a request.
func route(ctx context.Context, backend *gemini.GeminiProvider, crew *Crew, request string) *router.Descriptor {
	var matcher router.Matcher = router.KeywordMatcher{}
	if crew.Coordinator.Routing == RoutingModel {
		matcher = router.NewModelMatcher(backend, crew.Coordinator.Instruction)
	}

	selected, err := router.New(matcher, router.DefaultThreshold).Route(ctx, request, crew.Agents)
	if err != nil {
		logger.Warn("routing failed, coordinator answers itself", zap.Error(err))
		return nil
	}
	return selected
}

// buildAgent assembles the toolset and loop configuration for the selected
// agent. A specialist gets its declared tool subset, its command allowlist
// additions, and its own step budget; the coordinator gets everything.
func buildAgent(selected *router.Descriptor) (*toolmanager.Manager, config.LoopConfig, error) {
	loopCfg := cfg.Loop

	cwd, err := os.Getwd()
	if err != nil {
		return nil, loopCfg, fmt.Errorf("determine working directory: %w", err)
	}
	root, err := pathutil.CanonicaliseRoot(cwd)
	if err != nil {
		return nil, loopCfg, fmt.Errorf("canonicalise project root: %w", err)
	}
	resolver := pathutil.NewResolver(root)

	ignore, err := gitutil.NewIgnore(root)
	if err != nil {
		logger.Warn("failed to load .gitignore, listing everything", zap.Error(err))
		ignore = &gitutil.Ignore{}
	}

	techs, err := stack.DetectDir(root)
	if err != nil {
		logger.Warn("stack detection failed, allowlist limited to the base set", zap.Error(err))
	}
	extra := cfg.Policy.ExtraAllow
	if selected != nil && len(selected.Allowlist) > 0 {
		extra = append(append([]string(nil), extra...), selected.Allowlist...)
	}
	allowlist := policy.ForStack(techs, extra)

	fs := fsutil.NewOSFileSystem()
	binary := fsutil.NewBinaryDetector(cfg.Tools.BinarySampleSize)
	executor := shell.NewExecutor(binary, cfg.Tools)

	manager, err := toolmanager.New(resolver,
		time.Duration(cfg.Loop.ToolTimeoutMs)*time.Millisecond,
		file.NewReadFile(fs, binary, cfg.Tools),
		file.NewWriteFile(fs),
		file.NewAppendFile(fs),
		file.NewReplaceInFile(fs, binary),
		directory.NewListDir(resolver, ignore, cfg.Tools),
		directory.NewTree(resolver, ignore, cfg.Tools),
		directory.NewFindFile(resolver, ignore, cfg.Tools),
		search.New(resolver, ignore, binary, cfg.Tools),
		shell.NewRunCommand(executor, allowlist, cfg.Tools),
		lint.New(executor, cfg.Tools),
		gittool.NewStatus(resolver),
		gittool.NewDiff(resolver, binary),
		gittool.NewStage(resolver),
		gittool.NewCommit(resolver),
	)
	if err != nil {
		return nil, loopCfg, fmt.Errorf("initialize tools: %w", err)
	}

	if selected != nil {
		if len(selected.Tools) > 0 {
			manager, err = manager.Restrict(selected.Tools)
			if err != nil {
				return nil, loopCfg, fmt.Errorf("agent %q: %w", selected.Name, err)
			}
		}
		if selected.MaxToolSteps > 0 {
			loopCfg.MaxToolSteps = selected.MaxToolSteps
		}
	}
	return manager, loopCfg, nil
}

func newBackend(ctx context.Context) (*gemini.GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return gemini.New(gemini.NewRealGeminiClient(client), cfg.Provider.Model), nil
}

func readRequest(args []string) (string, error) {
	request := strings.TrimSpace(strings.Join(args, " "))
	if request == "" {
		info, err := os.Stdin.Stat()
		if err == nil && info.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(bufio.NewReader(os.Stdin))
			if err != nil {
				return "", fmt.Errorf("read request from stdin: %w", err)
			}
			request = strings.TrimSpace(string(data))
		}
	}
	if request == "" {
		return "", errors.New("no request given: pass it as arguments or pipe it on stdin")
	}
	return request, nil
}

// renderEvents writes progress to stderr while the loop runs. Stdout carries
// only the final answer.
func renderEvents(w io.Writer, events <-chan workflow.Event) {
	for event := range events {
		switch e := event.(type) {
		case workflow.PlanEvent:
			fmt.Fprintln(w, e.Rendered)
		case workflow.ToolStartEvent:
			fmt.Fprintf(w, "* %s\n", e.ToolName)
		case workflow.ToolEndEvent:
			if e.Failed {
				fmt.Fprintf(w, "* %s failed\n", e.ToolName)
			}
		}
	}
}
