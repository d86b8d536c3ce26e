package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"crucible/internal/conversation"
	"crucible/internal/conversation/persist"
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
	"crucible/internal/workflow/planner"
	"crucible/internal/workflow/toolmanager"
)

var (
	planFirst    bool
	sessionName  string
	resumePrefix string
)

const systemPrompt = `You are crucible, an autonomous coding agent working inside a project
directory. You have tools to read, write and search files, inspect the
directory tree, run allowlisted shell commands, lint files, and drive git.

Work step by step: inspect before you edit, verify after you change. Use
relative paths within the project. When the task is complete, answer the
user directly without calling further tools.`

func runAsk(cmd *cobra.Command, args []string) error {
	request, err := readRequest(args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newEnvironment(ctx)
	if err != nil {
		return err
	}

	store, files, err := openSession(env.resolver.Root())
	if err != nil {
		return err
	}

	events := make(chan workflow.Event, 16)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		renderEvents(os.Stderr, events)
	}()

	opts := loop.Options{
		Sampling: provider.Sampling{
			Temperature: cfg.Provider.Temperature,
			TopP:        cfg.Provider.TopP,
			TopK:        cfg.Provider.TopK,
			MaxTokens:   cfg.Provider.MaxTokens,
		},
		Logger: logger,
		Events: events,
	}
	if planFirst {
		opts.Planner = planner.New(env.planBackend)
	}

	agent := loop.New(env.backend, env.tools, cfg.Loop, opts)
	outcome, runErr := agent.Run(ctx, store, request)

	close(events)
	<-drained

	if name, saveErr := files.Save(store.Session()); saveErr != nil {
		logger.Warn("failed to save session", zap.Error(saveErr))
	} else {
		logger.Debug("session saved", zap.String("file", name))
	}

	if env.watcher != nil && env.watcher.Stale() {
		logger.Warn("project stack changed during the run; command allowlist may be outdated")
	}

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

// readRequest joins the arguments, or reads stdin when none were given so
// the binary composes with pipes.
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

// environment bundles everything the agent loop needs for one run.
type environment struct {
	resolver    *pathutil.Resolver
	tools       *toolmanager.Manager
	backend     *gemini.GeminiProvider
	planBackend *gemini.GeminiProvider
	watcher     *stack.Watcher
}

func newEnvironment(ctx context.Context) (*environment, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	root, err := pathutil.CanonicaliseRoot(cwd)
	if err != nil {
		return nil, fmt.Errorf("canonicalise project root: %w", err)
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
	allowlist := policy.ForStack(techs, cfg.Policy.ExtraAllow)
	logger.Debug("detected stack", zap.Any("techs", techs))

	watcher, err := stack.NewWatcher(root, logger)
	if err != nil {
		logger.Warn("stack watcher unavailable", zap.Error(err))
		watcher = nil
	} else {
		go watcher.Run(ctx)
	}

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
		return nil, fmt.Errorf("initialize tools: %w", err)
	}

	backend, planBackend, err := newBackends(ctx)
	if err != nil {
		return nil, err
	}

	return &environment{
		resolver:    resolver,
		tools:       manager,
		backend:     backend,
		planBackend: planBackend,
		watcher:     watcher,
	}, nil
}

// newBackends builds the inference provider, plus a second one for planning
// when a separate plan model is configured.
func newBackends(ctx context.Context) (*gemini.GeminiProvider, *gemini.GeminiProvider, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, nil, errors.New("GEMINI_API_KEY environment variable is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, nil, fmt.Errorf("create Gemini client: %w", err)
	}
	realClient := gemini.NewRealGeminiClient(client)

	backend := gemini.New(realClient, cfg.Provider.Model)
	planBackend := backend
	if cfg.Provider.PlanModel != "" && cfg.Provider.PlanModel != cfg.Provider.Model {
		planBackend = gemini.New(realClient, cfg.Provider.PlanModel)
	}
	return backend, planBackend, nil
}

// openSession resumes a saved session or starts a fresh one.
func openSession(root string) (*conversation.Store, *persist.FileStore, error) {
	dir := cfg.Sessions.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(root, dir)
	}
	files, err := persist.NewFileStore(dir)
	if err != nil {
		return nil, nil, err
	}

	if resumePrefix != "" {
		session, err := files.LoadByPrefix(resumePrefix)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("resumed session",
			zap.String("name", session.Name), zap.Int("messages", len(session.Messages)))
		return conversation.NewStore(session), files, nil
	}

	name := sessionName
	if name == "" {
		name = "ask"
	}
	return conversation.NewStore(conversation.NewSession(name, systemPrompt)), files, nil
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
