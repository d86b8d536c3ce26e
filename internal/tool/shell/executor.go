// Package shell executes allowlisted commands inside the workspace and
// reports their combined output to the model.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"crucible/internal/config"
	"crucible/internal/tool"
)

// gracePeriod is how long a timed-out command gets between interrupt and
// kill.
const gracePeriod = 2 * time.Second

// Result represents the outcome of a command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	TimedOut  bool
}

// Executor runs commands with bounded output and a timeout.
type Executor struct {
	binary     binaryDetector
	maxOutput  int
	sampleSize int
}

// NewExecutor creates an executor with limits from configuration.
func NewExecutor(binary binaryDetector, cfg config.ToolsConfig) *Executor {
	return &Executor{
		binary:     binary,
		maxOutput:  cfg.MaxCommandOutput,
		sampleSize: cfg.BinarySampleSize,
	}
}

// Run executes the command words in dir. On timeout the process gets an
// interrupt first and a kill after the grace period; collected output is
// still returned.
func (e *Executor) Run(ctx context.Context, words []string, dir string, timeout time.Duration) (*Result, error) {
	if len(words) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.Command(words[0], words[1:]...)
	cmd.Dir = dir
	cmd.Stdin = nil

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", words[0], err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("start %s: %w", words[0], err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", words[0], err)
	}

	stdout := newCollector(e.maxOutput, e.sampleSize, e.binary)
	stderr := newCollector(e.maxOutput, e.sampleSize, e.binary)

	var g errgroup.Group
	g.Go(func() error {
		_, err := io.Copy(stdout, stdoutPipe)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(stderr, stderrPipe)
		return err
	})

	// The watchdog terminates the process on timeout or cancellation; exit
	// closes the pipes, which unblocks the collectors.
	finished := make(chan struct{})
	watchdog := make(chan bool, 1)
	go func() {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-finished:
			watchdog <- false
		case <-ctx.Done():
			_ = cmd.Process.Kill()
			watchdog <- false
		case <-timer.C:
			_ = cmd.Process.Signal(os.Interrupt)
			select {
			case <-finished:
			case <-time.After(gracePeriod):
				_ = cmd.Process.Kill()
			}
			watchdog <- true
		}
	}()

	// Wait must not run until both pipes are drained; it closes them.
	_ = g.Wait()
	waitErr := cmd.Wait()
	close(finished)
	timedOut := <-watchdog
	if ctx.Err() != nil {
		waitErr = ctx.Err()
	}

	result := &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode(waitErr),
		Truncated: stdout.Truncated() || stderr.Truncated(),
		TimedOut:  timedOut,
	}
	if timedOut {
		result.ExitCode = -1
		return result, fmt.Errorf("%w after %s: %s", tool.ErrToolTimeout, timeout, words[0])
	}
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	return result, nil
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
