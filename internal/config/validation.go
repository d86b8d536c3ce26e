package config

import (
	"errors"
	"fmt"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks the merged configuration for values the core cannot run
// with. It reports the first offending field.
func (c *Config) Validate() error {
	if c.Provider.Model == "" {
		return fmt.Errorf("%w: provider.model must not be empty", ErrInvalidConfig)
	}
	if c.Provider.Temperature < 0 || c.Provider.Temperature > 2 {
		return fmt.Errorf("%w: provider.temperature must be in [0, 2], got %v", ErrInvalidConfig, c.Provider.Temperature)
	}
	if c.Provider.TopP < 0 || c.Provider.TopP > 1 {
		return fmt.Errorf("%w: provider.top_p must be in [0, 1], got %v", ErrInvalidConfig, c.Provider.TopP)
	}
	if c.Provider.MaxTokens <= 0 {
		return fmt.Errorf("%w: provider.max_tokens must be positive, got %d", ErrInvalidConfig, c.Provider.MaxTokens)
	}
	if c.Loop.MaxToolSteps <= 0 {
		return fmt.Errorf("%w: loop.max_tool_steps must be positive, got %d", ErrInvalidConfig, c.Loop.MaxToolSteps)
	}
	if c.Loop.BackendRetries < 0 {
		return fmt.Errorf("%w: loop.backend_retries must be >= 0, got %d", ErrInvalidConfig, c.Loop.BackendRetries)
	}
	if c.Loop.ContextBudget < 2 {
		return fmt.Errorf("%w: loop.context_budget must allow at least a system and one user message, got %d", ErrInvalidConfig, c.Loop.ContextBudget)
	}
	if c.Tools.MaxFileSize <= 0 {
		return fmt.Errorf("%w: tools.max_file_size must be positive, got %d", ErrInvalidConfig, c.Tools.MaxFileSize)
	}
	if c.Tools.CommandTimeoutMs <= 0 {
		return fmt.Errorf("%w: tools.command_timeout_ms must be positive, got %d", ErrInvalidConfig, c.Tools.CommandTimeoutMs)
	}
	if c.Sessions.Dir == "" {
		return fmt.Errorf("%w: sessions.dir must not be empty", ErrInvalidConfig)
	}
	return nil
}
