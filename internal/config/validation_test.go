package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "empty model", mutate: func(c *Config) { c.Provider.Model = "" }, wantErr: true},
		{name: "temperature too high", mutate: func(c *Config) { c.Provider.Temperature = 2.5 }, wantErr: true},
		{name: "negative temperature", mutate: func(c *Config) { c.Provider.Temperature = -0.1 }, wantErr: true},
		{name: "top_p out of range", mutate: func(c *Config) { c.Provider.TopP = 1.5 }, wantErr: true},
		{name: "zero max tokens", mutate: func(c *Config) { c.Provider.MaxTokens = 0 }, wantErr: true},
		{name: "zero tool steps", mutate: func(c *Config) { c.Loop.MaxToolSteps = 0 }, wantErr: true},
		{name: "negative retries", mutate: func(c *Config) { c.Loop.BackendRetries = -1 }, wantErr: true},
		{name: "zero retries allowed", mutate: func(c *Config) { c.Loop.BackendRetries = 0 }},
		{name: "context budget too small", mutate: func(c *Config) { c.Loop.ContextBudget = 1 }, wantErr: true},
		{name: "zero max file size", mutate: func(c *Config) { c.Tools.MaxFileSize = 0 }, wantErr: true},
		{name: "zero command timeout", mutate: func(c *Config) { c.Tools.CommandTimeoutMs = 0 }, wantErr: true},
		{name: "empty sessions dir", mutate: func(c *Config) { c.Sessions.Dir = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
