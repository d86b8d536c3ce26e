package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// Values present in the config file override defaults, including explicit
// zero values; missing keys keep their defaults.
type Config struct {
	Provider ProviderConfig `json:"provider"`
	Loop     LoopConfig     `json:"loop"`
	Tools    ToolsConfig    `json:"tools"`
	Policy   PolicyConfig   `json:"policy"`
	Sessions SessionsConfig `json:"sessions"`
}

type ProviderConfig struct {
	Model       string  `json:"model"`        // Default: gemini-2.0-flash
	Temperature float32 `json:"temperature"`  // Default: 0.2
	TopP        float32 `json:"top_p"`        // Default: 0.95
	TopK        int32   `json:"top_k"`        // Default: 40
	MaxTokens   int32   `json:"max_tokens"`   // Default: 4096
	PlanModel   string  `json:"plan_model"`   // Default: "" (same as Model)
}

type LoopConfig struct {
	MaxToolSteps     int `json:"max_tool_steps"`     // Default: 20
	BackendRetries   int `json:"backend_retries"`    // Default: 3
	BackendBackoffMs int `json:"backend_backoff_ms"` // Default: 500
	ToolTimeoutMs    int `json:"tool_timeout_ms"`    // Default: 120000
	ContextBudget    int `json:"context_budget"`     // Default: 200 messages
}

type ToolsConfig struct {
	MaxFileSize          int64 `json:"max_file_size"`           // Default: 20MB
	MaxCommandOutput     int   `json:"max_command_output"`      // Default: 64KB kept
	BinarySampleSize     int   `json:"binary_sample_size"`      // Default: 8000
	CommandTimeoutMs     int   `json:"command_timeout_ms"`      // Default: 120000
	MaxSearchResults     int   `json:"max_search_results"`      // Default: 200
	MaxListEntries       int   `json:"max_list_entries"`        // Default: 1000
	MaxTreeDepth         int   `json:"max_tree_depth"`          // Default: 6
}

type PolicyConfig struct {
	// ExtraAllow is unioned into the allowlist after stack detection,
	// e.g. ["make lint", "just"].
	ExtraAllow []string `json:"extra_allow"`
}

type SessionsConfig struct {
	Dir string `json:"dir"` // Default: .crucible/sessions (relative to project root)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			Model:       "gemini-2.0-flash",
			Temperature: 0.2,
			TopP:        0.95,
			TopK:        40,
			MaxTokens:   4096,
		},
		Loop: LoopConfig{
			MaxToolSteps:     20,
			BackendRetries:   3,
			BackendBackoffMs: 500,
			ToolTimeoutMs:    120000,
			ContextBudget:    200,
		},
		Tools: ToolsConfig{
			MaxFileSize:      20 * 1024 * 1024,
			MaxCommandOutput: 64 * 1024,
			BinarySampleSize: 8000,
			CommandTimeoutMs: 120000,
			MaxSearchResults: 200,
			MaxListEntries:   1000,
			MaxTreeDepth:     6,
		},
		Sessions: SessionsConfig{
			Dir: ".crucible/sessions",
		},
	}
}
