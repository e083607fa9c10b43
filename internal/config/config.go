// Package config loads job-orchestration-core configuration from
// .jobcore/config.json, with environment variable overrides layered on top.
// Configuration is loaded once at process start; changing the file or the
// environment requires a restart to take effect.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"jobcore/internal/logging"
)

// Config is the single source of truth for job-orchestration-core
// configuration, populated from .jobcore/config.json and environment
// overrides.
type Config struct {
	LLM      LLMConfig     `json:"llm"`
	Routing  RoutingFile   `json:"routing,omitempty"`
	Logging  LoggingConfig `json:"logging"`
	Limits   Limits        `json:"limits"`
	Timeouts LLMTimeouts   `json:"timeouts"`

	// StorePath is the path to the sqlite job lifecycle store.
	StorePath string `json:"store_path,omitempty"`

	// RoutingTablePath points at the routing.toml override file (empty means
	// no override file is loaded).
	RoutingTablePath string `json:"routing_table_path,omitempty"`
}

// RoutingFile mirrors the inline JSON shape of a routing override, kept here
// so it round-trips through config.json even though the authoritative source
// for routing overrides is routing.toml (see internal/routing).
type RoutingFile struct {
	Overrides map[string]TaskRoute `json:"overrides,omitempty"`
}

// TaskRoute names a provider/model pair for one task.
type TaskRoute struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// DefaultConfig returns the configuration used when no config.json is present.
func DefaultConfig() *Config {
	return &Config{
		LLM: defaultLLMConfig(),
		Logging: LoggingConfig{
			Level:     "info",
			DebugMode: false,
		},
		Limits:    DefaultLimits(),
		Timeouts:  DefaultLLMTimeouts(),
		StorePath: ".jobcore/jobcore.db",
	}
}

// DefaultConfigPath returns the default location of config.json relative to
// the discovered workspace root.
func DefaultConfigPath() string {
	root, err := FindWorkspaceRoot()
	if err != nil {
		return ".jobcore/config.json"
	}
	return filepath.Join(root, ".jobcore", "config.json")
}

// FindWorkspaceRoot walks up from the current directory looking for a
// .jobcore directory or a go.mod file, falling back to the cwd if neither
// is found.
func FindWorkspaceRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	originalDir := dir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".jobcore")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return originalDir, nil
}

// Load reads configuration from path (a JSON file), falling back to defaults
// when the file does not exist, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("Loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("Config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("Failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		logging.BootError("Failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	if provider, _, ok := cfg.LLM.DetectProvider(); ok {
		logging.Boot("Config loaded: default provider resolves to %s", provider)
	} else {
		logging.BootWarn("Config loaded but no provider has an API key configured")
	}

	return cfg, nil
}

// Save writes configuration back to path as indented JSON.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides layers provider API keys, base URLs, and logging level
// from the environment on top of whatever config.json set.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		c.LLM.Anthropic.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.OpenAI.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("XAI_API_KEY"); key != "" {
		c.LLM.XAI.APIKey = key
	}
	if key := os.Getenv("ZAI_API_KEY"); key != "" {
		c.LLM.ZAI.APIKey = key
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.LLM.OpenRouter.APIKey = key
	}

	if url := os.Getenv("ANTHROPIC_BASE_URL"); url != "" {
		c.LLM.Anthropic.BaseURL = url
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		c.LLM.OpenAI.BaseURL = url
	}
	if url := os.Getenv("ZAI_BASE_URL"); url != "" {
		c.LLM.ZAI.BaseURL = url
	}

	if path := os.Getenv("JOBCORE_DB"); path != "" {
		c.StorePath = path
	}
	if path := os.Getenv("JOBCORE_ROUTING_TABLE"); path != "" {
		c.RoutingTablePath = path
	}

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
		c.Logging.DebugMode = true
	}
}

// Validate checks that the configuration is internally consistent enough to
// start the server: at least one provider must have an API key.
func (c *Config) Validate() error {
	if _, _, ok := c.LLM.DetectProvider(); !ok {
		return fmt.Errorf("no LLM provider configured (set ANTHROPIC_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY, XAI_API_KEY, ZAI_API_KEY, or OPENROUTER_API_KEY)")
	}
	return c.Limits.Validate()
}
