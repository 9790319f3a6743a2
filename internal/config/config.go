// Package config loads Scout's configuration: a YAML file on disk,
// overlaid with environment variable overrides, laid out one file per
// concern (llm, gate, ux, paths).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"scout/internal/logging"
)

// Config holds all of Scout's configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Gate    GateConfig    `yaml:"gate"`
	Paths   PathsConfig   `yaml:"paths"`
	UX      UXConfig      `yaml:"ux"`
	Logging LoggingConfig `yaml:"logging"`
}

// DefaultConfig returns Scout's default configuration.
func DefaultConfig() *Config {
	return &Config{
		LLM:     DefaultLLMConfig(),
		Gate:    DefaultGateConfig(),
		Paths:   DefaultPathsConfig(),
		UX:      DefaultUXConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// Load loads configuration from a YAML file, falling back to defaults
// when the file does not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("config: loading from %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config: no config file at %s, using defaults", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("config: failed to read %s: %v", path, err)
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("config: failed to parse %s: %v", path, err)
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config: loaded (flash=%s pro=%s middle_manager=%s)", cfg.LLM.FlashModel, cfg.LLM.ProModel, cfg.LLM.MiddleManagerModel)
	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("config: creating directory for %s: %w", path, err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshaling: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies GEMINI_API_KEY/GROQ_API_KEY and the SCOUT_*
// cosmetic toggles over whatever was loaded from the file.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.GeminiAPIKey = key
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		c.LLM.GroqAPIKey = key
	}
	if v := os.Getenv("SCOUT_WHIMSY"); v != "" {
		c.UX.Whimsy = isTruthy(v)
	}
	if v := os.Getenv("SCOUT_NO_COLOR"); v != "" {
		c.UX.NoColor = isTruthy(v)
	}
	if v := os.Getenv("SCOUT_HIDE_COST"); v != "" {
		c.UX.HideCost = isTruthy(v)
	}
}

func isTruthy(v string) bool {
	return v == "1" || v == "true"
}

// GetLLMTimeout returns the configured LLM call timeout as a duration,
// falling back to 60s if unset or unparseable.
func (c *Config) GetLLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.LLM.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// Validate reports a config_missing error when neither provider's API
// key is set - at least one LLM client must be constructible.
func (c *Config) Validate() error {
	if c.LLM.GeminiAPIKey == "" && c.LLM.GroqAPIKey == "" {
		return fmt.Errorf("config: no LLM API key configured (set GEMINI_API_KEY and/or GROQ_API_KEY)")
	}
	return nil
}
