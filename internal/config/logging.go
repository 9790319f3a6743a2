package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoggingConfig configures scout's category logger. internal/logging
// reads its own .scout/config.json directly (to avoid importing this
// package and creating a cycle), so LoggingConfig's job is just to hold
// the values cmd/scout read from config.yaml and then write out in the
// shape internal/logging expects, via WriteLoggingConfig.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode"`
	Level      string          `yaml:"level" json:"level"`
	JSONFormat bool            `yaml:"json_format" json:"json_format"`
	Categories map[string]bool `yaml:"categories,omitempty" json:"categories,omitempty"`
}

// DefaultLoggingConfig returns logging disabled (production mode),
// matching internal/logging's own no-config default.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "info",
	}
}

type loggingConfigFile struct {
	Logging LoggingConfig `json:"logging"`
}

// WriteLoggingConfig writes c.Logging to repoRoot/.scout/config.json in
// the shape internal/logging.loadConfig expects, so a single config.yaml
// edit also governs log verbosity without hand-authoring a second file.
func (c *Config) WriteLoggingConfig(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".scout")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("config: creating %s: %w", dir, err)
	}
	data, err := json.MarshalIndent(loggingConfigFile{Logging: c.Logging}, "", "  ")
	if err != nil {
		return fmt.Errorf("config: marshaling logging config: %w", err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
