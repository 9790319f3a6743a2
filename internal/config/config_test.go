package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LLM.FlashModel != "gemini-2.5-flash" {
		t.Errorf("expected FlashModel=gemini-2.5-flash, got %s", cfg.LLM.FlashModel)
	}
	if cfg.Gate.MaxAttempts != 2 {
		t.Errorf("expected MaxAttempts=2, got %d", cfg.Gate.MaxAttempts)
	}
	if cfg.Gate.ConfidenceThreshold != 0.75 {
		t.Errorf("expected ConfidenceThreshold=0.75, got %f", cfg.Gate.ConfidenceThreshold)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := DefaultConfig()
	cfg.LLM.GeminiAPIKey = "test-gemini-key"
	cfg.Gate.MaxAttempts = 3

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.LLM.GeminiAPIKey != "test-gemini-key" {
		t.Errorf("expected GeminiAPIKey=test-gemini-key, got %s", loaded.LLM.GeminiAPIKey)
	}
	if loaded.Gate.MaxAttempts != 3 {
		t.Errorf("expected MaxAttempts=3, got %d", loaded.Gate.MaxAttempts)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GROQ_API_KEY", "")

	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when no LLM API key is configured")
	}

	cfg.LLM.GroqAPIKey = "groq-key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected no error once an API key is set, got %v", err)
	}
}

func TestGetLLMTimeout_FallsBackOnUnparseable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Timeout = "not-a-duration"
	if got := cfg.GetLLMTimeout(); got.Seconds() != 60 {
		t.Errorf("expected 60s fallback, got %v", got)
	}
}

func TestWriteLoggingConfig_WritesExpectedShape(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Logging.DebugMode = true
	cfg.Logging.Level = "debug"

	if err := cfg.WriteLoggingConfig(tmpDir); err != nil {
		t.Fatalf("WriteLoggingConfig: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, ".scout", "config.json"))
	if err != nil {
		t.Fatalf("reading written config: %v", err)
	}
	if !strings.Contains(string(data), `"debug_mode": true`) {
		t.Errorf("expected debug_mode:true in written config, got %s", data)
	}
}
