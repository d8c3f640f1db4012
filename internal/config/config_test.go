package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q", cfg.Storage.Type)
	}
	if cfg.Storage.SQLite.Path != "codevault.db" {
		t.Errorf("Storage.SQLite.Path = %q", cfg.Storage.SQLite.Path)
	}
	if cfg.Generation.CacheSize != 128 {
		t.Errorf("Generation.CacheSize = %d", cfg.Generation.CacheSize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CODEVAULT_SERVER__PORT", "9090")
	t.Setenv("CODEVAULT_PROVIDERS__OPENAI__API_KEY", "sk-test")
	t.Setenv("CODEVAULT_GENERATION__SYSTEM_PROMPT", "custom")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Providers.OpenAI.APIKey != "sk-test" {
		t.Errorf("OpenAI.APIKey = %q", cfg.Providers.OpenAI.APIKey)
	}
	if !cfg.Providers.OpenAI.Enabled() {
		t.Error("OpenAI provider should be enabled")
	}
	if cfg.Providers.Anthropic.Enabled() {
		t.Error("Anthropic provider should be disabled without a key")
	}
	if cfg.Generation.SystemPrompt != "custom" {
		t.Errorf("SystemPrompt = %q", cfg.Generation.SystemPrompt)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  port: 7070
storage:
  type: memory
auth:
  api_keys:
    - key_hash: abc123
      description: dev key
providers:
  deepseek:
    api_key: ds-test
    base_url: https://example.com/v1
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Storage.Type != "memory" {
		t.Errorf("Storage.Type = %q", cfg.Storage.Type)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0].KeyHash != "abc123" {
		t.Errorf("Auth.APIKeys = %+v", cfg.Auth.APIKeys)
	}
	if cfg.Providers.DeepSeek.BaseURL != "https://example.com/v1" {
		t.Errorf("DeepSeek.BaseURL = %q", cfg.Providers.DeepSeek.BaseURL)
	}
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7070\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CODEVAULT_SERVER__PORT", "6060")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("Server.Port = %d, want env override 6060", cfg.Server.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file should fail")
	}
}
