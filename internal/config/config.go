// Package config loads service configuration from an optional YAML file
// plus CODEVAULT_-prefixed environment variables. Nested keys use a double
// underscore in the environment, so CODEVAULT_SERVER__PORT maps to
// server.port and CODEVAULT_PROVIDERS__OPENAI__API_KEY to
// providers.openai.api_key.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "CODEVAULT_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Auth       AuthConfig       `koanf:"auth"`
	Providers  ProvidersConfig  `koanf:"providers"`
	Generation GenerationConfig `koanf:"generation"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

type StorageConfig struct {
	// Type selects the store backend: sqlite or memory.
	Type   string       `koanf:"type"`
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type AuthConfig struct {
	// APIKeys holds sha256 hashes of accepted keys. Empty disables auth.
	APIKeys []APIKeyConfig `koanf:"api_keys"`
}

type APIKeyConfig struct {
	KeyHash     string `koanf:"key_hash"`
	Description string `koanf:"description"`
}

type ProvidersConfig struct {
	OpenAI    ProviderConfig `koanf:"openai"`
	Anthropic ProviderConfig `koanf:"anthropic"`
	DeepSeek  ProviderConfig `koanf:"deepseek"`
}

type ProviderConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

// Enabled reports whether the provider has a key and should be registered.
func (p ProviderConfig) Enabled() bool {
	return p.APIKey != ""
}

type GenerationConfig struct {
	// SystemPrompt overrides the built-in system instruction when set.
	SystemPrompt string `koanf:"system_prompt"`

	// CacheSize bounds the completion cache. Zero disables it.
	CacheSize int `koanf:"cache_size"`
}

// Load reads configuration. path names an optional YAML file; environment
// variables override file values.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("server.port", 8080)
	k.Set("storage.type", "sqlite")
	k.Set("storage.sqlite.path", "codevault.db")
	k.Set("generation.cache_size", 128)

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
