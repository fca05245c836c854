// Package config loads hippo's configuration: built-in defaults, merged
// under ~/.hippo/config.yaml, merged under HIPPO_* environment variables.
// CLI flags override last at the command layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/hippo/internal/scoring"
)

// Config holds process-wide settings.
type Config struct {
	DBPath      string          `yaml:"db_path"`
	Provider    string          `yaml:"provider"` // ollama, openai, anthropic
	Model       string          `yaml:"model"`
	APIKey      string          `yaml:"api_key"`
	BaseURL     string          `yaml:"base_url"`
	MaxTokens   int             `yaml:"max_tokens"`
	Temperature float64         `yaml:"temperature"`
	Scoring     scoring.Weights `yaml:"scoring"`
	Compact     CompactConfig   `yaml:"compact"`
	SessionLog  string          `yaml:"session_log"`
}

// CompactConfig holds merge-pass tuning.
type CompactConfig struct {
	Threshold float64 `yaml:"threshold"`
	Limit     int     `yaml:"limit"`
}

// Default returns the built-in configuration.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath:      filepath.Join(home, ".hippo", "memory.db"),
		Provider:    "ollama",
		Model:       "llama3.1",
		MaxTokens:   1024,
		Temperature: 0.3,
		Scoring:     scoring.DefaultWeights(),
		Compact:     CompactConfig{Threshold: 0.3, Limit: 1000},
		SessionLog:  filepath.Join(home, ".hippo", "Session_Summary_Log.md"),
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".hippo", "config.yaml")
}

// Load builds the effective configuration from defaults, the YAML file at
// path (missing file is fine), and environment variables, in that order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HIPPO_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HIPPO_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("HIPPO_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("HIPPO_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("HIPPO_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("HIPPO_SESSION_LOG"); v != "" {
		cfg.SessionLog = v
	}
}
