// Package config loads runtime configuration for the eliza system from the
// .elizaconfig file, with sensible defaults when no file is present.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/eliza/pkg/models"
)

// Manager defines the interface for loading and validating configuration
// from the .elizaconfig file.
type Manager interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperManager implements Manager using Viper for reading YAML files.
type viperManager struct {
	// basePath is the directory where .elizaconfig resides.
	basePath string
}

// NewManager creates a Manager that reads configuration relative to basePath.
func NewManager(basePath string) Manager {
	return &viperManager{basePath: basePath}
}

// Default returns a Config populated with sensible defaults.
func Default() *models.Config {
	return &models.Config{
		ScriptPath:     "",
		TranscriptsDir: "transcripts",
		EventLogPath:   ".eliza_events.jsonl",
		TraceLogPath:   "",
		Prompt:         "you> ",
		Development:    false,
	}
}

// Load reads the .elizaconfig file from the base path using Viper.
// If the file does not exist, defaults are returned.
func (m *viperManager) Load() (*models.Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName(".elizaconfig")
	v.SetConfigType("yaml")
	v.AddConfigPath(m.basePath)

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("script.path", cfg.ScriptPath)
	v.SetDefault("transcripts.dir", cfg.TranscriptsDir)
	v.SetDefault("log.events", cfg.EventLogPath)
	v.SetDefault("log.trace", cfg.TraceLogPath)
	v.SetDefault("repl.prompt", cfg.Prompt)
	v.SetDefault("development", cfg.Development)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// No config file found; run on defaults.
			return cfg, nil
		}
		return nil, fmt.Errorf("reading .elizaconfig: %w", err)
	}

	cfg.ScriptPath = v.GetString("script.path")
	cfg.TranscriptsDir = v.GetString("transcripts.dir")
	cfg.EventLogPath = v.GetString("log.events")
	cfg.TraceLogPath = v.GetString("log.trace")
	cfg.Prompt = v.GetString("repl.prompt")
	cfg.Development = v.GetBool("development")

	return cfg, nil
}

// Validate checks the provided configuration for invalid values and returns
// a clear error message identifying the problem.
func (m *viperManager) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}
	if cfg.TranscriptsDir == "" {
		return fmt.Errorf("transcripts.dir must not be empty")
	}
	if cfg.Prompt == "" {
		return fmt.Errorf("repl.prompt must not be empty")
	}
	return nil
}
