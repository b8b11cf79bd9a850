// Package models defines the plain data structures shared across the
// storage, CLI, and MCP layers.
package models

// Config holds the resolved application configuration, read from an
// optional .elizaconfig YAML file with defaults for every field.
type Config struct {
	// ScriptPath is the conversation script to load. Empty means the
	// embedded 1966 DOCTOR script.
	ScriptPath string `yaml:"script_path"`

	// TranscriptsDir is where saved conversations are stored, relative
	// to the base path unless absolute.
	TranscriptsDir string `yaml:"transcripts_dir"`

	// EventLogPath is the JSONL event log file.
	EventLogPath string `yaml:"event_log_path"`

	// TraceLogPath is the rotating debug trace log. Empty disables
	// file logging.
	TraceLogPath string `yaml:"trace_log_path"`

	// Prompt is the REPL input prompt.
	Prompt string `yaml:"prompt"`

	// Development switches the logger to console-friendly output.
	Development bool `yaml:"development"`
}
