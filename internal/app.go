// Package internal provides the App struct that wires all components of the
// eliza system together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/eliza/internal/cli"
	"github.com/valter-silva-au/eliza/internal/config"
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/internal/observability"
	"github.com/valter-silva-au/eliza/internal/script"
	"github.com/valter-silva-au/eliza/internal/storage"
	"github.com/valter-silva-au/eliza/pkg/models"
	"go.uber.org/zap"
)

// App holds all service dependencies for the eliza system.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr config.Manager
	Cfg       *models.Config

	// Observability
	Logger   *zap.Logger
	EventLog observability.EventLog

	// Storage
	TranscriptStore storage.TranscriptStoreManager

	// The script loaded at startup.
	Script     *eliza.Script
	ScriptName string
	ScriptPath string
}

// NewApp creates and wires all components of the eliza system. basePath is
// the directory holding .elizaconfig and, by default, all data.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = config.NewManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	app.Cfg = cfg

	// --- Observability ---
	app.Logger = observability.NewLogger(resolvePath(basePath, cfg.TraceLogPath), cfg.Development)

	app.EventLog, err = observability.NewJSONLEventLog(resolvePath(basePath, cfg.EventLogPath))
	if err != nil {
		// Non-fatal: run without event logging if the log can't be created.
		app.Logger.Warn("event log disabled", zap.Error(err))
		app.EventLog = nil
	}

	// --- Storage ---
	app.TranscriptStore = storage.NewTranscriptStoreManager(resolvePath(basePath, cfg.TranscriptsDir))
	_ = app.TranscriptStore.Load() // Non-fatal: empty store on first use.

	// --- Script ---
	if cfg.ScriptPath != "" {
		app.ScriptPath = resolvePath(basePath, cfg.ScriptPath)
		app.Script, err = script.LoadFile(app.ScriptPath)
		if err != nil {
			return nil, fmt.Errorf("loading configured script: %w", err)
		}
		app.ScriptName = scriptBaseName(app.ScriptPath)
	} else {
		app.Script, err = script.LoadDoctor()
		if err != nil {
			return nil, fmt.Errorf("loading embedded script: %w", err)
		}
		app.ScriptName = "doctor1966"
	}
	if err := app.Script.Validate(); err != nil {
		return nil, fmt.Errorf("validating script %s: %w", app.ScriptName, err)
	}

	if app.EventLog != nil {
		_ = app.EventLog.Write(observability.Event{
			Type:    observability.EventScriptLoaded,
			Message: app.ScriptName,
		})
	}

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = app.Cfg
	cli.Logger = app.Logger
	cli.EventLog = app.EventLog
	cli.TranscriptStore = app.TranscriptStore
	cli.DefaultScript = app.Script
	cli.DefaultScriptName = app.ScriptName
	cli.DefaultScriptPath = app.ScriptPath

	return app, nil
}

// Close releases resources held by the App.
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the eliza data directory.
// It checks the ELIZA_HOME env var, then walks up from the working
// directory looking for an .elizaconfig file, then falls back to cwd.
func ResolveBasePath() string {
	if home := os.Getenv("ELIZA_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		for _, name := range []string{".elizaconfig", ".elizaconfig.yaml", ".elizaconfig.yml"} {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// resolvePath anchors a relative config path at the base path.
func resolvePath(basePath, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(basePath, path)
}

func scriptBaseName(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}
