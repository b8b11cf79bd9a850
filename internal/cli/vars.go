package cli

import (
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/internal/observability"
	"github.com/valter-silva-au/eliza/internal/storage"
	"github.com/valter-silva-au/eliza/pkg/models"
	"go.uber.org/zap"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Cfg      *models.Config
	Logger   *zap.Logger

	EventLog        observability.EventLog
	TranscriptStore storage.TranscriptStoreManager

	// DefaultScript is the script loaded at startup: the configured script
	// file, or the embedded 1966 DOCTOR script when none is configured.
	DefaultScript     *eliza.Script
	DefaultScriptName string
	// DefaultScriptPath is the file the default script came from; empty
	// when the embedded script is in use.
	DefaultScriptPath string
)
