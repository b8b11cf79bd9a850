// Package integration connects the conversation engine to the outside world:
// filesystem watching for live script reload.
package integration

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/valter-silva-au/eliza/internal/eliza"
	"github.com/valter-silva-au/eliza/internal/script"
	"go.uber.org/zap"
)

// ScriptWatcher watches a script file and reparses it whenever it changes on
// disk. A successfully parsed script is handed to the reload callback; a
// script that fails to parse is logged and the previous one stays in effect.
type ScriptWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	onReload func(*eliza.Script)
	logger   *zap.Logger
	debounce time.Duration
	pending  time.Time
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

// NewScriptWatcher creates a watcher for the given script file. onReload is
// called from the watcher goroutine with each successfully reparsed script.
func NewScriptWatcher(path string, onReload func(*eliza.Script), logger *zap.Logger) (*ScriptWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptWatcher{
		watcher:  w,
		path:     path,
		onReload: onReload,
		logger:   logger,
		debounce: 250 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It is non-blocking; the watch loop runs in its own
// goroutine until Stop is called or ctx is cancelled.
func (w *ScriptWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the containing directory: editors typically replace the file,
	// which drops a watch placed on the file itself.
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the watch loop to exit.
func (w *ScriptWatcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *ScriptWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("script watch error", zap.Error(err))
		case <-ticker.C:
			w.reloadIfSettled()
		}
	}
}

func (w *ScriptWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *ScriptWatcher) reloadIfSettled() {
	w.mu.Lock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = time.Time{}
	w.mu.Unlock()

	s, err := script.LoadFile(w.path)
	if err != nil {
		w.logger.Warn("script reload failed, keeping previous script",
			zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("script reloaded", zap.String("path", w.path))
	w.onReload(s)
}
