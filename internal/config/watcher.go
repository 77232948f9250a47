package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher watches a config file and invokes a callback with each reloaded
// config. Editor save dances (rename, chmod, rapid write bursts) are
// debounced so one edit yields one reload.
type Watcher struct {
	path     string
	logger   *zap.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for the given config file.
func NewWatcher(path string, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     path,
		logger:   logger,
		debounce: defaultDebounce,
	}
}

// Watch blocks until ctx is done, calling onReload with the parsed config
// after each settled change to the file. A file that reloads with an
// error is logged and skipped; the previous config stays in effect.
func (w *Watcher) Watch(ctx context.Context, onReload func(Config)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	defer fw.Close()

	// Watch the directory, not the file: editors replace files by rename
	// and the original inode stops receiving events.
	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	w.logger.Info("config watcher started", zap.String("path", w.path))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.trigger(func() {
				cfg, err := LoadFile(w.path)
				if err != nil {
					w.logger.Error("config reload failed", zap.Error(err))
					return
				}
				w.logger.Info("config reloaded",
					zap.Int("limits", len(cfg.Limits)),
				)
				onReload(cfg)
			})

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			// Keep watching despite transient errors.
			w.logger.Error("config watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == filepath.Clean(w.path)
}

// trigger schedules fn after the debounce interval, resetting the timer
// on every new event so bursts collapse into one callback.
func (w *Watcher) trigger(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, fn)
}
