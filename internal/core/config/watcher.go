// # internal/core/config/watcher.go
package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watcher reloads one config file whenever it is saved and hands the resolved config to apply.
type Watcher struct {
	path   string
	apply  func(*Config)
	done   chan struct{}
	closed sync.Once
	wg     sync.WaitGroup
}

func NewWatcher(path string, apply func(*Config)) *Watcher {
	return &Watcher{
		path:  filepath.Clean(path),
		apply: apply,
		done:  make(chan struct{}),
	}
}

// Start watches the file's directory so editors that save by rename are still seen.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fsw.Close()
		w.loop(ctx, fsw)
	}()
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	slog.Debug("config watcher started", "path", w.path)

	// pending is nil while no save is waiting out the debounce window.
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.saved(event) {
				pending = time.After(reloadDebounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("config watcher error", "path", w.path, "error", err)
		case <-pending:
			pending = nil
			if cfg, err := w.reload(); err != nil {
				slog.Error("config reload failed, keeping previous config", "path", w.path, "error", err)
			} else if w.apply != nil {
				w.apply(cfg)
			}
		case <-w.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) saved(event fsnotify.Event) bool {
	return filepath.Clean(event.Name) == w.path && event.Op&(fsnotify.Write|fsnotify.Create) != 0
}

// reload reads the file again with paths anchored at its directory, like the initial load.
func (w *Watcher) reload() (*Config, error) {
	cfg, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	ResolvePaths(cfg, filepath.Dir(w.path))
	slog.Info("config reloaded", "path", w.path)
	return cfg, nil
}

// Stop ends the watch loop and waits for it. Later calls are no-ops.
func (w *Watcher) Stop() {
	w.closed.Do(func() { close(w.done) })
	w.wg.Wait()
}
