package app

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"camelize/internal/core/config"
	"camelize/internal/core/watcher"
	"camelize/internal/shared/util"
)

type WatchOptions struct {
	// ConfigPath, when set, is reloaded on change and applied to later runs.
	ConfigPath string
	// OnReport is called after every run, including the initial one.
	OnReport func(*Report, error)
}

// Watch runs once, then re-runs on debounced source changes until ctx is canceled. Runs are
// throttled to the configured rate; files written by a run are not reported back.
func (s *Service) Watch(ctx context.Context, paths []string, opts WatchOptions) error {
	st := s.snapshot()
	if len(paths) == 0 {
		paths = st.cfg.Paths
	}
	onReport := opts.OnReport
	if onReport == nil {
		onReport = func(*Report, error) {}
	}

	limiter := util.PerMinute(st.cfg.Watch.MaxRunsPerMinute)
	runOnce := func() {
		if err := limiter.Wait(ctx, 1); err != nil {
			return
		}
		report, err := s.Run(ctx, paths)
		if err != nil && ctx.Err() == nil {
			slog.Error("watch run failed", "error", err)
		}
		onReport(report, err)
	}

	w, err := watcher.NewWatcher(st.cfg.Watch.Debounce, liveFilter{s}, func(changed []string) {
		slog.Debug("source change detected", "files", len(changed))
		runOnce()
	})
	if err != nil {
		return err
	}
	defer w.Close()

	s.runMu.Lock()
	s.afterWrite = w.Remember
	s.runMu.Unlock()
	defer func() {
		s.runMu.Lock()
		s.afterWrite = nil
		s.runMu.Unlock()
	}()

	if opts.ConfigPath != "" {
		cw := config.NewWatcher(opts.ConfigPath, func(cfg *config.Config) {
			if err := s.Reconfigure(cfg); err != nil {
				slog.Error("rejected reloaded configuration", "error", err)
				return
			}
			w.SetDebounce(cfg.Watch.Debounce)
			slog.Info("configuration reloaded", "path", opts.ConfigPath)
		})
		if err := cw.Start(ctx); err != nil {
			return err
		}
		defer cw.Stop()
	}

	runOnce()

	if err := w.Watch(watchRoots(paths)); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", paths)

	<-ctx.Done()
	return nil
}

// liveFilter follows configuration reloads.
type liveFilter struct{ s *Service }

func (f liveFilter) SkipDir(path string) bool { return f.s.snapshot().matcher.SkipDir(path) }
func (f liveFilter) Accept(path string) bool  { return f.s.snapshot().matcher.Accept(path) }

// watchRoots maps explicit file arguments to their directories.
func watchRoots(paths []string) []string {
	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		p = filepath.Clean(p)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			p = filepath.Dir(p)
		}
		roots = append(roots, p)
	}
	return sortedUnique(roots)
}
