package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchDashboard monitors path and calls onChange with the newly loaded
// settings each time the file is written or replaced. It runs until ctx is
// cancelled.
//
// The parent directory is watched rather than the file, so saves that
// rename a temporary file over path keep being observed.
//
// A reload that fails to parse or validate is logged and the previous
// settings stay active; onChange is not called.
func WatchDashboard(ctx context.Context, path string, onChange func(Dashboard)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	slog.Info("config_watching", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			cfg, err := LoadDashboard(path)
			if err != nil {
				slog.Error("config_reload_failed", "path", path, "error", err)
				continue
			}
			slog.Info("config_reloaded", "path", path, "threshold", cfg.Threshold)
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config_watcher_error", "error", err)
		}
	}
}
