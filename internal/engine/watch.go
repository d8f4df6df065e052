package engine

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch re-extracts files under the roots as they change until ctx is
// cancelled. Changes are debounced per file. onResult, if set, receives
// each outcome on the watch goroutine.
func (e *Engine) Watch(ctx context.Context, onResult func(Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, root := range e.roots {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("root %s: %w", root, err)
		}
		if !info.IsDir() {
			if err := watcher.Add(filepath.Dir(root)); err != nil {
				return fmt.Errorf("failed to watch %s: %w", root, err)
			}
			continue
		}
		if err := e.watchDirRecursive(watcher, root); err != nil {
			return err
		}
	}
	e.logger.Info("watching for changes", slog.Any("roots", e.roots))

	deb := newDebouncer(e.debounce)
	defer deb.stop()

	emit := func(r Result) {
		if onResult != nil {
			onResult(r)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(path); err == nil && info.IsDir() {
					if e.inScope(path) && !e.excluded(info.Name()) {
						if err := e.watchDirRecursive(watcher, path); err != nil {
							e.logger.Warn("failed to watch new directory", slog.String("path", path), slog.String("error", err.Error()))
						}
					}
					continue
				}
			}

			g, ok := e.Grammar(path)
			if !ok || !e.inScope(path) {
				continue
			}

			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				deb.cancel(path)
				emit(e.remove(path, g.Name))
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				deb.touch(path)
			}

		case f := <-deb.fired:
			if !deb.current(f) {
				continue
			}
			if r, ok := e.reextract(ctx, f.path); ok {
				emit(r)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// watchDirRecursive adds dir and its non-excluded subdirectories to the watcher.
func (e *Engine) watchDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && e.excluded(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// reextract extracts a changed file and persists the outcome. It reports
// false when the file is gone by the time the debounce fires.
func (e *Engine) reextract(ctx context.Context, path string) (Result, bool) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Result{}, false
	}
	g, ok := e.Grammar(path)
	if !ok {
		return Result{}, false
	}

	r := e.ExtractFile(ctx, File{Path: path, Grammar: g, Size: info.Size()})
	if e.store != nil && (r.Status == StatusExtracted || r.Status == StatusFailed) {
		if _, err := e.persist([]Result{r}); err != nil {
			e.logger.Error("failed to persist result", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	e.logger.Info("file re-extracted",
		slog.String("path", path),
		slog.String("status", string(r.Status)),
		slog.Int("nodes", r.Stats.Nodes))
	return r, true
}

// remove drops a deleted file from the store.
func (e *Engine) remove(path, grammarName string) Result {
	if e.store != nil {
		if err := e.store.DeleteFile(path); err != nil {
			e.logger.Error("failed to delete file", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	e.logger.Info("file removed", slog.String("path", path))
	return Result{Path: path, Grammar: grammarName, Status: StatusRemoved}
}
