package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/HenryZhang-ZHY/beetle/internal/catalog"
)

// Watcher runs incremental updates on one index as its target changes.
type Watcher struct {
	catalog  *catalog.Catalog
	name     string
	debounce time.Duration
}

// New creates a watcher for the named index.
func New(cat *catalog.Catalog, name string, debounce time.Duration) *Watcher {
	return &Watcher{catalog: cat, name: name, debounce: debounce}
}

// Run watches the index target until ctx is cancelled. Each settled burst
// of file events triggers one incremental update; update failures are
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context) error {
	meta, err := w.catalog.GetMetadata(w.name)
	if err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fsw.Close() }()

	if err := addTree(fsw, meta.TargetPath); err != nil {
		return err
	}

	debouncer := NewDebouncer(w.debounce)
	defer debouncer.Stop()

	slog.Info("watching target",
		slog.String("index", w.name),
		slog.String("target", meta.TargetPath))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if skipEvent(event) {
				continue
			}
			// New directories join the watch so nested changes surface.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(fsw, event.Name)
				}
			}
			debouncer.Trigger()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", slog.String("error", err.Error()))

		case <-debouncer.C():
			stats, err := w.catalog.Update(ctx, w.name)
			if err != nil {
				slog.Warn("incremental update failed",
					slog.String("index", w.name),
					slog.String("error", err.Error()))
				continue
			}
			if stats.Added+stats.Modified+stats.Removed > 0 {
				slog.Info("index refreshed",
					slog.String("index", w.name),
					slog.Int("added", stats.Added),
					slog.Int("modified", stats.Modified),
					slog.Int("removed", stats.Removed))
			}
		}
	}
}

// skipEvent drops events for hidden entries, which the scanner ignores
// anyway.
func skipEvent(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	return strings.HasPrefix(base, ".")
}

// addTree registers dir and every non-hidden subdirectory with the
// watcher. fsnotify watches are not recursive.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			slog.Debug("failed to watch directory",
				slog.String("dir", path),
				slog.String("error", err.Error()))
		}
		return nil
	})
}
