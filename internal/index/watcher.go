package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/sitegraph/internal/storage"
)

const (
	defaultDebounce = 150 * time.Millisecond
	reconcileDelay  = 200 * time.Millisecond
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Watcher keeps the index in step with the vault on disk.
type Watcher struct {
	DB     NoteIndex
	Store  storage.Provider
	Root   string
	Logger *slog.Logger
	// OnChange runs after each index mutation.
	OnChange EventCallback
	// OnSettled runs once no mutation has happened for Debounce. It is the
	// signal to recompile the graph document.
	OnSettled func()
	Debounce  time.Duration
}

// timer is a resettable one-shot whose channel is nil while disarmed.
type timer struct {
	t *time.Timer
	c <-chan time.Time
}

func (t *timer) arm(d time.Duration) {
	if t.t == nil {
		t.t = time.NewTimer(d)
	} else {
		t.t.Reset(d)
	}
	t.c = t.t.C
}

func (t *timer) fired() {
	t.c = nil
}

func (t *timer) stop() {
	if t.t != nil {
		t.t.Stop()
	}
}

// Run watches the vault root until ctx is cancelled.
//
// New directories created at runtime are automatically added to the watch
// list. Rename events trigger a reconciliation pass that removes stale
// index entries whose files no longer exist on disk.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := addDirsRecursive(fw, w.Root); err != nil {
		return err
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w.Logger.Info("watcher: started", slog.String("root", w.Root))

	var reconcile, settle timer
	defer reconcile.stop()
	defer settle.stop()

	changed := func(kind, rel string) {
		if w.OnChange != nil {
			w.OnChange(kind, rel)
		}
		settle.arm(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("watcher: stopped")
			return nil

		case <-reconcile.c:
			reconcile.fired()
			w.reconcile(changed)

		case <-settle.c:
			settle.fired()
			if w.OnSettled != nil {
				w.OnSettled()
			}

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev, changed, func() { reconcile.arm(reconcileDelay) })

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event, changed EventCallback, scheduleReconcile func()) {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if hidden(info.Name()) {
				return
			}
			if addErr := addDirsRecursive(fw, absPath); addErr != nil {
				w.Logger.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			}
			// Files may have landed before the directory was watched.
			scheduleReconcile()
			return
		}
	}

	if !strings.HasSuffix(absPath, ".md") {
		return
	}
	rel, relErr := filepath.Rel(w.Root, absPath)
	if relErr != nil {
		return
	}
	rel = filepath.ToSlash(rel)

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		data, readErr := w.Store.Read(rel)
		if readErr != nil {
			w.Logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", readErr.Error()))
			return
		}
		if cs, _ := w.DB.GetChecksum(rel); cs == storage.Checksum(data) {
			return
		}
		if idxErr := indexFile(w.DB, rel, data); idxErr != nil {
			w.Logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", idxErr.Error()))
			return
		}
		kind := "updated"
		if ev.Op&fsnotify.Create != 0 {
			kind = "created"
		}
		w.Logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("op", kind))
		changed(kind, rel)

	case ev.Op&fsnotify.Remove != 0:
		if delErr := w.DB.DeleteNote(rel); delErr != nil {
			w.Logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
			return
		}
		w.Logger.Debug("watcher: deleted", slog.String("path", rel))
		changed("deleted", rel)

	case ev.Op&fsnotify.Rename != 0:
		// fsnotify reports Rename on the old path only; the new path shows
		// up as a Create when it stays inside a watched directory.
		if delErr := w.DB.DeleteNote(rel); delErr != nil {
			w.Logger.Warn("watcher: rename delete failed", slog.String("path", rel), slog.String("error", delErr.Error()))
		} else {
			changed("deleted", rel)
		}
		scheduleReconcile()
	}
}

// reconcile removes index entries without a file and indexes files that
// are missing or stale.
func (w *Watcher) reconcile(changed EventCallback) {
	checksums, err := w.DB.AllChecksums()
	if err != nil {
		w.Logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}
	entries, err := w.Store.Pages()
	if err != nil {
		w.Logger.Warn("reconcile: pages failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string]string, len(entries))
	for _, e := range entries {
		disk[e.Path] = e.Checksum
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if delErr := w.DB.DeleteNote(p); delErr == nil {
			w.Logger.Debug("reconcile: removed stale", slog.String("path", p))
			changed("deleted", p)
		}
	}

	for p, cs := range disk {
		old, known := checksums[p]
		if old == cs {
			continue
		}
		data, readErr := w.Store.Read(p)
		if readErr != nil {
			continue
		}
		if idxErr := indexFile(w.DB, p, data); idxErr == nil {
			kind := "updated"
			if !known {
				kind = "created"
			}
			w.Logger.Debug("reconcile: indexed", slog.String("path", p))
			changed(kind, p)
		}
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return fw.Add(p)
	})
}
