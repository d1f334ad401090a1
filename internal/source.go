package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/sitegraph/internal/graphservice"
	"github.com/starford/sitegraph/internal/index"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/storage"
)

const fileReloadDelay = 150 * time.Millisecond

// Source is an opened graph document source. DB and Store are nil for
// file sources.
type Source struct {
	cfg    GraphConfig
	logger *slog.Logger

	DB    *index.DB
	Store storage.Provider
}

// OpenSource opens the configured graph source. Vault sources are synced
// into the index before returning.
func OpenSource(cfg GraphConfig, logger *slog.Logger) (*Source, error) {
	src := &Source{cfg: cfg, logger: logger}
	if cfg.Source != GraphSourceVault {
		return src, nil
	}

	if err := os.MkdirAll(cfg.Vault, 0o755); err != nil {
		return nil, fmt.Errorf("create vault dir: %w", err)
	}
	store, err := storage.OpenVault(cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	db, err := index.Open(cfg.Index)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	stats, err := index.Sync(db, store, logger)
	if err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("vault synced",
			slog.Int("indexed", stats.Indexed),
			slog.Int("removed", stats.Removed),
			slog.Int("failed", stats.Failed))
	}
	src.DB, src.Store = db, store
	return src, nil
}

// Document reads the current graph document from the source.
func (s *Source) Document() (*sitegraph.Document, error) {
	if s.DB != nil {
		return s.DB.Document()
	}
	f, err := os.Open(s.cfg.File)
	if err != nil {
		return nil, fmt.Errorf("open graph file: %w", err)
	}
	defer f.Close()
	return sitegraph.Decode(f)
}

// Watch runs until ctx is cancelled, calling reload with each new document
// once the source has been quiet for a moment. onChange, if non-nil, sees
// every vault file change.
func (s *Source) Watch(ctx context.Context, onChange index.EventCallback, reload func(*sitegraph.Document)) error {
	settled := func() {
		doc, err := s.Document()
		if err != nil {
			s.logger.Warn("watcher: reload failed", slog.String("error", err.Error()))
			return
		}
		s.logger.Debug("watcher: reload", slog.Int("nodes", len(doc.Nodes)))
		reload(doc)
	}

	if s.DB != nil {
		w := &index.Watcher{
			DB:        s.DB,
			Store:     s.Store,
			Root:      s.cfg.Vault,
			Logger:    s.logger,
			OnChange:  onChange,
			OnSettled: settled,
		}
		return w.Run(ctx)
	}
	return s.watchFile(ctx, settled)
}

// watchFile watches the directory holding the graph file, since editors
// often replace a file by renaming over it.
func (s *Source) watchFile(ctx context.Context, settled func()) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	abs, err := filepath.Abs(s.cfg.File)
	if err != nil {
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	s.logger.Info("watcher: started", slog.String("file", abs))

	t := time.NewTimer(fileReloadDelay)
	t.Stop()
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("watcher: stopped")
			return nil
		case <-t.C:
			settled()
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			t.Reset(fileReloadDelay)
		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// Searcher returns the index, or nil for file sources so the service
// matches titles in memory.
func (s *Source) Searcher() graphservice.Searcher {
	if s.DB == nil {
		return nil
	}
	return s.DB
}

// Close releases the index, if any.
func (s *Source) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
