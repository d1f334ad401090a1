package index

import (
	"log/slog"

	"github.com/starford/sitegraph/internal/parser"
	"github.com/starford/sitegraph/internal/storage"
)

// SyncStats counts what one Sync pass changed.
type SyncStats struct {
	Indexed int
	Removed int
	Failed  int
}

// Changed reports whether the pass touched the index.
func (s SyncStats) Changed() bool {
	return s.Indexed > 0 || s.Removed > 0
}

// Sync walks the vault and brings the index up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the index
func Sync(db NoteIndex, store storage.Provider, logger *slog.Logger) (SyncStats, error) {
	var stats SyncStats
	entries, err := store.Pages()
	if err != nil {
		return stats, err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}

	disk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		disk[e.Path] = struct{}{}

		if checksums[e.Path] == e.Checksum {
			continue
		}

		data, err := store.Read(e.Path)
		if err != nil {
			stats.Failed++
			logger.Warn("sync: read failed", slog.String("path", e.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, e.Path, data); err != nil {
			stats.Failed++
			logger.Warn("sync: index failed", slog.String("path", e.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		logger.Debug("sync: indexed", slog.String("path", e.Path))
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteNote(p); err != nil {
			stats.Failed++
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
	}

	return stats, nil
}

// indexFile parses data and upserts it into the index.
func indexFile(db NoteIndex, path string, data []byte) error {
	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	row := NoteRow{
		Path:     path,
		Title:    res.Title,
		Checksum: storage.Checksum(data),
	}
	return db.UpsertNote(row, res.Links)
}
