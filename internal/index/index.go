package index

import (
	"github.com/starford/sitegraph/internal/parser"
	"github.com/starford/sitegraph/internal/sitegraph"
)

// NoteIndex defines the interface for vault indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type NoteIndex interface {
	UpsertNote(n NoteRow, links []parser.Link) error
	DeleteNote(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Document() (*sitegraph.Document, error)
	Close() error
}

// Verify *DB satisfies NoteIndex at compile time.
var _ NoteIndex = (*DB)(nil)
