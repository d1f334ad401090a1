// Package index keeps a SQLite mirror of a Markdown vault's pages and
// wikilinks and compiles it into a graph document.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	path       TEXT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS links (
	source       TEXT NOT NULL,
	position     INTEGER NOT NULL,
	target       TEXT NOT NULL,
	display_text TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (source, position)
);

CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
`

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
// ":memory:" gives a private in-memory index.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if dsn == ":memory:" {
		// Each pooled connection would otherwise get its own database.
		conn.SetMaxOpenConns(1)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
