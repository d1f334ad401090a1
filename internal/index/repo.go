package index

import (
	"fmt"
	"time"

	"github.com/starford/sitegraph/internal/parser"
)

// NoteRow represents a row in the notes table.
type NoteRow struct {
	Path      string
	Title     string
	Checksum  string
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// UpsertNote inserts or replaces a note and its ordered links within a transaction.
func (db *DB) UpsertNote(n NoteRow, links []parser.Link) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = time.Now()
	}
	_, err = tx.Exec(`
		INSERT INTO notes (path, title, checksum, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, n.Path, n.Title, n.Checksum, n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert note: %w", err)
	}

	// Replace links: delete old then insert in document order.
	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, n.Path); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO links (source, position, target, display_text) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for i, l := range links {
			if _, err := stmt.Exec(n.Path, i, l.Target, l.Alias); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteNote removes a note and its outgoing links.
func (db *DB) DeleteNote(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`DELETE FROM links WHERE source = ?`, path); err != nil {
		return fmt.Errorf("index: delete links: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM notes WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete note: %w", err)
	}

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a note, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM notes WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns the stored checksum of every indexed note by path.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM notes`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Search returns nodes whose id or title contains query.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	like := "%" + query + "%"
	rows, err := db.conn.Query(`
		SELECT path, title
		FROM notes
		WHERE title LIKE ? OR path LIKE ?
		ORDER BY path
		LIMIT ?
	`, like, like, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var path string
		var r SearchResult
		if err := rows.Scan(&path, &r.Title); err != nil {
			return nil, err
		}
		r.ID = NodeID(path)
		out = append(out, r)
	}
	return out, rows.Err()
}
