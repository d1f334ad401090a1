// Package storage reads the Markdown pages of a vault and writes exports.
package storage

import "time"

// Page describes one Markdown page in the vault.
type Page struct {
	// Path is slash-separated and relative to the vault root.
	Path     string
	Checksum string
	ModTime  time.Time
}

// Provider reads vault pages. The viewer never writes to its source.
type Provider interface {
	// Pages returns every .md page outside hidden directories, in lexical
	// path order.
	Pages() ([]Page, error)
	// Read returns the raw bytes of the page at path.
	Read(path string) ([]byte, error)
}
