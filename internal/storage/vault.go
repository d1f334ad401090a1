package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Vault is a Provider over a directory tree of Markdown pages.
type Vault struct {
	root string
	fsys fs.FS
}

// OpenVault opens the vault rooted at dir, which must exist.
func OpenVault(dir string) (*Vault, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &Vault{root: abs, fsys: os.DirFS(abs)}, nil
}

// NewVault wraps an existing file system, e.g. an fstest.MapFS. Root is
// empty for such vaults.
func NewVault(fsys fs.FS) *Vault {
	return &Vault{fsys: fsys}
}

// Root is the absolute directory the vault was opened at.
func (v *Vault) Root() string {
	return v.root
}

func isPage(name string) bool {
	return strings.HasSuffix(name, ".md")
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "."
}

// Pages walks the vault. fs.WalkDir visits entries in lexical order, so the
// result is sorted by path.
func (v *Vault) Pages() ([]Page, error) {
	var out []Page
	err := fs.WalkDir(v.fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if hidden(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !isPage(d.Name()) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		data, err := fs.ReadFile(v.fsys, p)
		if err != nil {
			return err
		}
		out = append(out, Page{Path: p, Checksum: Checksum(data), ModTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: pages: %w", err)
	}
	return out, nil
}

// Read returns one page. Paths that leave the vault or do not name a .md
// file are rejected.
func (v *Vault) Read(p string) ([]byte, error) {
	if !fs.ValidPath(p) || !isPage(path.Base(p)) {
		return nil, fmt.Errorf("storage: read %q: %w", p, fs.ErrInvalid)
	}
	data, err := fs.ReadFile(v.fsys, p)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", p, err)
	}
	return data, nil
}

// Checksum returns the hex SHA-256 of data.
func Checksum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}
