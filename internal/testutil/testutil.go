// Package testutil provides shared test fixtures: sample graph documents,
// temporary vaults and index databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/sitegraph/internal/index"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/storage"
)

// Chain returns HomePage -> A -> {B, C} with B linking back to A.
// The cheapest path HomePage -> C costs 3.
func Chain() *sitegraph.Document {
	return &sitegraph.Document{Nodes: map[string]sitegraph.Node{
		"HomePage": {Title: "Home", Links: []sitegraph.Link{{Link: "A"}}},
		"A":        {Links: []sitegraph.Link{{Link: "B"}, {Link: "C"}}},
		"B":        {Links: []sitegraph.Link{{Link: "A"}}},
		"C":        {Links: []sitegraph.Link{}},
	}}
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "sitegraph-test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault holding files (relative path to
// content) and returns its root with a storage.Provider over it.
func TestVault(t *testing.T, files map[string]string) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(vaultDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := storage.OpenVault(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}
