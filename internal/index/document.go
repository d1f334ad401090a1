package index

import (
	"fmt"
	"path"
	"strings"

	"github.com/starford/sitegraph/internal/sitegraph"
)

// NodeID maps a vault path to its node id: the slash-separated path without
// the .md extension.
func NodeID(p string) string {
	return strings.TrimSuffix(p, ".md")
}

// resolver maps wikilink targets to node ids. A target resolves to the id it
// names exactly, else to the only page with that base name (ignoring case).
// Anything else is left as written and ends up dangling.
type resolver struct {
	ids    map[string]bool
	byBase map[string][]string
}

func newResolver(ids []string) *resolver {
	r := &resolver{ids: make(map[string]bool, len(ids)), byBase: make(map[string][]string)}
	for _, id := range ids {
		r.ids[id] = true
		base := strings.ToLower(path.Base(id))
		r.byBase[base] = append(r.byBase[base], id)
	}
	return r
}

func (r *resolver) resolve(target string) string {
	if r.ids[target] {
		return target
	}
	if m := r.byBase[strings.ToLower(path.Base(target))]; len(m) == 1 {
		return m[0]
	}
	return target
}

// Document compiles the index into a graph document.
func (db *DB) Document() (*sitegraph.Document, error) {
	rows, err := db.conn.Query(`SELECT path, title FROM notes ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: load notes: %w", err)
	}
	doc := &sitegraph.Document{Nodes: make(map[string]sitegraph.Node)}
	var ids []string
	for rows.Next() {
		var p, title string
		if err := rows.Scan(&p, &title); err != nil {
			rows.Close()
			return nil, err
		}
		id := NodeID(p)
		ids = append(ids, id)
		doc.Nodes[id] = sitegraph.Node{Title: title, Links: []sitegraph.Link{}}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	res := newResolver(ids)
	links, err := db.conn.Query(`SELECT source, target, display_text FROM links ORDER BY source, position`)
	if err != nil {
		return nil, fmt.Errorf("index: load links: %w", err)
	}
	defer links.Close()
	for links.Next() {
		var src, target, display string
		if err := links.Scan(&src, &target, &display); err != nil {
			return nil, err
		}
		id := NodeID(src)
		n, ok := doc.Nodes[id]
		if !ok {
			continue
		}
		n.Links = append(n.Links, sitegraph.Link{Link: res.resolve(target), DisplayText: display})
		doc.Nodes[id] = n
	}
	return doc, links.Err()
}
