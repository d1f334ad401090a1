package sitegraph

import (
	"slices"
	"strings"
)

// Edge is a link descriptor whose endpoints both exist in the document.
type Edge struct {
	Source      string
	Target      string
	DisplayText string
}

// IDs returns every node id in ascending order.
func (d *Document) IDs() []string {
	ids := make([]string, 0, len(d.Nodes))
	for id := range d.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Has reports whether id names a node of the document.
func (d *Document) Has(id string) bool {
	_, ok := d.Nodes[id]
	return ok
}

// Title returns the display title of id, falling back to the id itself.
func (d *Document) Title(id string) string {
	if n, ok := d.Nodes[id]; ok && n.Title != "" {
		return n.Title
	}
	return id
}

// OutDegree returns the number of link descriptors leaving id, dangling ones
// included.
func (d *Document) OutDegree(id string) int {
	return len(d.Nodes[id].Links)
}

// IsTopic reports whether the title of id ends with marker.
func (d *Document) IsTopic(id, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.HasSuffix(d.Nodes[id].Title, marker)
}

// Edges returns the resolved edges in source-id order, preserving link order
// within a source. Dangling descriptors are dropped.
func (d *Document) Edges() []Edge {
	var out []Edge
	for _, id := range d.IDs() {
		for _, l := range d.Nodes[id].Links {
			if !d.Has(l.Link) {
				continue
			}
			out = append(out, Edge{Source: id, Target: l.Link, DisplayText: l.DisplayText})
		}
	}
	return out
}

// Successors returns the distinct resolved targets of id in link order.
func (d *Document) Successors(id string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range d.Nodes[id].Links {
		if !d.Has(l.Link) {
			continue
		}
		if _, dup := seen[l.Link]; dup {
			continue
		}
		seen[l.Link] = struct{}{}
		out = append(out, l.Link)
	}
	return out
}

// Predecessors returns the distinct nodes linking to id in ascending order.
func (d *Document) Predecessors(id string) []string {
	var out []string
	for _, src := range d.IDs() {
		for _, l := range d.Nodes[src].Links {
			if l.Link == id {
				out = append(out, src)
				break
			}
		}
	}
	return out
}
