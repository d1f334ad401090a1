package pathfind

type linkKey struct {
	from, to string
}

// Path answers membership questions about an ordered node sequence in O(1).
type Path struct {
	ids   []string
	nodes map[string]struct{}
	links map[linkKey]struct{}
}

// NewPath indexes ids. A nil *Path behaves as the empty path.
func NewPath(ids []string) *Path {
	p := &Path{
		ids:   ids,
		nodes: make(map[string]struct{}, len(ids)),
		links: make(map[linkKey]struct{}, len(ids)),
	}
	for i, id := range ids {
		p.nodes[id] = struct{}{}
		if i > 0 {
			p.links[linkKey{from: ids[i-1], to: id}] = struct{}{}
		}
	}
	return p
}

// IDs returns the ordered node ids.
func (p *Path) IDs() []string {
	if p == nil {
		return nil
	}
	return p.ids
}

// Len returns the number of nodes on the path.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.ids)
}

// HasNode reports whether id lies on the path.
func (p *Path) HasNode(id string) bool {
	if p == nil {
		return false
	}
	_, ok := p.nodes[id]
	return ok
}

// HasLink reports whether from→to is a consecutive directed pair of the path.
func (p *Path) HasLink(from, to string) bool {
	if p == nil {
		return false
	}
	_, ok := p.links[linkKey{from: from, to: to}]
	return ok
}
