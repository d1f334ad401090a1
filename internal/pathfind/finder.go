// Package pathfind finds cheapest directed paths through a graph document.
//
// Edge cost is asymmetric: leaving node A costs outDegree(A), discounted by
// TopicDiscount when A's title ends with the topic marker. Hubs are
// expensive to pass through unless they are topic pages, so paths prefer
// curated routes.
package pathfind

import (
	"github.com/starford/sitegraph/internal/sitegraph"
)

const (
	// DefaultTopicMarker is the title suffix that marks a topic page.
	DefaultTopicMarker = "(topic)"
	// TopicDiscount multiplies the cost of edges leaving a topic page.
	TopicDiscount = 0.1
)

type bestPath struct {
	cost  float64
	nodes []string
}

// Finder holds the cheapest known path from one start node to every node
// reachable from it. It is immutable after construction.
type Finder struct {
	start string
	best  map[string]bestPath
	paths map[string]*Path
}

// New runs a FIFO label-correcting relaxation from start. A neighbour is
// re-queued only on strict improvement, so the queue drains on any finite
// graph, cyclic ones included. An unknown start yields a finder that reaches
// nothing.
func New(doc *sitegraph.Document, start, topicMarker string) *Finder {
	f := &Finder{
		start: start,
		best:  make(map[string]bestPath),
		paths: make(map[string]*Path),
	}
	if !doc.Has(start) {
		return f
	}

	f.best[start] = bestPath{cost: 0, nodes: []string{start}}
	queue := []string{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		from := f.best[id]
		step := edgeCost(doc, id, topicMarker)
		for _, l := range doc.Nodes[id].Links {
			next := l.Link
			if !doc.Has(next) {
				continue
			}
			cost := from.cost + step
			if known, ok := f.best[next]; ok && known.cost <= cost {
				continue
			}
			nodes := make([]string, len(from.nodes)+1)
			copy(nodes, from.nodes)
			nodes[len(from.nodes)] = next
			f.best[next] = bestPath{cost: cost, nodes: nodes}
			queue = append(queue, next)
		}
	}
	return f
}

func edgeCost(doc *sitegraph.Document, from, topicMarker string) float64 {
	c := float64(doc.OutDegree(from))
	if doc.IsTopic(from, topicMarker) {
		c *= TopicDiscount
	}
	return c
}

// Start returns the node the finder searched from.
func (f *Finder) Start() string {
	return f.start
}

// PathTo returns the node ids from start to id inclusive, or an empty slice
// when id is unreachable. The returned slice must not be modified.
func (f *Finder) PathTo(id string) []string {
	p, ok := f.best[id]
	if !ok {
		return []string{}
	}
	return p.nodes
}

// CostTo returns the cumulative cost to id and whether id is reachable.
func (f *Finder) CostTo(id string) (float64, bool) {
	p, ok := f.best[id]
	return p.cost, ok
}

// Reachable returns how many nodes the finder reached, start included.
func (f *Finder) Reachable() int {
	return len(f.best)
}

// PathViewTo returns the membership view of PathTo(id). Views are memoized
// per target so repeated queries return the same *Path.
func (f *Finder) PathViewTo(id string) *Path {
	if p, ok := f.paths[id]; ok {
		return p
	}
	p := NewPath(f.PathTo(id))
	f.paths[id] = p
	return p
}
