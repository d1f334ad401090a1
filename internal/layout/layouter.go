// Package layout turns a graph document into 3D node positions with a small
// force-directed simulation: many-body charge repulsion, link springs and a
// centering force, stepped on a decaying alpha schedule.
//
// Nodes live in an arena indexed by integer; links and callers refer to
// nodes by index or id, never by pointer.
package layout

import (
	"math"

	"github.com/starford/sitegraph/internal/approach"
	"github.com/starford/sitegraph/internal/geom"
	"github.com/starford/sitegraph/internal/sitegraph"
)

// Simulation parameters.
const (
	WarmStartTicks   = 100
	MaxTrickleTicks  = 400
	alphaMin         = 0.001
	velocityDecay    = 0.4
	initialRadius    = 10
	displaySpeed     = 0.2
	displayDepth     = 1
	displaySettleEps = 1e-3
)

var alphaDecay = 1 - math.Pow(alphaMin, 1.0/300)

// Node is one arena record. Position is the raw simulated point; Display
// lags it through a follower so solver steps never snap on screen.
type Node struct {
	ID       string
	Position geom.Vec3
	Display  geom.Vec3
	velocity geom.Vec3
}

// Link references its endpoints by arena index.
type Link struct {
	Source int
	Target int
}

// Layouter owns the simulation. Only Layouter mutates node positions.
type Layouter struct {
	nodes     []Node
	links     []Link
	index     map[string]int
	followers []*approach.Approacher
	forces    []force

	alpha   float64
	ticks   int
	version uint64
	settled bool
}

// New builds the arena from doc, runs the warm-start burst and seeds the
// display followers at the warmed positions.
func New(doc *sitegraph.Document) *Layouter {
	ids := doc.IDs()
	l := &Layouter{
		nodes: make([]Node, len(ids)),
		index: make(map[string]int, len(ids)),
		alpha: 1,
	}
	for i, id := range ids {
		l.index[id] = i
		l.nodes[i] = Node{ID: id, Position: phyllotaxis(i)}
	}
	for _, e := range doc.Edges() {
		l.links = append(l.links, Link{Source: l.index[e.Source], Target: l.index[e.Target]})
	}
	l.forces = []force{
		newManyBody(),
		newLinkForce(l.links, len(l.nodes)),
		centerForce{},
	}

	for i := 0; i < WarmStartTicks; i++ {
		l.step()
	}
	l.followers = make([]*approach.Approacher, len(l.nodes))
	for i := range l.nodes {
		l.nodes[i].Display = l.nodes[i].Position
		l.followers[i] = approach.New(l.nodes[i].Position, displaySpeed, displayDepth)
	}
	l.ticks = 0
	l.version = 1
	return l
}

// phyllotaxis spreads initial points on a 3D spiral so no two nodes start
// coincident.
func phyllotaxis(i int) geom.Vec3 {
	roll := math.Pi * (3 - math.Sqrt(5))
	yaw := math.Pi * 20 / (9 + math.Sqrt(221))
	r := initialRadius * math.Cbrt(0.5+float64(i))
	ra, ya := float64(i)*roll, float64(i)*yaw
	return geom.Vec3{
		X: r * math.Sin(ra) * math.Cos(ya),
		Y: r * math.Cos(ra),
		Z: r * math.Sin(ra) * math.Sin(ya),
	}
}

func (l *Layouter) step() {
	l.alpha += -l.alpha * alphaDecay
	for _, f := range l.forces {
		f.apply(l.nodes, l.alpha)
	}
	for i := range l.nodes {
		n := &l.nodes[i]
		n.velocity = geom.Scale(n.velocity, 1-velocityDecay)
		n.Position = geom.Add(n.Position, n.velocity)
	}
}

// Advance runs one trickle tick and moves the display followers. It reports
// whether anything moved. Once the simulation has cooled (or run
// MaxTrickleTicks) and every follower has caught up, Advance is a no-op.
func (l *Layouter) Advance() bool {
	if l.settled {
		return false
	}
	if !l.simulationDone() {
		l.step()
		l.ticks++
	}
	caught := true
	for i := range l.nodes {
		n := &l.nodes[i]
		l.followers[i].Approach(n.Position)
		n.Display = l.followers[i].Position()
		if !l.followers[i].Settled(n.Position, displaySettleEps) {
			caught = false
		}
	}
	if l.simulationDone() && caught {
		for i := range l.nodes {
			l.followers[i].Reset(l.nodes[i].Position)
			l.nodes[i].Display = l.nodes[i].Position
		}
		l.settled = true
	}
	l.version++
	return true
}

func (l *Layouter) simulationDone() bool {
	return l.alpha < alphaMin || l.ticks >= MaxTrickleTicks
}

// Converged reports whether Advance has become a no-op.
func (l *Layouter) Converged() bool {
	return l.settled
}

// Version changes every time positions change.
func (l *Layouter) Version() uint64 {
	return l.version
}

// Ticks returns the number of trickle ticks run since construction.
func (l *Layouter) Ticks() int {
	return l.ticks
}

// Len returns the number of nodes.
func (l *Layouter) Len() int {
	return len(l.nodes)
}

// Node returns the arena record at index i.
func (l *Layouter) Node(i int) Node {
	return l.nodes[i]
}

// Index returns the arena index of id.
func (l *Layouter) Index(id string) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// Links returns the resolved links. The slice must not be modified.
func (l *Layouter) Links() []Link {
	return l.links
}

// DisplayPosition returns the smoothed position of id.
func (l *Layouter) DisplayPosition(id string) (geom.Vec3, bool) {
	i, ok := l.index[id]
	if !ok {
		return geom.Vec3{}, false
	}
	return l.nodes[i].Display, true
}

// Snapshot copies the arena for readers outside the tick.
func (l *Layouter) Snapshot() []Node {
	out := make([]Node, len(l.nodes))
	copy(out, l.nodes)
	return out
}
