package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/starford/sitegraph/internal/geom"
	"github.com/starford/sitegraph/internal/sitegraph"
)

func chainDoc(n int, extra ...sitegraph.Link) *sitegraph.Document {
	d := &sitegraph.Document{Nodes: make(map[string]sitegraph.Node)}
	for i := 0; i < n; i++ {
		links := []sitegraph.Link{}
		if i+1 < n {
			links = append(links, sitegraph.Link{Link: fmt.Sprintf("n%02d", i+1)})
		}
		if i == 0 {
			links = append(links, extra...)
		}
		d.Nodes[fmt.Sprintf("n%02d", i)] = sitegraph.Node{Links: links}
	}
	return d
}

func TestNew_LinksResolveToArena(t *testing.T) {
	d := chainDoc(5, sitegraph.Link{Link: "ghost"})
	l := New(d)
	if len(l.Links()) != 4 {
		t.Fatalf("links = %d, want 4 (dangling dropped)", len(l.Links()))
	}
	for _, link := range l.Links() {
		if link.Source < 0 || link.Source >= l.Len() || link.Target < 0 || link.Target >= l.Len() {
			t.Errorf("link %+v escapes arena of %d nodes", link, l.Len())
		}
	}
}

func TestNew_WarmStartSpreadsNodes(t *testing.T) {
	l := New(chainDoc(10))
	seen := make(map[geom.Vec3]bool)
	for i := 0; i < l.Len(); i++ {
		p := l.Node(i).Position
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
			t.Fatalf("node %d position NaN", i)
		}
		if seen[p] {
			t.Errorf("node %d coincides with another node", i)
		}
		seen[p] = true
		if l.Node(i).Display != p {
			t.Errorf("display of node %d not seeded at warmed position", i)
		}
	}
}

func TestNew_Deterministic(t *testing.T) {
	a, b := New(chainDoc(8)), New(chainDoc(8))
	for i := 0; i < 50; i++ {
		a.Advance()
		b.Advance()
	}
	for i := 0; i < a.Len(); i++ {
		if a.Node(i).Position != b.Node(i).Position {
			t.Fatalf("node %d differs: %v vs %v", i, a.Node(i).Position, b.Node(i).Position)
		}
	}
}

func TestAdvance_ConvergesThenNoOp(t *testing.T) {
	l := New(chainDoc(6))
	for i := 0; i < 2000 && !l.Converged(); i++ {
		if !l.Advance() {
			t.Fatalf("advance reported no movement before convergence at %d", i)
		}
	}
	if !l.Converged() {
		t.Fatal("layout did not converge")
	}
	if l.Ticks() > MaxTrickleTicks {
		t.Errorf("ticks = %d, exceeds bound %d", l.Ticks(), MaxTrickleTicks)
	}
	v := l.Version()
	before := l.Snapshot()
	for i := 0; i < 10; i++ {
		if l.Advance() {
			t.Fatal("advance after convergence should be a no-op")
		}
	}
	if l.Version() != v {
		t.Error("version changed after convergence")
	}
	for i, n := range l.Snapshot() {
		if n.Position != before[i].Position || n.Display != before[i].Display {
			t.Errorf("node %d moved after convergence", i)
		}
	}
}

func TestAdvance_CentroidStaysAtOrigin(t *testing.T) {
	l := New(chainDoc(7))
	l.Advance()
	var sum geom.Vec3
	for _, n := range l.Snapshot() {
		sum = geom.Add(sum, n.Position)
	}
	// Centering runs before integration, so the centroid only drifts by one
	// step of net velocity, which pairwise forces keep near zero.
	if geom.Len(sum)/float64(l.Len()) > 1 {
		t.Errorf("centroid = %v, want near origin", geom.Scale(sum, 1/float64(l.Len())))
	}
}

func TestAdvance_LinkedNodesCloserThanChargeRange(t *testing.T) {
	l := New(chainDoc(2))
	for i := 0; i < 2000 && !l.Converged(); i++ {
		l.Advance()
	}
	d := geom.Len(geom.Sub(l.Node(0).Position, l.Node(1).Position))
	if d <= 0 || d >= chargeMaxDist {
		t.Errorf("linked pair distance = %v, want within (0, %d)", d, chargeMaxDist)
	}
}

func TestDisplayPosition(t *testing.T) {
	l := New(chainDoc(3))
	if _, ok := l.DisplayPosition("missing"); ok {
		t.Error("unknown id should not resolve")
	}
	p, ok := l.DisplayPosition("n01")
	i, _ := l.Index("n01")
	if !ok || p != l.Node(i).Display {
		t.Errorf("display position = %v, %v", p, ok)
	}
}

func TestNew_EmptyDocument(t *testing.T) {
	l := New(&sitegraph.Document{Nodes: map[string]sitegraph.Node{}})
	for i := 0; i < 500 && !l.Converged(); i++ {
		l.Advance()
	}
	if l.Len() != 0 || !l.Converged() {
		t.Error("empty layout should converge trivially")
	}
}
