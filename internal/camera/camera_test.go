package camera

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/starford/sitegraph/internal/geom"
)

func TestHoverMove_SetsTargetFromCentreOffset(t *testing.T) {
	c := New()
	c.HoverMove(geom.Vec2{X: 900, Y: 100}, 800, 600)
	for i := 0; i < 500; i++ {
		c.Advance()
	}
	got := c.Orbit()
	if math.Abs(got.RotateY-1) > 1e-6 || math.Abs(got.RotateX-(-0.4)) > 1e-6 {
		t.Errorf("orbit = %+v, want {RotateX:-0.4 RotateY:1}", got)
	}
}

func TestAdvance_DampsByFraction(t *testing.T) {
	c := New()
	c.HoverMove(geom.Vec2{X: 500 + 400, Y: 300}, 1000, 600)
	c.Advance()
	if got := c.Orbit().RotateY; math.Abs(got-0.08) > 1e-12 {
		t.Errorf("rotateY after one tick = %v, want 0.08", got)
	}
}

func TestAdvance_SettlesToNoOp(t *testing.T) {
	c := New()
	if c.Advance() {
		t.Error("camera at rest should not move")
	}
	c.HoverMove(geom.Vec2{X: 10, Y: 10}, 100, 100)
	moved := 0
	for i := 0; i < 1000 && c.Advance(); i++ {
		moved++
	}
	if moved == 0 || moved >= 1000 {
		t.Errorf("moved for %d ticks, want settle in between", moved)
	}
	v := c.Version()
	c.Advance()
	if c.Version() != v {
		t.Error("settled camera changed version")
	}
}

func TestDrag_RotatesTrackball(t *testing.T) {
	c := New()
	c.DragStart(1, geom.Vec2{X: 0, Y: 0})
	c.DragMove(1, geom.Vec2{X: TrackballSensitivity * math.Pi / 2, Y: 0})
	c.DragEnd(1)
	tb := c.Trackball()
	// Quarter turn around Y maps the X basis vector onto +Z.
	if math.Abs(tb.X.Z-1) > 1e-9 || math.Abs(tb.X.X) > 1e-9 {
		t.Errorf("basis X = %v, want {0 0 1}", tb.X)
	}
	if c.Dragging() {
		t.Error("drag should have ended")
	}
}

func TestDrag_IgnoresOtherPointers(t *testing.T) {
	c := New()
	c.DragStart(1, geom.Vec2{})
	c.DragMove(2, geom.Vec2{X: 100, Y: 100})
	if c.Trackball() != geom.IdentityTrackball() {
		t.Error("move from another pointer rotated the trackball")
	}
	c.DragEnd(2)
	if !c.Dragging() {
		t.Error("end from another pointer stopped the drag")
	}
}

func TestDrag_BasisStaysOrthonormal(t *testing.T) {
	c := New()
	rng := rand.New(rand.NewPCG(1, 2))
	pos := geom.Vec2{}
	c.DragStart(7, pos)
	for i := 0; i < 5000; i++ {
		pos.X += (rng.Float64() - 0.5) * 80
		pos.Y += (rng.Float64() - 0.5) * 80
		c.DragMove(7, pos)
	}
	tb := c.Trackball()
	const tol = 1e-9
	for _, v := range []geom.Vec3{tb.X, tb.Y, tb.Z} {
		if math.Abs(geom.Len(v)-1) > tol {
			t.Errorf("basis vector %v has length %v", v, geom.Len(v))
		}
	}
	for _, d := range []float64{geom.Dot(tb.X, tb.Y), geom.Dot(tb.Y, tb.Z), geom.Dot(tb.X, tb.Z)} {
		if math.Abs(d) > tol {
			t.Errorf("basis not orthogonal: dot = %v", d)
		}
	}
}

func TestProject_UsesAnchor(t *testing.T) {
	c := New()
	anchor := geom.Vec3{X: 3, Y: 4, Z: 5}
	if got := c.Project(anchor, anchor); got != (geom.Vec2{}) {
		t.Errorf("anchor projects to %v, want origin", got)
	}
	proj := c.Projector(geom.Vec3{})
	p, depth := proj(geom.Vec3{X: 1, Z: 2})
	if p.X <= 0 || depth != 8 {
		t.Errorf("projector = %v depth %v", p, depth)
	}
}
