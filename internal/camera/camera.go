// Package camera owns the viewer's orbit and trackball state and composes
// them into a projector from world to screen space.
package camera

import (
	"github.com/starford/sitegraph/internal/approach"
	"github.com/starford/sitegraph/internal/geom"
)

const (
	// OrbitSensitivity is the pointer offset in pixels per radian of orbit.
	OrbitSensitivity = 500
	// OrbitDamping is the fraction of the remaining orbit delta closed per tick.
	OrbitDamping = 0.1
	// TrackballSensitivity is the drag distance in pixels per radian.
	TrackballSensitivity = 200
	orbitSettleEps       = 1e-6
)

type drag struct {
	pointerID int
	last      geom.Vec2
}

// Camera is owned by one viewer session and mutated only from its tick and
// pointer handlers.
type Camera struct {
	target    geom.Orbit
	orbit     *approach.Approacher
	trackball geom.Trackball
	drag      *drag
	version   uint64
}

// New returns a camera with no rotation.
func New() *Camera {
	return &Camera{
		orbit:     approach.New(geom.Vec3{}, OrbitDamping, 1),
		trackball: geom.IdentityTrackball(),
	}
}

// HoverMove sets the orbit target from the pointer offset to the viewport
// centre. The live orbit follows on subsequent Advance calls.
func (c *Camera) HoverMove(pos geom.Vec2, width, height float64) {
	c.target = geom.Orbit{
		RotateX: (pos.Y - height/2) / OrbitSensitivity,
		RotateY: (pos.X - width/2) / OrbitSensitivity,
	}
}

// DragStart begins a trackball drag for pointerID. A drag already in
// progress is replaced.
func (c *Camera) DragStart(pointerID int, pos geom.Vec2) {
	c.drag = &drag{pointerID: pointerID, last: pos}
}

// DragMove rotates the trackball by the delta since the last drag event.
// Moves from other pointers are ignored.
func (c *Camera) DragMove(pointerID int, pos geom.Vec2) {
	if c.drag == nil || c.drag.pointerID != pointerID {
		return
	}
	dx, dy := pos.X-c.drag.last.X, pos.Y-c.drag.last.Y
	c.drag.last = pos
	if dx == 0 && dy == 0 {
		return
	}
	c.trackball = c.trackball.Rotate(dx/TrackballSensitivity, dy/TrackballSensitivity).Orthonormalize()
	c.version++
}

// DragEnd finishes the drag of pointerID.
func (c *Camera) DragEnd(pointerID int) {
	if c.drag != nil && c.drag.pointerID == pointerID {
		c.drag = nil
	}
}

// Dragging reports whether a trackball drag is in progress.
func (c *Camera) Dragging() bool {
	return c.drag != nil
}

// Advance damps the live orbit toward its target. It reports whether the
// orbit moved.
func (c *Camera) Advance() bool {
	target := geom.Vec3{X: c.target.RotateX, Y: c.target.RotateY}
	if c.orbit.Settled(target, orbitSettleEps) {
		if c.orbit.Position() != target {
			c.orbit.Reset(target)
			c.version++
			return true
		}
		return false
	}
	c.orbit.Approach(target)
	c.version++
	return true
}

// Orbit returns the live orbit.
func (c *Camera) Orbit() geom.Orbit {
	p := c.orbit.Position()
	return geom.Orbit{RotateX: p.X, RotateY: p.Y}
}

// Trackball returns the accumulated drag rotation.
func (c *Camera) Trackball() geom.Trackball {
	return c.trackball
}

// Version changes whenever the orbit or trackball changes.
func (c *Camera) Version() uint64 {
	return c.version
}

// Project maps a world point to screen space around anchor using the
// current orbit and trackball.
func (c *Camera) Project(p, anchor geom.Vec3) geom.Vec2 {
	return geom.Project(p, c.Orbit(), c.trackball, anchor)
}

// Projector captures the current state into a reusable projection function
// and also yields view-space depth.
func (c *Camera) Projector(anchor geom.Vec3) func(geom.Vec3) (geom.Vec2, float64) {
	orbit, tb := c.Orbit(), c.trackball
	return func(p geom.Vec3) (geom.Vec2, float64) {
		return geom.ProjectDepth(p, orbit, tb, anchor)
	}
}
