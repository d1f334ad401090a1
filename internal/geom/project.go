package geom

const (
	// WorldScale converts layout units to pixels before the perspective divide.
	WorldScale = 4
	// ViewDistance is the distance from the eye to the projection plane.
	ViewDistance = 1000
	// minDepth is the smallest D+z the perspective divide accepts.
	minDepth = 1
)

// Orbit is the pointer-reactive rotation layered on top of the trackball.
type Orbit struct {
	RotateX float64 `json:"rotateX"`
	RotateY float64 `json:"rotateY"`
}

// Trackball is an orthonormal basis accumulating free drag rotation.
type Trackball struct {
	X, Y, Z Vec3
}

// IdentityTrackball returns the unrotated basis.
func IdentityTrackball() Trackball {
	return Trackball{
		X: Vec3{X: 1},
		Y: Vec3{Y: 1},
		Z: Vec3{Z: 1},
	}
}

// Apply maps p through the basis: p.X·X + p.Y·Y + p.Z·Z.
func (t Trackball) Apply(p Vec3) Vec3 {
	return Add(Add(Scale(t.X, p.X), Scale(t.Y, p.Y)), Scale(t.Z, p.Z))
}

// Rotate applies the same Y-then-X rotation to all three basis vectors.
func (t Trackball) Rotate(aroundY, aroundX float64) Trackball {
	rot := func(v Vec3) Vec3 { return RotateX(RotateY(v, aroundY), aroundX) }
	return Trackball{X: rot(t.X), Y: rot(t.Y), Z: rot(t.Z)}
}

// Orthonormalize removes accumulated floating point drift with a
// Gram-Schmidt pass, keeping X's direction.
func (t Trackball) Orthonormalize() Trackball {
	x := Normalize(t.X)
	y := Normalize(Sub(t.Y, Scale(x, Dot(t.Y, x))))
	z := Cross(x, y)
	if Dot(z, t.Z) < 0 {
		z = Scale(z, -1)
	}
	return Trackball{X: x, Y: y, Z: z}
}

// Project maps a world point to screen space relative to anchor. The
// pipeline is: translate by -anchor, trackball change of basis, orbit
// rotation (Y then X), world scale, perspective divide. Points at or behind
// the eye are clamped to a depth of minDepth so they stay finite.
func Project(p Vec3, orbit Orbit, tb Trackball, anchor Vec3) Vec2 {
	v, _ := ProjectDepth(p, orbit, tb, anchor)
	return v
}

// ProjectDepth is Project that also returns the view-space depth after
// scaling, used for z-ordering.
func ProjectDepth(p Vec3, orbit Orbit, tb Trackball, anchor Vec3) (Vec2, float64) {
	v := Sub(p, anchor)
	v = tb.Apply(v)
	v = RotateY(v, orbit.RotateY)
	v = RotateX(v, orbit.RotateX)
	v = Scale(v, WorldScale)
	depth := ViewDistance + v.Z
	if depth < minDepth {
		depth = minDepth
	}
	factor := ViewDistance / depth
	return Vec2{X: v.X * factor, Y: v.Y * factor}, v.Z
}
