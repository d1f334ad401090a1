// Package geom provides the small amount of 3D vector algebra the viewer
// needs: vectors, axis rotations, the trackball basis and the projection
// pipeline from world space to screen space.
package geom

import "math"

// Vec3 is a point or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

// Vec2 is a point in screen space.
type Vec2 struct {
	X, Y float64
}

// Add returns a+b.
func Add(a, b Vec3) Vec3 {
	return Vec3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

// Sub returns a-b.
func Sub(a, b Vec3) Vec3 {
	return Vec3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

// Scale returns v*n.
func Scale(v Vec3, n float64) Vec3 {
	return Vec3{X: v.X * n, Y: v.Y * n, Z: v.Z * n}
}

// Dot returns the dot product of a and b.
func Dot(a, b Vec3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a×b.
func Cross(a, b Vec3) Vec3 {
	return Vec3{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

// Len returns the Euclidean length of v.
func Len(v Vec3) float64 {
	return math.Sqrt(Dot(v, v))
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged.
func Normalize(v Vec3) Vec3 {
	l := Len(v)
	if l == 0 {
		return v
	}
	return Scale(v, 1/l)
}

// RotateX rotates v around the X axis by angle radians (right-handed).
func RotateX(v Vec3, angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{
		X: v.X,
		Y: v.Y*cos - v.Z*sin,
		Z: v.Y*sin + v.Z*cos,
	}
}

// RotateY rotates v around the Y axis by angle radians.
func RotateY(v Vec3, angle float64) Vec3 {
	sin, cos := math.Sincos(angle)
	return Vec3{
		X: v.X*cos - v.Z*sin,
		Y: v.Y,
		Z: v.X*sin + v.Z*cos,
	}
}

// Dist returns the distance between two screen points.
func Dist(a, b Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
