// Package approach implements a chained exponential follower: a trail of
// points where each link moves a fixed fraction toward its predecessor every
// step. The tail is a low-pass filtered pursuit of the head without
// overshoot for any speed in (0,1).
package approach

import "github.com/starford/sitegraph/internal/geom"

// Default parameters.
const (
	DefaultSpeed = 0.1
	DefaultDepth = 1
)

// Approacher follows a moving target.
type Approacher struct {
	speed float64
	trail []geom.Vec3
}

// New returns an Approacher resting at initial with depth+1 trail points.
// depth below 1 is raised to 1.
func New(initial geom.Vec3, speed float64, depth int) *Approacher {
	if depth < 1 {
		depth = 1
	}
	trail := make([]geom.Vec3, depth+1)
	for i := range trail {
		trail[i] = initial
	}
	return &Approacher{speed: speed, trail: trail}
}

// Approach pins the head of the trail to target and advances every other
// link a speed fraction toward its predecessor.
func (a *Approacher) Approach(target geom.Vec3) {
	a.trail[0] = target
	for i := 1; i < len(a.trail); i++ {
		prev, cur := a.trail[i-1], a.trail[i]
		a.trail[i] = geom.Add(cur, geom.Scale(geom.Sub(prev, cur), a.speed))
	}
}

// Position returns the tail of the trail. The value is a snapshot valid
// until the next Approach.
func (a *Approacher) Position() geom.Vec3 {
	return a.trail[len(a.trail)-1]
}

// Reset places every trail point at p.
func (a *Approacher) Reset(p geom.Vec3) {
	for i := range a.trail {
		a.trail[i] = p
	}
}

// Settled reports whether every trail point is within eps of target.
func (a *Approacher) Settled(target geom.Vec3, eps float64) bool {
	for _, p := range a.trail[1:] {
		if geom.Len(geom.Sub(p, target)) > eps {
			return false
		}
	}
	return true
}
