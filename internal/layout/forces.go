package layout

import (
	"math"
	"math/rand/v2"

	"github.com/starford/sitegraph/internal/geom"
)

const (
	chargeStrength  = -30
	chargeMaxDist   = 100
	chargeMinDist   = 1
	linkRestLength  = 30
	jiggleMagnitude = 1e-6
)

type force interface {
	apply(nodes []Node, alpha float64)
}

// jiggler breaks exact coincidences with tiny deterministic offsets.
type jiggler struct {
	rng *rand.Rand
}

func newJiggler() jiggler {
	return jiggler{rng: rand.New(rand.NewPCG(0x5eed, 0x6a09e667))}
}

func (j jiggler) fix(v geom.Vec3) geom.Vec3 {
	if v.X == 0 {
		v.X = (j.rng.Float64() - 0.5) * jiggleMagnitude
	}
	if v.Y == 0 {
		v.Y = (j.rng.Float64() - 0.5) * jiggleMagnitude
	}
	if v.Z == 0 {
		v.Z = (j.rng.Float64() - 0.5) * jiggleMagnitude
	}
	return v
}

// manyBody repels every pair closer than chargeMaxDist with a force falling
// off as 1/distance. Graphs are small, so pairs are visited directly.
type manyBody struct {
	jiggle jiggler
}

func newManyBody() *manyBody {
	return &manyBody{jiggle: newJiggler()}
}

func (f *manyBody) apply(nodes []Node, alpha float64) {
	const maxDist2 = chargeMaxDist * chargeMaxDist
	const minDist2 = chargeMinDist * chargeMinDist
	for i := range nodes {
		for j := range nodes {
			if i == j {
				continue
			}
			d := geom.Sub(nodes[j].Position, nodes[i].Position)
			l := geom.Dot(d, d)
			if l >= maxDist2 {
				continue
			}
			if l == 0 {
				d = f.jiggle.fix(d)
				l = geom.Dot(d, d)
			}
			if l < minDist2 {
				l = math.Sqrt(minDist2 * l)
			}
			w := chargeStrength * alpha / l
			nodes[i].velocity = geom.Add(nodes[i].velocity, geom.Scale(d, w))
		}
	}
}

// linkForce pulls linked nodes toward linkRestLength. Strength and the
// split of the correction between endpoints derive from endpoint link
// counts, so hubs move less than leaves.
type linkForce struct {
	links    []Link
	strength []float64
	bias     []float64
	jiggle   jiggler
}

func newLinkForce(links []Link, n int) *linkForce {
	count := make([]int, n)
	for _, l := range links {
		count[l.Source]++
		count[l.Target]++
	}
	f := &linkForce{
		links:    links,
		strength: make([]float64, len(links)),
		bias:     make([]float64, len(links)),
		jiggle:   newJiggler(),
	}
	for i, l := range links {
		cs, ct := count[l.Source], count[l.Target]
		f.strength[i] = 1 / float64(min(cs, ct))
		f.bias[i] = float64(cs) / float64(cs+ct)
	}
	return f
}

func (f *linkForce) apply(nodes []Node, alpha float64) {
	for i, l := range f.links {
		s, t := &nodes[l.Source], &nodes[l.Target]
		d := geom.Sub(geom.Add(t.Position, t.velocity), geom.Add(s.Position, s.velocity))
		d = f.jiggle.fix(d)
		dist := geom.Len(d)
		k := (dist - linkRestLength) / dist * alpha * f.strength[i]
		d = geom.Scale(d, k)
		t.velocity = geom.Sub(t.velocity, geom.Scale(d, f.bias[i]))
		s.velocity = geom.Add(s.velocity, geom.Scale(d, 1-f.bias[i]))
	}
}

// centerForce translates all nodes so their centroid sits at the origin.
type centerForce struct{}

func (centerForce) apply(nodes []Node, _ float64) {
	if len(nodes) == 0 {
		return
	}
	var sum geom.Vec3
	for _, n := range nodes {
		sum = geom.Add(sum, n.Position)
	}
	shift := geom.Scale(sum, 1/float64(len(nodes)))
	for i := range nodes {
		nodes[i].Position = geom.Sub(nodes[i].Position, shift)
	}
}
