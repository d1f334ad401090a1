package scene

import (
	"math"

	"github.com/starford/sitegraph/internal/geom"
	"github.com/starford/sitegraph/internal/pathfind"
	"github.com/starford/sitegraph/internal/reactive"
)

// Tick advances the layout, the camera and the anchor by one frame,
// resolves hover from the pointer, and brings the view-models up to date.
// It reports whether any view-model changed since the previous tick, which
// is the caller's signal to redraw.
func (s *Session) Tick() bool {
	if s.closed {
		return false
	}
	s.ticks++

	lay := s.layouts.Get()
	moved := lay.Advance()
	if s.camera.Advance() {
		moved = true
	}

	target, _ := lay.DisplayPosition(s.focus.Get())
	if s.anchor.Settled(target, anchorSettleEps) {
		if s.anchor.Position() != target {
			moved = true
		}
		s.anchor.Reset(target)
	} else {
		s.anchor.Approach(target)
		moved = true
	}
	s.moving = moved
	s.anchorAt.Set(s.anchor.Position())

	s.resolveHover()

	v := s.views.Get()
	s.hit = v
	version := s.views.Version()
	dirty := version != s.drawn
	s.drawn = version
	return dirty
}

// resolveHover picks the hovered node from the current pointer position
// using the current screen positions and the previous tick's tiers.
func (s *Session) resolveHover() {
	p := s.pointer.Get()
	if !p.present {
		return
	}
	screen := s.screen.Get()
	s.hover.Set(s.pick(screen, s.hit.tiers, p.pos))
}

// pick returns the node within the hover radius of pos, preferring higher
// tiers and then shorter distance. It returns "" when nothing is in range.
func (s *Session) pick(screen []geom.Vec2, tiers []Tier, pos geom.Vec2) string {
	lay := s.layouts.Get()
	if len(screen) != lay.Len() {
		return ""
	}
	best, bestTier, bestDist := -1, TierDefault, math.Inf(1)
	for i, at := range screen {
		d := geom.Dist(at, pos)
		if d > s.opts.HoverRadius {
			continue
		}
		tier := TierDefault
		if i < len(tiers) {
			tier = tiers[i]
		}
		if best < 0 || tier > bestTier || (tier == bestTier && d < bestDist) {
			best, bestTier, bestDist = i, tier, d
		}
	}
	if best < 0 {
		return ""
	}
	return lay.Node(best).ID
}

// hitTest runs pick against the last tick's screen positions.
func (s *Session) hitTest(pos geom.Vec2) string {
	if len(s.hit.nodes) == 0 {
		return ""
	}
	screen := make([]geom.Vec2, len(s.hit.nodes))
	for i, n := range s.hit.nodes {
		screen[i] = geom.Vec2{X: n.ScreenX, Y: n.ScreenY}
	}
	return s.pick(screen, s.hit.tiers, pos)
}

func (s *Session) computeScreen(t *reactive.Tracker) []geom.Vec2 {
	lay := reactive.Use(t, s.layouts)
	t.Track(lay)
	t.Track(s.camera)
	anchor := reactive.Use(t, s.anchorAt)
	vp := reactive.Use(t, s.viewport)

	project := s.camera.Projector(anchor)
	out := make([]geom.Vec2, lay.Len())
	for i := range out {
		p, _ := project(lay.Node(i).Display)
		out[i] = geom.Vec2{X: vp.Width/2 + p.X, Y: vp.Height/2 + p.Y}
	}
	return out
}

// highlight is the per-tick input to tier assignment.
type highlight struct {
	focus, hover string
	forward      map[string]bool
	back         map[string]bool
	home         *pathfind.Path
	active       *pathfind.Path
}

func (h highlight) nodeTier(id string) Tier {
	switch {
	case id == h.focus || id == h.hover || h.active.HasNode(id):
		return TierActive
	case h.home.HasNode(id):
		return TierHomePath
	case h.forward[id]:
		return TierForwardLink
	case h.back[id]:
		return TierBackLink
	}
	return TierDefault
}

func (h highlight) linkTier(from, to string) Tier {
	switch {
	case h.active.HasLink(from, to):
		return TierActive
	case h.home.HasLink(from, to):
		return TierHomePath
	case from == h.focus:
		return TierForwardLink
	case to == h.focus:
		return TierBackLink
	}
	return TierDefault
}

func (s *Session) computeViews(t *reactive.Tracker) views {
	lay := reactive.Use(t, s.layouts)
	doc := reactive.Use(t, s.graph)
	screen := reactive.Use(t, s.screen)
	h := highlight{
		focus:   reactive.Use(t, s.focus),
		hover:   reactive.Use(t, s.hover),
		forward: reactive.Use(t, s.forward),
		back:    reactive.Use(t, s.back),
		home:    reactive.Use(t, s.homePath),
		active:  reactive.Use(t, s.hoverPath),
	}
	th := s.opts.Theme

	v := views{
		nodes: make([]NodeView, lay.Len()),
		tiers: make([]Tier, lay.Len()),
		links: make([]LinkView, len(lay.Links())),
	}
	for i := range v.nodes {
		id := lay.Node(i).ID
		tier := h.nodeTier(id)
		tr := th.For(tier)
		v.tiers[i] = tier
		v.nodes[i] = NodeView{
			ID:           id,
			Title:        doc.Title(id),
			ScreenX:      screen[i].X,
			ScreenY:      screen[i].Y,
			Tint:         tr.Tint,
			ZIndex:       tr.ZIndex,
			Scale:        tr.Scale,
			LabelVisible: tr.LabelVisible,
		}
	}
	for i, l := range lay.Links() {
		from, to := lay.Node(l.Source).ID, lay.Node(l.Target).ID
		a, b := screen[l.Source], screen[l.Target]
		dx, dy := b.X-a.X, b.Y-a.Y
		tr := th.For(h.linkTier(from, to))
		v.links[i] = LinkView{
			Source:         from,
			Target:         to,
			ScreenX:        (a.X + b.X) / 2,
			ScreenY:        (a.Y + b.Y) / 2,
			Rotation:       math.Atan2(dy, dx),
			Length:         math.Hypot(dx, dy),
			Tint:           tr.Tint,
			ZIndex:         tr.ZIndex,
			ThicknessScale: tr.Scale,
		}
	}
	return v
}
