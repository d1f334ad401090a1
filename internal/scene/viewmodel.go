package scene

import (
	"math"
	"slices"
)

// viewEpsilon is the smallest change in screen units that counts as a
// visual change.
const viewEpsilon = 1e-3

// NodeView is the render-ready state of one node.
type NodeView struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ScreenX      float64 `json:"screenX"`
	ScreenY      float64 `json:"screenY"`
	Tint         uint32  `json:"tint"`
	ZIndex       int     `json:"zIndex"`
	Scale        float64 `json:"scale"`
	LabelVisible bool    `json:"labelVisible"`
}

// LinkView is the render-ready state of one link: a unit bar centred at
// (ScreenX, ScreenY), rotated by Rotation and stretched to Length.
type LinkView struct {
	Source         string  `json:"source"`
	Target         string  `json:"target"`
	ScreenX        float64 `json:"screenX"`
	ScreenY        float64 `json:"screenY"`
	Rotation       float64 `json:"rotation"`
	Length         float64 `json:"length"`
	Tint           uint32  `json:"tint"`
	ZIndex         int     `json:"zIndex"`
	ThicknessScale float64 `json:"thicknessScale"`
}

type views struct {
	nodes []NodeView
	links []LinkView
	tiers []Tier
}

func nearly(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return math.Abs(a-b) <= viewEpsilon
}

func (a NodeView) same(b NodeView) bool {
	return a.ID == b.ID && a.Title == b.Title && a.Tint == b.Tint && a.ZIndex == b.ZIndex &&
		a.LabelVisible == b.LabelVisible && a.Scale == b.Scale &&
		nearly(a.ScreenX, b.ScreenX) && nearly(a.ScreenY, b.ScreenY)
}

func (a LinkView) same(b LinkView) bool {
	return a.Source == b.Source && a.Target == b.Target && a.Tint == b.Tint && a.ZIndex == b.ZIndex &&
		a.ThicknessScale == b.ThicknessScale &&
		nearly(a.ScreenX, b.ScreenX) && nearly(a.ScreenY, b.ScreenY) &&
		nearly(a.Rotation, b.Rotation) && nearly(a.Length, b.Length)
}

func sameViews(a, b views) bool {
	if len(a.nodes) != len(b.nodes) || len(a.links) != len(b.links) || !slices.Equal(a.tiers, b.tiers) {
		return false
	}
	for i := range a.nodes {
		if !a.nodes[i].same(b.nodes[i]) {
			return false
		}
	}
	for i := range a.links {
		if !a.links[i].same(b.links[i]) {
			return false
		}
	}
	return true
}
