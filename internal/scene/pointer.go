package scene

import (
	"github.com/starford/sitegraph/internal/geom"
)

// ClickAction is what a completed click did.
type ClickAction int

const (
	ClickNone ClickAction = iota
	ClickFocus
	ClickNavigate
)

func (a ClickAction) String() string {
	switch a {
	case ClickFocus:
		return "focus"
	case ClickNavigate:
		return "navigate"
	default:
		return "none"
	}
}

// click is the press/release state machine. The zero value is idle.
type click struct {
	armed     bool
	pointerID int
	node      string
	at        geom.Vec2
}

// PointerDown arms a click when the press lands on a node and starts a
// trackball drag. A press while already armed disarms instead, so a second
// finger cancels the click.
func (s *Session) PointerDown(pointerID int, pos geom.Vec2) {
	if s.closed {
		return
	}
	s.pointer.Set(pointerState{pos: pos, present: true})
	if s.click.armed {
		s.click = click{}
	} else if id := s.hitTest(pos); id != "" {
		s.click = click{armed: true, pointerID: pointerID, node: id, at: pos}
	}
	s.camera.DragStart(pointerID, pos)
}

// PointerMove updates the hover position, the orbit target and any drag.
func (s *Session) PointerMove(pointerID int, pos geom.Vec2) {
	if s.closed {
		return
	}
	s.pointer.Set(pointerState{pos: pos, present: true})
	vp := s.viewport.Get()
	s.camera.HoverMove(pos, vp.Width, vp.Height)
	s.camera.DragMove(pointerID, pos)
}

// PointerUp ends the drag and completes an armed click if the release is
// from the same pointer, within the click threshold of the press and over
// the same node. Clicking the focused node navigates to it; clicking any
// other node focuses it.
func (s *Session) PointerUp(pointerID int, pos geom.Vec2) (string, ClickAction) {
	if s.closed {
		return "", ClickNone
	}
	s.camera.DragEnd(pointerID)
	c := s.click
	s.click = click{}
	if !c.armed || c.pointerID != pointerID {
		return "", ClickNone
	}
	if geom.Dist(c.at, pos) > s.opts.ClickThreshold {
		return "", ClickNone
	}
	if s.hitTest(pos) != c.node {
		return "", ClickNone
	}
	if c.node == s.focus.Get() {
		s.opts.Navigator.Navigate(c.node)
		return c.node, ClickNavigate
	}
	if err := s.SetFocus(c.node); err != nil {
		return "", ClickNone
	}
	return c.node, ClickFocus
}

// PointerLeave forgets the pointer and clears hover.
func (s *Session) PointerLeave() {
	if s.closed {
		return
	}
	s.pointer.Set(pointerState{})
	s.hover.Set("")
}
