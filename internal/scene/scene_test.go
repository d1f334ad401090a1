package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/sitegraph/internal/apperr"
	"github.com/starford/sitegraph/internal/geom"
	"github.com/starford/sitegraph/internal/sitegraph"
)

func twoNodes() *sitegraph.Document {
	return &sitegraph.Document{Nodes: map[string]sitegraph.Node{
		"A": {Links: []sitegraph.Link{{Link: "B"}}},
		"B": {Links: []sitegraph.Link{}},
	}}
}

func chain() *sitegraph.Document {
	return &sitegraph.Document{Nodes: map[string]sitegraph.Node{
		"HomePage": {Title: "Home", Links: []sitegraph.Link{{Link: "A"}}},
		"A":        {Links: []sitegraph.Link{{Link: "B"}, {Link: "C"}}},
		"B":        {Links: []sitegraph.Link{{Link: "A"}}},
		"C":        {Links: []sitegraph.Link{}},
	}}
}

func settle(t *testing.T, s *Session) {
	t.Helper()
	for i := 0; i < 5000; i++ {
		s.Tick()
		if s.AtRest() {
			if s.Tick() {
				t.Fatal("Tick() at rest = true, want false")
			}
			return
		}
	}
	t.Fatal("session never came to rest")
}

func nodeAt(t *testing.T, s *Session, id string) geom.Vec2 {
	t.Helper()
	for _, n := range s.Frame().Nodes {
		if n.ID == id {
			return geom.Vec2{X: n.ScreenX, Y: n.ScreenY}
		}
	}
	t.Fatalf("node %q not in frame", id)
	return geom.Vec2{}
}

func TestHighlightSetsForFocus(t *testing.T) {
	s := New(twoNodes(), Options{Home: "A"})
	if got := s.Focus(); got != "A" {
		t.Fatalf("Focus() = %q, want A", got)
	}
	if diff := cmp.Diff([]string{"B"}, s.ForwardLinks()); diff != "" {
		t.Errorf("ForwardLinks() mismatch (-want +got):\n%s", diff)
	}
	if got := s.BackLinks(); len(got) != 0 {
		t.Errorf("BackLinks() = %v, want empty", got)
	}
	if diff := cmp.Diff([]string{"A"}, s.HomePath().IDs()); diff != "" {
		t.Errorf("HomePath() mismatch (-want +got):\n%s", diff)
	}
}

func TestHoverPathFromFocus(t *testing.T) {
	s := New(twoNodes(), Options{Home: "A"})
	if err := s.SetHover("B"); err != nil {
		t.Fatalf("SetHover: %v", err)
	}
	p := s.HoverPath()
	if diff := cmp.Diff([]string{"A", "B"}, p.IDs()); diff != "" {
		t.Errorf("HoverPath() mismatch (-want +got):\n%s", diff)
	}
	if !p.HasLink("A", "B") {
		t.Error("HasLink(A, B) = false, want true")
	}
	if p.HasLink("B", "A") {
		t.Error("HasLink(B, A) = true, want false")
	}
}

func TestHoverPathRebuildsOnlyOnFocusChange(t *testing.T) {
	s := New(chain(), Options{})
	s.SetHover("C")
	s.HoverPath()
	s.SetHover("B")
	s.HoverPath()
	if got := s.hoverPath.Builds(); got != 1 {
		t.Fatalf("Builds() after hover changes = %d, want 1", got)
	}
	if err := s.SetFocus("A"); err != nil {
		t.Fatal(err)
	}
	s.HoverPath()
	if got := s.hoverPath.Builds(); got != 2 {
		t.Errorf("Builds() after focus change = %d, want 2", got)
	}
}

func TestHomeFallsBackToFirstID(t *testing.T) {
	s := New(twoNodes(), Options{Home: "missing"})
	if got := s.Home(); got != "A" {
		t.Errorf("Home() = %q, want A", got)
	}
	empty := New(&sitegraph.Document{Nodes: map[string]sitegraph.Node{}}, Options{})
	if got := empty.Home(); got != "" {
		t.Errorf("Home() on empty graph = %q, want empty", got)
	}
	if !empty.Tick() {
		t.Error("first Tick() on empty graph = false, want true")
	}
}

func TestSetFocusUnknown(t *testing.T) {
	s := New(chain(), Options{})
	if err := s.SetFocus("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("SetFocus(nope) error = %v, want ErrNotFound", err)
	}
	if err := s.SetHover("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("SetHover(nope) error = %v, want ErrNotFound", err)
	}
}

func TestNodeTiers(t *testing.T) {
	s := New(chain(), Options{})
	if err := s.SetFocus("A"); err != nil {
		t.Fatal(err)
	}
	s.Tick()
	tiers := map[string]Tier{}
	for i, n := range s.hit.nodes {
		tiers[n.ID] = s.hit.tiers[i]
	}
	want := map[string]Tier{
		"A":        TierActive,
		"HomePage": TierHomePath,
		"B":        TierForwardLink,
		"C":        TierForwardLink,
	}
	if diff := cmp.Diff(want, tiers); diff != "" {
		t.Errorf("tiers mismatch (-want +got):\n%s", diff)
	}
	for _, l := range s.Frame().Links {
		if l.Source == "B" && l.Target == "A" && l.ZIndex != DefaultTheme().BackLink.ZIndex {
			t.Errorf("B->A link zIndex = %d, want back-link", l.ZIndex)
		}
		if l.Source == "HomePage" && l.ZIndex != DefaultTheme().HomePath.ZIndex {
			t.Errorf("HomePage->A link zIndex = %d, want home-path", l.ZIndex)
		}
	}
}

func TestDirtyOnlyWhenViewsChange(t *testing.T) {
	s := New(chain(), Options{})
	s.Resize(800, 600)
	if !s.Tick() {
		t.Fatal("first Tick() = false, want true")
	}
	settle(t, s)
	if s.Tick() {
		t.Fatal("Tick() after settling = true, want false")
	}
	if err := s.SetHover("C"); err != nil {
		t.Fatal(err)
	}
	if !s.Tick() {
		t.Error("Tick() after hover change = false, want true")
	}
	if s.Tick() {
		t.Error("second Tick() after hover change = true, want false")
	}
	s.Resize(800, 600)
	if s.Tick() {
		t.Error("Tick() after same-size resize = true, want false")
	}
	s.Resize(1024, 768)
	if !s.Tick() {
		t.Error("Tick() after resize = false, want true")
	}
}

func TestFocusNodeIsCentred(t *testing.T) {
	s := New(chain(), Options{})
	s.Resize(800, 600)
	settle(t, s)
	at := nodeAt(t, s, s.Focus())
	if geom.Dist(at, geom.Vec2{X: 400, Y: 300}) > 1 {
		t.Errorf("focus at %v, want viewport centre", at)
	}
}

func TestPointerHover(t *testing.T) {
	s := New(twoNodes(), Options{Home: "A"})
	s.Resize(800, 600)
	settle(t, s)
	b := nodeAt(t, s, "B")
	s.PointerMove(1, b)
	s.Tick()
	if got := s.Hover(); got != "B" {
		t.Errorf("Hover() = %q, want B", got)
	}
	s.PointerLeave()
	if got := s.Hover(); got != "" {
		t.Errorf("Hover() after leave = %q, want empty", got)
	}
}

func TestPickPrefersHigherTier(t *testing.T) {
	s := New(twoNodes(), Options{})
	screen := []geom.Vec2{{X: 0}, {X: 3}}
	got := s.pick(screen, []Tier{TierActive, TierDefault}, geom.Vec2{X: 2.9})
	if got != "A" {
		t.Errorf("pick() = %q, want A", got)
	}
	got = s.pick(screen, []Tier{TierDefault, TierDefault}, geom.Vec2{X: 2.9})
	if got != "B" {
		t.Errorf("pick() with equal tiers = %q, want B", got)
	}
	if got := s.pick(screen, nil, geom.Vec2{X: 100}); got != "" {
		t.Errorf("pick() out of range = %q, want empty", got)
	}
}

func TestPickHonoursHoverRadius(t *testing.T) {
	s := New(twoNodes(), Options{HoverRadius: 20})
	screen := []geom.Vec2{{X: 0}, {X: 1000}}
	tiers := []Tier{TierActive, TierDefault}
	tests := []struct {
		at   geom.Vec2
		want string
	}{
		{geom.Vec2{X: 19}, "A"},
		{geom.Vec2{X: 20}, "A"},
		{geom.Vec2{X: 21}, ""},
		{geom.Vec2{X: 150}, ""},
		{geom.Vec2{X: 985}, "B"},
	}
	for _, tt := range tests {
		if got := s.pick(screen, tiers, tt.at); got != tt.want {
			t.Errorf("pick(%v) = %q, want %q", tt.at, got, tt.want)
		}
	}
}

func TestClick(t *testing.T) {
	var navigated []string
	s := New(twoNodes(), Options{
		Home:      "A",
		Navigator: NavigatorFunc(func(id string) { navigated = append(navigated, id) }),
	})
	s.Resize(800, 600)
	settle(t, s)

	b := nodeAt(t, s, "B")
	s.PointerDown(1, b)
	id, action := s.PointerUp(1, b)
	if id != "B" || action != ClickFocus {
		t.Fatalf("click on B = (%q, %v), want (B, focus)", id, action)
	}
	if got := s.Focus(); got != "B" {
		t.Errorf("Focus() = %q, want B", got)
	}
	if len(navigated) != 0 {
		t.Errorf("navigated = %v, want none", navigated)
	}

	settle(t, s)
	b = nodeAt(t, s, "B")
	s.PointerDown(1, b)
	id, action = s.PointerUp(1, b)
	if id != "B" || action != ClickNavigate {
		t.Fatalf("click on focus = (%q, %v), want (B, navigate)", id, action)
	}
	if got := s.Focus(); got != "B" {
		t.Errorf("Focus() after navigate = %q, want B", got)
	}
	if diff := cmp.Diff([]string{"B"}, navigated); diff != "" {
		t.Errorf("navigated mismatch (-want +got):\n%s", diff)
	}
}

func TestClickCancelled(t *testing.T) {
	s := New(twoNodes(), Options{Home: "A"})
	s.Resize(800, 600)
	settle(t, s)
	b := nodeAt(t, s, "B")

	s.PointerDown(1, b)
	if _, action := s.PointerUp(1, geom.Vec2{X: b.X + 50, Y: b.Y}); action != ClickNone {
		t.Errorf("release far away = %v, want none", action)
	}

	// Still over B, but past the click threshold.
	s.PointerDown(1, b)
	if _, action := s.PointerUp(1, geom.Vec2{X: b.X + 12, Y: b.Y}); action != ClickNone {
		t.Errorf("release 12px away = %v, want none", action)
	}

	a := nodeAt(t, s, "A")
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	beyond := geom.Vec2{X: b.X + dx/l*40, Y: b.Y + dy/l*40}
	s.PointerDown(1, beyond)
	if id, action := s.PointerUp(1, beyond); action != ClickNone {
		t.Errorf("click 40px past B = (%q, %v), want none", id, action)
	}

	s.PointerDown(1, b)
	if _, action := s.PointerUp(2, b); action != ClickNone {
		t.Errorf("release by other pointer = %v, want none", action)
	}

	s.PointerDown(1, b)
	s.PointerDown(2, b)
	if _, action := s.PointerUp(1, b); action != ClickNone {
		t.Errorf("release after second press = %v, want none", action)
	}
	if got := s.Focus(); got != "A" {
		t.Errorf("Focus() = %q, want A", got)
	}
}

func TestReplaceGraph(t *testing.T) {
	s := New(chain(), Options{})
	if err := s.SetFocus("B"); err != nil {
		t.Fatal(err)
	}
	s.SetHover("C")

	if s.ReplaceGraph(chain()) {
		t.Error("ReplaceGraph(identical) = true, want false")
	}

	next := chain()
	next.Nodes["D"] = sitegraph.Node{Links: []sitegraph.Link{}}
	if !s.ReplaceGraph(next) {
		t.Fatal("ReplaceGraph(changed) = false, want true")
	}
	if got := s.Focus(); got != "B" {
		t.Errorf("Focus() = %q, want B kept", got)
	}
	if got := s.Hover(); got != "" {
		t.Errorf("Hover() = %q, want reset", got)
	}

	gone := &sitegraph.Document{Nodes: map[string]sitegraph.Node{}}
	for id, n := range next.Nodes {
		if id != "B" {
			gone.Nodes[id] = n
		}
	}
	s.ReplaceGraph(gone)
	if got := s.Focus(); got != "HomePage" {
		t.Errorf("Focus() after removal = %q, want HomePage", got)
	}
	if got := s.Layout().Len(); got != 4 {
		t.Errorf("Layout().Len() = %d, want 4", got)
	}
}

func TestFindPath(t *testing.T) {
	s := New(chain(), Options{})
	ids, cost, err := s.FindPath("HomePage", "C")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"HomePage", "A", "C"}, ids); diff != "" {
		t.Errorf("FindPath mismatch (-want +got):\n%s", diff)
	}
	if cost != 3 {
		t.Errorf("cost = %v, want 3", cost)
	}
	if ids, _, err := s.FindPath("C", "HomePage"); err != nil || len(ids) != 0 {
		t.Errorf("FindPath(C, HomePage) = %v, %v, want empty path", ids, err)
	}
	if _, _, err := s.FindPath("x", "C"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("FindPath(x) error = %v, want ErrNotFound", err)
	}
}

func TestClose(t *testing.T) {
	s := New(chain(), Options{})
	var seen []string
	s.OnFocus(func(id string) { seen = append(seen, id) })
	s.SetFocus("A")
	s.Close()
	s.Close()
	s.SetFocus("B")
	if diff := cmp.Diff([]string{"A"}, seen); diff != "" {
		t.Errorf("focus callbacks mismatch (-want +got):\n%s", diff)
	}
	if s.Tick() {
		t.Error("Tick() after Close = true, want false")
	}
	if got := s.focus.Subscribers(); got != 0 {
		t.Errorf("Subscribers() = %d, want 0", got)
	}
}
