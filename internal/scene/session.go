// Package scene is the per-viewer orchestrator. A Session owns every
// reactive cell of one viewer: the graph document, the layout it derives,
// the camera, focus and hover, the highlight sets and paths, and the final
// render-ready view-models. Sessions are single-threaded; callers serialise
// Tick and the pointer handlers onto one goroutine.
package scene

import (
	"maps"
	"slices"

	"github.com/starford/sitegraph/internal/apperr"
	"github.com/starford/sitegraph/internal/approach"
	"github.com/starford/sitegraph/internal/camera"
	"github.com/starford/sitegraph/internal/geom"
	"github.com/starford/sitegraph/internal/layout"
	"github.com/starford/sitegraph/internal/pathfind"
	"github.com/starford/sitegraph/internal/reactive"
	"github.com/starford/sitegraph/internal/sitegraph"
)

const (
	DefaultHome           = "HomePage"
	DefaultHoverRadius    = 20
	DefaultClickThreshold = 5

	anchorSpeed     = 0.1
	anchorDepth     = 2
	anchorSettleEps = 1e-3
)

// Viewport is the drawing surface size in pixels.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Navigator is told when the user clicks the node that already has focus.
type Navigator interface {
	Navigate(id string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(id string)

func (f NavigatorFunc) Navigate(id string) { f(id) }

// Options configures a Session. Zero fields take the package defaults.
type Options struct {
	Home           string
	TopicMarker    string
	HoverRadius    float64
	ClickThreshold float64
	Theme          Theme
	Navigator      Navigator
}

func (o Options) withDefaults() Options {
	if o.Home == "" {
		o.Home = DefaultHome
	}
	if o.TopicMarker == "" {
		o.TopicMarker = pathfind.DefaultTopicMarker
	}
	if o.HoverRadius <= 0 {
		o.HoverRadius = DefaultHoverRadius
	}
	if o.ClickThreshold <= 0 {
		o.ClickThreshold = DefaultClickThreshold
	}
	if o.Theme == (Theme{}) {
		o.Theme = DefaultTheme()
	}
	if o.Navigator == nil {
		o.Navigator = NavigatorFunc(func(string) {})
	}
	return o
}

type pointerState struct {
	pos     geom.Vec2
	present bool
}

// pathKey selects the focus-rooted path finder.
type pathKey struct {
	doc   *sitegraph.Document
	focus string
}

var emptyPath = pathfind.NewPath(nil)

// Session is one viewer's scene.
type Session struct {
	opts Options

	graph    *reactive.Cell[*sitegraph.Document]
	home     *reactive.Derived[string]
	layouts  *reactive.Derived[*layout.Layouter]
	camera   *camera.Camera
	anchor   *approach.Approacher
	anchorAt *reactive.Cell[geom.Vec3]

	focus    *reactive.Cell[string]
	hover    *reactive.Cell[string]
	viewport *reactive.Cell[Viewport]
	pointer  *reactive.Cell[pointerState]

	finders    *reactive.Derived[map[string]*pathfind.Finder]
	homeFinder *reactive.Derived[*pathfind.Finder]
	forward    *reactive.Derived[map[string]bool]
	back       *reactive.Derived[map[string]bool]
	homePath   *reactive.Derived[*pathfind.Path]
	hoverPath  *reactive.Selected[pathKey, *pathfind.Path]
	screen     *reactive.Dynamic[[]geom.Vec2]
	views      *reactive.Dynamic[views]

	// Hit testing in pointer handlers uses the last tick's results so that
	// handlers never trigger recomputation.
	hit   views
	click click

	drawn  uint64
	ticks  uint64
	moving bool
	closed bool
	unsubs []func()
}

// New builds a session over doc.
func New(doc *sitegraph.Document, opts Options) *Session {
	opts = opts.withDefaults()
	s := &Session{opts: opts, camera: camera.New()}

	s.graph = reactive.NewCellFunc(doc, sameDocument)
	s.home = reactive.Derive(func() string {
		return resolveHome(s.graph.Get(), opts.Home)
	}, s.graph).WithEqual(func(a, b string) bool { return a == b })
	s.layouts = reactive.Derive(func() *layout.Layouter {
		return layout.New(s.graph.Get())
	}, s.graph)

	s.focus = reactive.NewCell(s.home.Get())
	s.hover = reactive.NewCell("")
	s.viewport = reactive.NewCell(Viewport{})
	s.pointer = reactive.NewCell(pointerState{})

	start, _ := s.layouts.Get().DisplayPosition(s.focus.Get())
	s.anchor = approach.New(start, anchorSpeed, anchorDepth)
	s.anchorAt = reactive.NewCell(start)

	s.finders = reactive.Derive(func() map[string]*pathfind.Finder {
		return make(map[string]*pathfind.Finder)
	}, s.graph)
	s.homeFinder = reactive.Derive(func() *pathfind.Finder {
		return s.finder(s.home.Get())
	}, s.finders, s.home)
	s.forward = reactive.Derive(func() map[string]bool {
		return toSet(s.graph.Get().Successors(s.focus.Get()))
	}, s.graph, s.focus).WithEqual(sameSet)
	s.back = reactive.Derive(func() map[string]bool {
		return toSet(s.graph.Get().Predecessors(s.focus.Get()))
	}, s.graph, s.focus).WithEqual(sameSet)
	s.homePath = reactive.Derive(func() *pathfind.Path {
		return s.homeFinder.Get().PathViewTo(s.focus.Get())
	}, s.homeFinder, s.focus).WithEqual(samePath)

	key := reactive.Derive(func() pathKey {
		return pathKey{doc: s.graph.Get(), focus: s.focus.Get()}
	}, s.graph, s.focus).WithEqual(func(a, b pathKey) bool { return a == b })
	s.hoverPath = reactive.Select(key, func(k pathKey) reactive.Reader[*pathfind.Path] {
		f := pathfind.New(k.doc, k.focus, opts.TopicMarker)
		return reactive.Derive(func() *pathfind.Path {
			h := s.hover.Get()
			if h == "" {
				return emptyPath
			}
			return f.PathViewTo(h)
		}, s.hover)
	}).WithEqual(samePath)

	s.screen = reactive.Track(s.computeScreen)
	s.views = reactive.Track(s.computeViews).WithEqual(sameViews)
	return s
}

func sameDocument(a, b *sitegraph.Document) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a.Checksum() == b.Checksum()
}

func sameSet(a, b map[string]bool) bool {
	return maps.Equal(a, b)
}

func samePath(a, b *pathfind.Path) bool {
	return a == b || slices.Equal(a.IDs(), b.IDs())
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

// resolveHome picks the configured home when it exists, else the smallest
// id, else the empty string.
func resolveHome(doc *sitegraph.Document, home string) string {
	if doc.Has(home) {
		return home
	}
	if ids := doc.IDs(); len(ids) > 0 {
		return ids[0]
	}
	return ""
}

// finder returns the memoised path finder rooted at start.
func (s *Session) finder(start string) *pathfind.Finder {
	cache := s.finders.Get()
	if f, ok := cache[start]; ok {
		return f
	}
	f := pathfind.New(s.graph.Get(), start, s.opts.TopicMarker)
	cache[start] = f
	return f
}

// Document returns the current graph document.
func (s *Session) Document() *sitegraph.Document {
	return s.graph.Get()
}

// Layout returns the current layouter.
func (s *Session) Layout() *layout.Layouter {
	return s.layouts.Get()
}

// Camera returns the session camera.
func (s *Session) Camera() *camera.Camera {
	return s.camera
}

// Home returns the resolved home node.
func (s *Session) Home() string {
	return s.home.Get()
}

// Focus returns the focused node id.
func (s *Session) Focus() string {
	return s.focus.Get()
}

// Hover returns the hovered node id, or "" when nothing is hovered.
func (s *Session) Hover() string {
	return s.hover.Get()
}

// Viewport returns the last size passed to Resize.
func (s *Session) Viewport() Viewport {
	return s.viewport.Get()
}

// ForwardLinks returns the sorted ids the focus links to.
func (s *Session) ForwardLinks() []string {
	return slices.Sorted(maps.Keys(s.forward.Get()))
}

// BackLinks returns the sorted ids linking to the focus.
func (s *Session) BackLinks() []string {
	return slices.Sorted(maps.Keys(s.back.Get()))
}

// HomePath returns the cheapest path from home to focus.
func (s *Session) HomePath() *pathfind.Path {
	return s.homePath.Get()
}

// HoverPath returns the cheapest path from focus to hover.
func (s *Session) HoverPath() *pathfind.Path {
	return s.hoverPath.Get()
}

// FindPath returns the cheapest path between two nodes and its cost.
func (s *Session) FindPath(from, to string) ([]string, float64, error) {
	doc := s.graph.Get()
	if !doc.Has(from) || !doc.Has(to) {
		return nil, 0, apperr.ErrNotFound
	}
	f := s.finder(from)
	cost, ok := f.CostTo(to)
	if !ok {
		return []string{}, 0, nil
	}
	return f.PathTo(to), cost, nil
}

// SetFocus moves focus to id. Hover is cleared.
func (s *Session) SetFocus(id string) error {
	if !s.graph.Get().Has(id) {
		return apperr.ErrNotFound
	}
	if s.focus.Set(id) {
		s.hover.Set("")
	}
	return nil
}

// SetHover sets the hovered node directly. It is overridden by pointer
// hit testing while a pointer is over the surface.
func (s *Session) SetHover(id string) error {
	if id != "" && !s.graph.Get().Has(id) {
		return apperr.ErrNotFound
	}
	s.hover.Set(id)
	return nil
}

// OnFocus registers fn to run after every focus change.
func (s *Session) OnFocus(fn func(id string)) {
	s.unsubs = append(s.unsubs, s.focus.Subscribe(fn))
}

// Resize records a new viewport size.
func (s *Session) Resize(width, height float64) {
	s.viewport.Set(Viewport{Width: width, Height: height})
}

// ReplaceGraph swaps in a new document. Focus survives when the focused
// node still exists; otherwise it returns to home. Hover and any pending
// click are reset. It reports whether the document changed.
func (s *Session) ReplaceGraph(doc *sitegraph.Document) bool {
	if !s.graph.Set(doc) {
		return false
	}
	if !doc.Has(s.focus.Get()) {
		s.focus.Set(s.home.Get())
	}
	s.hover.Set("")
	s.click = click{}
	s.hit = views{}
	return true
}

// Ticks returns how many times Tick has run.
func (s *Session) Ticks() uint64 {
	return s.ticks
}

// AtRest reports whether the last tick moved nothing: the layout has
// converged, the orbit is still and the anchor sits on the focus. Until the
// next input every further tick is clean.
func (s *Session) AtRest() bool {
	return s.ticks > 0 && !s.moving
}

// Converged reports whether the layout has come to rest.
func (s *Session) Converged() bool {
	return s.layouts.Get().Converged()
}

// Frame is a copy of the render-ready state after a tick.
type Frame struct {
	Tick      uint64     `json:"tick"`
	Focus     string     `json:"focus"`
	Hover     string     `json:"hover"`
	Home      string     `json:"home"`
	Orbit     geom.Orbit `json:"orbit"`
	Nodes     []NodeView `json:"nodes"`
	Links     []LinkView `json:"links"`
	Converged bool       `json:"converged"`
}

// Frame copies the view-models. It recomputes them if a tick has not
// already done so.
func (s *Session) Frame() Frame {
	v := s.views.Get()
	return Frame{
		Tick:      s.ticks,
		Focus:     s.focus.Get(),
		Hover:     s.hover.Get(),
		Home:      s.home.Get(),
		Orbit:     s.camera.Orbit(),
		Nodes:     slices.Clone(v.nodes),
		Links:     slices.Clone(v.links),
		Converged: s.Converged(),
	}
}

// Close releases every subscription and cached view. Later ticks are
// no-ops.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.hit = views{}
}

// Closed reports whether Close has run.
func (s *Session) Closed() bool {
	return s.closed
}
