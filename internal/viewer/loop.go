// Package viewer runs a scene session on its own goroutine and drives it
// from a frame clock.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/sitegraph/internal/apperr"
	"github.com/starford/sitegraph/internal/geom"
	"github.com/starford/sitegraph/internal/metrics"
	"github.com/starford/sitegraph/internal/scene"
	"github.com/starford/sitegraph/internal/sitegraph"
	"github.com/starford/sitegraph/internal/sse"
)

// Event types published by the loop.
const (
	EventSceneUpdated = "scene.updated"
	EventNavigate     = "node.navigate"
	EventFocus        = "focus.changed"
	EventGraph        = "graph.reloaded"
)

// Publisher receives loop events.
type Publisher interface {
	Publish(event sse.Event)
}

// Update is the scene.updated payload: the frame drawn by a dirty tick.
type Update struct {
	Session string `json:"session"`
	scene.Frame
}

type discard struct{}

func (discard) Publish(sse.Event) {}

// Options configures a Loop.
type Options struct {
	Scene scene.Options
	// FPS sets the frame clock when Frames is nil. Zero means 60.
	FPS int
	// Frames overrides the frame clock.
	Frames    <-chan time.Time
	Publisher Publisher
	Logger    *slog.Logger
}

type request struct {
	fn   func(*scene.Session)
	done chan struct{}
}

// Loop owns one scene session. Public methods hand work to the loop
// goroutine through channels, so the session is never shared.
type Loop struct {
	id     string
	pub    Publisher
	logger *slog.Logger
	frames <-chan time.Time
	ticker *time.Ticker

	inbox chan request

	// Owned by the loop goroutine.
	watchers map[chan scene.Frame]struct{}

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// New starts a loop over doc.
func New(doc *sitegraph.Document, opts Options) *Loop {
	l := &Loop{
		id:       uuid.NewString(),
		pub:      opts.Publisher,
		logger:   opts.Logger,
		frames:   opts.Frames,
		inbox:    make(chan request, 256),
		watchers: make(map[chan scene.Frame]struct{}),
		stopCh:   make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	if l.pub == nil {
		l.pub = discard{}
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.frames == nil {
		fps := opts.FPS
		if fps <= 0 {
			fps = 60
		}
		l.ticker = time.NewTicker(time.Second / time.Duration(fps))
		l.frames = l.ticker.C
	}

	so := opts.Scene
	next := so.Navigator
	so.Navigator = scene.NavigatorFunc(func(id string) {
		l.pub.Publish(sse.Event{Type: EventNavigate, Data: map[string]string{"id": id}})
		if next != nil {
			next.Navigate(id)
		}
	})
	s := scene.New(doc, so)
	s.OnFocus(func(id string) {
		l.pub.Publish(sse.Event{Type: EventFocus, Data: map[string]string{"id": id}})
	})
	metrics.GraphNodes.Set(float64(len(doc.Nodes)))

	go l.run(s)
	return l
}

// ID identifies this viewer session.
func (l *Loop) ID() string {
	return l.id
}

func (l *Loop) run(s *scene.Session) {
	defer close(l.stopped)
	defer s.Close()
	if l.ticker != nil {
		defer l.ticker.Stop()
	}

	for {
		select {
		case <-l.stopCh:
			for ch := range l.watchers {
				close(ch)
			}
			return

		case req := <-l.inbox:
			req.fn(s)
			if req.done != nil {
				close(req.done)
			}

		case <-l.frames:
			l.tick(s)
		}
	}
}

func (l *Loop) tick(s *scene.Session) {
	start := time.Now()
	dirty := s.Tick()
	metrics.ObserveTick(time.Since(start), dirty, s.Converged())
	if !dirty {
		return
	}
	f := s.Frame()
	l.pub.Publish(sse.Event{Type: EventSceneUpdated, Data: Update{Session: l.id, Frame: f}})
	for ch := range l.watchers {
		select {
		case ch <- f:
		default:
			// Watcher is behind; it gets the next frame.
		}
	}
}

// Post queues fn to run on the loop goroutine without waiting for it.
func (l *Loop) Post(fn func(*scene.Session)) error {
	if l.closed.Load() {
		return apperr.ErrClosed
	}
	select {
	case l.inbox <- request{fn: fn}:
		return nil
	case <-l.stopped:
		return apperr.ErrClosed
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*scene.Session)) error {
	if l.closed.Load() {
		return apperr.ErrClosed
	}
	done := make(chan struct{})
	select {
	case l.inbox <- request{fn: fn, done: done}:
	case <-l.stopped:
		return apperr.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return apperr.ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Frame returns a copy of the current view-models.
func (l *Loop) Frame(ctx context.Context) (scene.Frame, error) {
	var f scene.Frame
	err := l.Do(ctx, func(s *scene.Session) { f = s.Frame() })
	return f, err
}

// Pointer queues a pointer event.
func (l *Loop) Pointer(ev PointerEvent) error {
	return l.Post(ev.apply)
}

// Resize queues a viewport change.
func (l *Loop) Resize(width, height float64) error {
	return l.Post(func(s *scene.Session) { s.Resize(width, height) })
}

// Focus moves focus to id and waits for the result.
func (l *Loop) Focus(ctx context.Context, id string) error {
	var ferr error
	if err := l.Do(ctx, func(s *scene.Session) { ferr = s.SetFocus(id) }); err != nil {
		return err
	}
	return ferr
}

// ReplaceGraph swaps the document and publishes a reload event when it
// changed.
func (l *Loop) ReplaceGraph(ctx context.Context, doc *sitegraph.Document) error {
	return l.Do(ctx, func(s *scene.Session) {
		if !s.ReplaceGraph(doc) {
			return
		}
		metrics.GraphNodes.Set(float64(len(doc.Nodes)))
		l.logger.Info("graph reloaded",
			slog.Int("nodes", len(doc.Nodes)),
			slog.String("focus", s.Focus()))
		l.pub.Publish(sse.Event{Type: EventGraph, Data: map[string]any{
			"nodes": len(doc.Nodes),
			"focus": s.Focus(),
		}})
	})
}

// Watch subscribes to frames produced by dirty ticks. Slow watchers miss
// frames rather than block the loop. The returned cancel is idempotent.
func (l *Loop) Watch(ctx context.Context) (<-chan scene.Frame, func(), error) {
	ch := make(chan scene.Frame, 4)
	if err := l.Do(ctx, func(*scene.Session) { l.watchers[ch] = struct{}{} }); err != nil {
		return nil, nil, err
	}
	var once atomic.Bool
	cancel := func() {
		if !once.CompareAndSwap(false, true) {
			return
		}
		_ = l.Post(func(*scene.Session) {
			if _, ok := l.watchers[ch]; ok {
				delete(l.watchers, ch)
				close(ch)
			}
		})
	}
	return ch, cancel, nil
}

// Close stops the loop and releases the session. It is safe to call more
// than once; later calls to other methods return apperr.ErrClosed.
func (l *Loop) Close() {
	if l.closed.CompareAndSwap(false, true) {
		close(l.stopCh)
	}
	<-l.stopped
}

// PointerKind names a pointer event.
type PointerKind string

const (
	PointerDown  PointerKind = "down"
	PointerMove  PointerKind = "move"
	PointerUp    PointerKind = "up"
	PointerLeave PointerKind = "leave"
)

// PointerEvent is one pointer input in surface pixels.
type PointerEvent struct {
	Kind      PointerKind `json:"type"`
	PointerID int         `json:"pointerId"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
}

// Validate rejects unknown kinds and negative pointer ids.
func (e PointerEvent) Validate() error {
	if err := validation.ValidateStruct(&e,
		validation.Field(&e.Kind, validation.Required, validation.In(PointerDown, PointerMove, PointerUp, PointerLeave)),
		validation.Field(&e.PointerID, validation.Min(0)),
	); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrInvalidInput, err)
	}
	return nil
}

func (e PointerEvent) apply(s *scene.Session) {
	pos := geom.Vec2{X: e.X, Y: e.Y}
	switch e.Kind {
	case PointerDown:
		s.PointerDown(e.PointerID, pos)
	case PointerMove:
		s.PointerMove(e.PointerID, pos)
	case PointerUp:
		s.PointerUp(e.PointerID, pos)
	case PointerLeave:
		s.PointerLeave()
	}
}
