// Package sse streams viewer events to browsers over Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Throttled is the event type coalesced by the broker: at most one per
// throttle interval reaches clients, always the latest. The last one sent is
// also replayed to every new subscriber so a fresh page starts from the
// current scene.
const Throttled = "scene.updated"

const defaultHeartbeat = 15 * time.Second

type sourceEventReq struct {
	kind string
	path string
}

type subscriber struct {
	ch    chan []byte
	types map[string]bool // nil accepts every type
}

func (s subscriber) wants(eventType string) bool {
	return s.types == nil || s.types[eventType]
}

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat sets how often idle streams receive a comment line.
// Zero or negative disables heartbeats.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) { b.heartbeat = d }
}

// Broker fans viewer events out to SSE clients.
//
// One goroutine owns the client set, the pending scene update and the event
// sequence. Everything else talks to it over channels.
type Broker struct {
	minInterval time.Duration
	heartbeat   time.Duration

	subscribeCh   chan subscriber
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	sourceEventCh chan sourceEventReq
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that coalesces scene updates to one per
// throttle interval.
func NewBroker(throttle time.Duration, opts ...Option) *Broker {
	if throttle <= 0 {
		throttle = 100 * time.Millisecond
	}

	b := &Broker{
		minInterval:   throttle,
		heartbeat:     defaultHeartbeat,
		subscribeCh:   make(chan subscriber),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		sourceEventCh: make(chan sourceEventReq, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

// frame renders one SSE message.
func frame(id uint64, event Event) ([]byte, bool) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, false
	}
	return []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", id, event.Type, payload)), true
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]subscriber)
	var (
		seq           uint64
		lastThrottled time.Time
		pending       *Event
		flush         <-chan time.Time
		snapshot      []byte
	)

	broadcast := func(event Event) {
		seq++
		raw, ok := frame(seq, event)
		if !ok {
			return
		}
		if event.Type == Throttled {
			snapshot = raw
		}
		for ch, sub := range clients {
			if !sub.wants(event.Type) {
				continue
			}
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall every other stream.
			}
		}
	}

	throttle := func(event Event) {
		now := time.Now()
		if wait := b.minInterval - now.Sub(lastThrottled); wait > 0 {
			pending = &event
			if flush == nil {
				flush = time.After(wait)
			}
			return
		}
		lastThrottled = now
		broadcast(event)
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = sub
			if snapshot != nil && sub.wants(Throttled) {
				sub.ch <- snapshot
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			if event.Type == Throttled {
				throttle(event)
				continue
			}
			broadcast(event)

		case <-flush:
			flush = nil
			if pending != nil {
				lastThrottled = time.Now()
				broadcast(*pending)
				pending = nil
			}

		case req := <-b.sourceEventCh:
			switch req.kind {
			case "created", "updated", "deleted":
				broadcast(Event{Type: "source." + req.kind, Data: map[string]string{"path": req.path}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the broker and closes every client channel. It is idempotent.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a client and returns its channel. With types given, only
// events of those types are delivered.
func (b *Broker) Subscribe(types ...string) chan []byte {
	sub := subscriber{ch: make(chan []byte, 64)}
	if len(types) > 0 {
		sub.types = make(map[string]bool, len(types))
		for _, t := range types {
			sub.types[t] = true
		}
	}
	if b.closed.Load() {
		close(sub.ch)
		return sub.ch
	}

	select {
	case b.subscribeCh <- sub:
	case <-b.stopped:
		close(sub.ch)
	}
	return sub.ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish queues an event for every interested client.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishSourceEvent publishes a change to one source file of the graph.
// kind is created, updated or deleted; anything else is ignored.
func (b *Broker) PublishSourceEvent(kind, path string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.sourceEventCh <- sourceEventReq{kind: kind, path: path}:
	case <-b.stopped:
	}
}

// ServeHTTP streams events to one client. The optional types query
// parameter is a comma-separated filter, e.g. ?types=node.navigate,focus.changed.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var types []string
	for _, t := range strings.Split(r.URL.Query().Get("types"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe(types...)
	defer b.Unsubscribe(ch)

	var ping <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		ping = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
