// Package reactive is a small pull-based dependency-tracked dataflow
// library. Cells hold values with a change counter; derived values recompute
// lazily on read when a dependency's counter has moved, and only bump their
// own counter when the recomputed value actually differs. Setting a cell to
// an equal value changes nothing downstream.
//
// Everything here is single-threaded: cells belong to one viewer session and
// are touched only from its tick goroutine.
package reactive

// Source is anything with a change counter.
type Source interface {
	Version() uint64
}

// Reader is a Source with a current value.
type Reader[T any] interface {
	Source
	Get() T
}

type subscription[T any] struct {
	fn     func(T)
	active bool
}

// Cell is a primitive value holder.
type Cell[T any] struct {
	value   T
	version uint64
	equal   func(a, b T) bool
	subs    []*subscription[T]
}

// NewCell returns a cell comparing values with ==.
func NewCell[T comparable](v T) *Cell[T] {
	return NewCellFunc(v, func(a, b T) bool { return a == b })
}

// NewCellFunc returns a cell comparing values with equal. A nil equal treats
// every Set as a change.
func NewCellFunc[T any](v T, equal func(a, b T) bool) *Cell[T] {
	return &Cell[T]{value: v, equal: equal, version: 1}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	return c.value
}

// Version returns the change counter.
func (c *Cell[T]) Version() uint64 {
	return c.version
}

// Set stores v and notifies subscribers. It is a no-op returning false when
// v equals the current value.
func (c *Cell[T]) Set(v T) bool {
	if c.equal != nil && c.equal(c.value, v) {
		return false
	}
	c.value = v
	c.version++
	for _, s := range c.subs {
		if s.active {
			s.fn(v)
		}
	}
	return true
}

// Subscribe registers fn to run after every effective Set. The returned
// function detaches it.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	s := &subscription[T]{fn: fn, active: true}
	c.subs = append(c.subs, s)
	return func() {
		if !s.active {
			return
		}
		s.active = false
		for i, other := range c.subs {
			if other == s {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				break
			}
		}
	}
}

// Subscribers returns the number of attached subscribers.
func (c *Cell[T]) Subscribers() int {
	return len(c.subs)
}

// memo is the cached result shared by the derived variants.
type memo[T any] struct {
	value   T
	version uint64
	valid   bool
	equal   func(a, b T) bool
	runs    int
}

func (m *memo[T]) commit(v T) {
	m.runs++
	if m.valid && m.equal != nil && m.equal(m.value, v) {
		return
	}
	m.value = v
	m.valid = true
	m.version++
}
