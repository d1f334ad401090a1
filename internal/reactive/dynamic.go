package reactive

// Tracker records the sources a Dynamic computation read during one run.
type Tracker struct {
	deps []Source
	seen []uint64
}

// Track records s as a dependency of the current run.
func (t *Tracker) Track(s Source) {
	t.deps = append(t.deps, s)
	t.seen = append(t.seen, s.Version())
}

// Use reads r and records it as a dependency.
func Use[T any](t *Tracker, r Reader[T]) T {
	v := r.Get()
	t.Track(r)
	return v
}

func (t *Tracker) changed() bool {
	for i, dep := range t.deps {
		if dep.Version() != t.seen[i] {
			return true
		}
	}
	return false
}

// Dynamic discovers its dependencies on every run: whatever compute reads
// through the tracker becomes the dependency set for the next staleness
// check.
type Dynamic[T any] struct {
	memo[T]
	tracker Tracker
	compute func(*Tracker) T
}

// Track returns a dynamically-dependent derivation.
func Track[T any](compute func(*Tracker) T) *Dynamic[T] {
	return &Dynamic[T]{compute: compute}
}

// WithEqual installs a cut-off comparison.
func (d *Dynamic[T]) WithEqual(equal func(a, b T) bool) *Dynamic[T] {
	d.equal = equal
	return d
}

func (d *Dynamic[T]) refresh() {
	if d.valid && !d.tracker.changed() {
		return
	}
	var t Tracker
	v := d.compute(&t)
	d.tracker = t
	d.commit(v)
}

// Get returns the value, recomputing first if a tracked source changed.
func (d *Dynamic[T]) Get() T {
	d.refresh()
	return d.value
}

// Version returns the change counter after bringing d up to date.
func (d *Dynamic[T]) Version() uint64 {
	d.refresh()
	return d.version
}

// Runs returns how many times compute has been invoked.
func (d *Dynamic[T]) Runs() int {
	return d.runs
}

// Selected is the two-level form of a dynamic dependency: an outer key
// chooses which inner derivation to read, and the inner derivation is
// rebuilt only when the key changes.
type Selected[K comparable, T any] struct {
	memo[T]
	key     Reader[K]
	build   func(K) Reader[T]
	inner   Reader[T]
	current K
	keySeen uint64
	inSeen  uint64
	rebuilt bool
	builds  int
}

// Select returns a derivation reading build(key.Get()).
func Select[K comparable, T any](key Reader[K], build func(K) Reader[T]) *Selected[K, T] {
	return &Selected[K, T]{key: key, build: build}
}

// WithEqual installs a cut-off comparison.
func (s *Selected[K, T]) WithEqual(equal func(a, b T) bool) *Selected[K, T] {
	s.equal = equal
	return s
}

func (s *Selected[K, T]) refresh() {
	if kv := s.key.Version(); s.inner == nil || kv != s.keySeen {
		k := s.key.Get()
		if s.inner == nil || k != s.current {
			s.inner = s.build(k)
			s.current = k
			s.rebuilt = true
			s.builds++
		}
		s.keySeen = kv
	}
	iv := s.inner.Version()
	if s.valid && !s.rebuilt && iv == s.inSeen {
		return
	}
	v := s.inner.Get()
	s.inSeen = s.inner.Version()
	s.rebuilt = false
	s.commit(v)
}

// Get returns the selected inner value.
func (s *Selected[K, T]) Get() T {
	s.refresh()
	return s.value
}

// Version returns the change counter after bringing s up to date.
func (s *Selected[K, T]) Version() uint64 {
	s.refresh()
	return s.version
}

// Builds returns how many inner derivations have been built.
func (s *Selected[K, T]) Builds() int {
	return s.builds
}
