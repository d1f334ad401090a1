package reactive

// Derived is computed from a fixed list of sources.
type Derived[T any] struct {
	memo[T]
	deps    []Source
	seen    []uint64
	compute func() T
}

// Derive returns a value recomputed by compute whenever any of deps changes.
// compute must read only deps.
func Derive[T any](compute func() T, deps ...Source) *Derived[T] {
	return &Derived[T]{
		deps:    deps,
		seen:    make([]uint64, len(deps)),
		compute: compute,
	}
}

// WithEqual makes d keep its version when a recompute yields an equal value,
// cutting off downstream recomputation.
func (d *Derived[T]) WithEqual(equal func(a, b T) bool) *Derived[T] {
	d.equal = equal
	return d
}

func (d *Derived[T]) refresh() {
	if d.valid && !d.stale() {
		return
	}
	v := d.compute()
	for i, dep := range d.deps {
		d.seen[i] = dep.Version()
	}
	d.commit(v)
}

func (d *Derived[T]) stale() bool {
	for i, dep := range d.deps {
		if dep.Version() != d.seen[i] {
			return true
		}
	}
	return false
}

// Get returns the value, recomputing first if a dependency changed.
func (d *Derived[T]) Get() T {
	d.refresh()
	return d.value
}

// Version returns the change counter after bringing d up to date.
func (d *Derived[T]) Version() uint64 {
	d.refresh()
	return d.version
}

// Runs returns how many times compute has been invoked.
func (d *Derived[T]) Runs() int {
	return d.runs
}
