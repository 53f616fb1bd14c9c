package datasource

import "sync/atomic"

// Liveness may be implemented by collaborators that can report their own teardown.
type Liveness interface {
	Alive() bool
}

// Ref is a non-owning handle to a collaborator.
type Ref[T any] struct {
	v atomic.Pointer[box[T]]
}

type box[T any] struct {
	v T
}

// NewRef returns a live reference to v.
func NewRef[T any](v T) *Ref[T] {
	r := &Ref[T]{}
	r.v.Store(&box[T]{v: v})
	return r
}

// Get returns the collaborator and whether it is still reachable.
func (r *Ref[T]) Get() (T, bool) {
	var zero T
	if r == nil {
		return zero, false
	}
	b := r.v.Load()
	if b == nil {
		return zero, false
	}
	if l, ok := any(b.v).(Liveness); ok && !l.Alive() {
		return zero, false
	}
	return b.v, true
}

// Alive reports whether Get would succeed.
func (r *Ref[T]) Alive() bool {
	_, ok := r.Get()
	return ok
}

// Detach drops the reference. Subsequent Get calls fail.
func (r *Ref[T]) Detach() {
	if r != nil {
		r.v.Store(nil)
	}
}
