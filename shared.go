package edge

import "sync/atomic"

// Shared is a reference-counted owner of a native object.
//
// Copying a Shared by value does not add a reference; use Clone for that.
// Each reference obtained from MakeShared or Clone must be dropped with
// exactly one Reset. The release func runs once, when the last reference
// is dropped. A Shared is not safe for concurrent Reset of the same value;
// distinct clones may be reset from different goroutines.
type Shared[T any] struct {
	c *sharedControl[T]
}

type sharedControl[T any] struct {
	refs    atomic.Int64
	value   T
	release func(T)
}

// MakeShared takes ownership of v with a single reference.
// release may be nil.
func MakeShared[T any](v T, release func(T)) Shared[T] {
	c := &sharedControl[T]{value: v, release: release}
	c.refs.Store(1)
	return Shared[T]{c: c}
}

// Clone returns a new reference to the same object.
func (s Shared[T]) Clone() Shared[T] {
	if s.c != nil {
		s.c.refs.Add(1)
	}
	return s
}

// Reset drops this reference and clears s.
func (s *Shared[T]) Reset() {
	c := s.c
	s.c = nil
	if c == nil {
		return
	}
	if n := c.refs.Add(-1); n == 0 {
		if c.release != nil {
			c.release(c.value)
		}
		var zero T
		c.value = zero
	}
}

// Get returns the wrapped object. ok is false for a cleared or never-set wrapper.
func (s Shared[T]) Get() (v T, ok bool) {
	if s.c == nil {
		return v, false
	}
	return s.c.value, true
}

// Valid reports whether s holds a reference.
func (s Shared[T]) Valid() bool {
	return s.c != nil
}

// UseCount returns the number of live references, 0 for a cleared wrapper.
func (s Shared[T]) UseCount() int64 {
	if s.c == nil {
		return 0
	}
	return s.c.refs.Load()
}
