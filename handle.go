package edge

import (
	"sync"
	"sync/atomic"
)

// Handle is an opaque, non-zero id for an object held by a caller across
// the C boundary. The zero Handle is invalid.
type Handle uintptr

var lastHandle atomic.Uintptr

// HandleTable maps handles to values of one kind.
// Ids come from a process-wide counter and are never reused.
type HandleTable[T any] struct {
	m sync.Map
}

// Put stores v and returns its new handle.
func (t *HandleTable[T]) Put(v T) Handle {
	h := Handle(lastHandle.Add(1))
	t.m.Store(h, v)
	return h
}

// Get returns the value stored under h.
func (t *HandleTable[T]) Get(h Handle) (v T, ok bool) {
	if h == 0 {
		return v, false
	}
	x, ok := t.m.Load(h)
	if !ok {
		return v, false
	}
	return x.(T), true
}

// Delete removes h and returns the value it referred to.
func (t *HandleTable[T]) Delete(h Handle) (v T, ok bool) {
	if h == 0 {
		return v, false
	}
	x, ok := t.m.LoadAndDelete(h)
	if !ok {
		return v, false
	}
	return x.(T), true
}

// Len returns the number of live handles.
func (t *HandleTable[T]) Len() int {
	n := 0
	t.m.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
