package edge

import "unsafe"

// allocator hands out memory that the caller releases with Free.
// cgo builds use the C heap; other builds keep Go memory reachable until
// it is freed.
type allocator interface {
	alloc(size uintptr) unsafe.Pointer
	free(p unsafe.Pointer)
}

var heap allocator = newNativeAllocator()

// Alloc returns size bytes of zeroed memory aligned for any record type,
// or nil when size is 0.
func Alloc(size uintptr) unsafe.Pointer {
	if size == 0 {
		return nil
	}
	return heap.alloc(size)
}

// Free releases memory returned by the facade. Free(nil) is a no-op.
func Free(p unsafe.Pointer) {
	if p == nil {
		return
	}
	heap.free(p)
}
