//go:build cgo

package edge

/*
#include <stdlib.h>
*/
import "C"

import "unsafe"

// cAllocator allocates from the C heap so C callers can release blocks
// with free().
type cAllocator struct{}

func newNativeAllocator() allocator { return cAllocator{} }

func (cAllocator) alloc(size uintptr) unsafe.Pointer {
	return C.calloc(1, C.size_t(size))
}

func (cAllocator) free(p unsafe.Pointer) {
	C.free(p)
}
