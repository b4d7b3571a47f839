//go:build !cgo

package edge

import (
	"sync"
	"unsafe"
)

// goAllocator allocates word-aligned blocks from the Go heap and keeps them
// reachable until freed. Blocks are pointer-free to the collector, so
// pointers stored inside a block must only refer to the block itself.
type goAllocator struct {
	mu     sync.Mutex
	blocks map[unsafe.Pointer][]uint64
}

func newNativeAllocator() allocator {
	return &goAllocator{blocks: make(map[unsafe.Pointer][]uint64)}
}

func (a *goAllocator) alloc(size uintptr) unsafe.Pointer {
	words := make([]uint64, (size+7)/8)
	p := unsafe.Pointer(&words[0])
	a.mu.Lock()
	a.blocks[p] = words
	a.mu.Unlock()
	return p
}

func (a *goAllocator) free(p unsafe.Pointer) {
	a.mu.Lock()
	delete(a.blocks, p)
	a.mu.Unlock()
}

