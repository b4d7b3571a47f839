package sim

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

// deliveries tracks the goroutines currently running a user callback.
// Teardown that would wait for a delivery goroutine checks inside first:
// a callback that stops its own source cannot wait for itself to return.
type deliveries struct {
	mu  sync.Mutex
	ids map[uint64]int
}

// run calls f, marking the calling goroutine as delivering.
func (d *deliveries) run(f func()) {
	id := goroutineID()
	d.mu.Lock()
	if d.ids == nil {
		d.ids = make(map[uint64]int)
	}
	d.ids[id]++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		if d.ids[id]--; d.ids[id] == 0 {
			delete(d.ids, id)
		}
		d.mu.Unlock()
	}()
	f()
}

// inside reports whether the calling goroutine is running a callback.
func (d *deliveries) inside() bool {
	id := goroutineID()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ids[id] > 0
}

// goroutineID parses the id from the "goroutine N [state]:" stack header.
func goroutineID() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseUint(string(b), 10, 64)
	return id
}
