package edge

import "unsafe"

// CFunc is the address of a C function. Zero is the null function pointer.
//
// The facade bridges these C signatures:
//
//	stream data:   void (*)(void *ctx, const uint8_t *buf, uint32_t len)
//	stream status: void (*)(void *ctx, uint32_t status)
//	log output:    void (*)(const uint8_t *data, uint32_t len)
//	cloud message: void (*)(const uint8_t *data, uint32_t len)
//	media file:    void (*)(const CEdgeMediaFile *file)
type CFunc uintptr

// invoker calls C function pointers. The implementation depends on whether
// cgo is enabled; see callback_cgo.go and callback_purego.go.
type invoker interface {
	stream(fn CFunc, ctx uintptr, data []byte)
	status(fn CFunc, ctx uintptr, status uint32)
	bytes(fn CFunc, data []byte)
	mediaFile(fn CFunc, file *MediaFileRecord)
}

var cinvoke invoker = nativeInvoker{}

// Trampolines are plain records: everything a callback needs travels with
// it, so sessions registering the same C function never share state.

// streamTrampoline delivers live view data to a C callback.
type streamTrampoline struct {
	ctx     uintptr
	session Handle
	fn      CFunc
}

func (t *streamTrampoline) onData(data []byte) ErrorCode {
	if _, ok := liveViews.Get(t.session); !ok {
		return Ok
	}
	cinvoke.stream(t.fn, t.ctx, data)
	return Ok
}

// statusTrampoline delivers live view status to a C callback.
type statusTrampoline struct {
	ctx     uintptr
	session Handle
	fn      CFunc
}

func (t *statusTrampoline) onStatus(status LiveviewStatus) {
	if _, ok := liveViews.Get(t.session); !ok {
		return
	}
	cinvoke.status(t.fn, t.ctx, uint32(status))
}

// logTrampoline forwards native log lines to a C output function.
type logTrampoline struct {
	fn CFunc
}

func (t *logTrampoline) output(line []byte) ErrorCode {
	cinvoke.bytes(t.fn, line)
	return Ok
}

// messageTrampoline forwards cloud custom messages to a C handler.
type messageTrampoline struct {
	fn CFunc
}

func (t *messageTrampoline) onMessage(data []byte) {
	cinvoke.bytes(t.fn, data)
}

// mediaFileTrampoline flattens a native media file into a C record for the
// observer. The record and its strings live in one block released after
// the call returns.
type mediaFileTrampoline struct {
	fn CFunc
}

func (t *mediaFileTrampoline) onFile(file *MediaFile) ErrorCode {
	if file == nil {
		cinvoke.mediaFile(t.fn, nil)
		return Ok
	}
	block := serializeMediaFiles([]MediaFile{*file})
	if block == nil {
		return ErrorSystemError
	}
	defer Free(block)
	cinvoke.mediaFile(t.fn, (*MediaFileRecord)(block))
	return Ok
}

func dataPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
