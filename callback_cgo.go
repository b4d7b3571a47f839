//go:build cgo

package edge

/*
#include <stdint.h>

typedef void (*edge_stream_fn)(void *ctx, const uint8_t *buf, uint32_t len);
typedef void (*edge_status_fn)(void *ctx, uint32_t status);
typedef void (*edge_bytes_fn)(const uint8_t *data, uint32_t len);
typedef void (*edge_record_fn)(const void *record);

static inline void edge_call_stream(uintptr_t fn, uintptr_t ctx, const uint8_t *buf, uint32_t len) {
    ((edge_stream_fn)fn)((void *)ctx, buf, len);
}

static inline void edge_call_status(uintptr_t fn, uintptr_t ctx, uint32_t status) {
    ((edge_status_fn)fn)((void *)ctx, status);
}

static inline void edge_call_bytes(uintptr_t fn, const uint8_t *data, uint32_t len) {
    ((edge_bytes_fn)fn)(data, len);
}

static inline void edge_call_record(uintptr_t fn, const void *record) {
    ((edge_record_fn)fn)(record);
}
*/
import "C"

import "unsafe"

// nativeInvoker calls C function pointers through cgo shims.
type nativeInvoker struct{}

func (nativeInvoker) stream(fn CFunc, ctx uintptr, data []byte) {
	C.edge_call_stream(C.uintptr_t(fn), C.uintptr_t(ctx), (*C.uint8_t)(dataPtr(data)), C.uint32_t(len(data)))
}

func (nativeInvoker) status(fn CFunc, ctx uintptr, status uint32) {
	C.edge_call_status(C.uintptr_t(fn), C.uintptr_t(ctx), C.uint32_t(status))
}

func (nativeInvoker) bytes(fn CFunc, data []byte) {
	C.edge_call_bytes(C.uintptr_t(fn), (*C.uint8_t)(dataPtr(data)), C.uint32_t(len(data)))
}

func (nativeInvoker) mediaFile(fn CFunc, file *MediaFileRecord) {
	C.edge_call_record(C.uintptr_t(fn), unsafe.Pointer(file))
}
