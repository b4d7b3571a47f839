//go:build !cgo

package edge

import (
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"
)

// nativeInvoker calls C function pointers through purego.
type nativeInvoker struct{}

func (nativeInvoker) stream(fn CFunc, ctx uintptr, data []byte) {
	purego.SyscallN(uintptr(fn), ctx, uintptr(dataPtr(data)), uintptr(uint32(len(data))))
	runtime.KeepAlive(data)
}

func (nativeInvoker) status(fn CFunc, ctx uintptr, status uint32) {
	purego.SyscallN(uintptr(fn), ctx, uintptr(status))
}

func (nativeInvoker) bytes(fn CFunc, data []byte) {
	purego.SyscallN(uintptr(fn), uintptr(dataPtr(data)), uintptr(uint32(len(data))))
	runtime.KeepAlive(data)
}

func (nativeInvoker) mediaFile(fn CFunc, file *MediaFileRecord) {
	purego.SyscallN(uintptr(fn), uintptr(unsafe.Pointer(file)))
	runtime.KeepAlive(file)
}
