// Package edge is the C-callable facade of a device-side edge SDK.
//
// It lets C callers, or anything that binds through a C ABI, drive SDK
// initialization, cloud custom messages, live video streaming and on-device
// media file access implemented by a native SDK backend.
//
// Key pieces include:
//   - StringView marshalling between {len, data} views and owned strings
//   - Shared, a reference-counted owner of native objects, and HandleTable,
//     which exposes objects to C as opaque integer handles
//   - Trampolines that turn C function pointers plus a caller context into
//     native callbacks
//   - Facades: Init/DeInit, Cloud*, LiveView*, Media* and FilesReader*
//
// # Architecture
//
//	C caller -> POD structs -> facade (validate, marshal) -> Backend services
//	Backend callbacks -> trampoline {ctx, handle, fn} -> C function pointer
//
// # Backends
//
// The native SDK is reached through the interfaces in native.go. A backend
// registers itself with RegisterBackend; the first facade call constructs
// the backend named by EDGE_SDK_BACKEND (or the only registered one), and
// Shutdown tears it down. The sim package provides a simulated SDK.
//
// # Build Modes
//
// With cgo enabled, C function pointers are called through small C shims
// and memory handed to callers comes from malloc. Without cgo, purego calls
// the function pointers and memory comes from the Go heap, kept alive until
// Free. The cmd/libedgesdk program exports the facade as a C shared library.
//
// # Ownership
//
//   - Views passed in are copied, never retained.
//   - FilesReaderList returns one block; release it with a single Free.
//   - Handles are caller-owned and not synchronized; do not use one handle
//     from several goroutines at once.
package edge
