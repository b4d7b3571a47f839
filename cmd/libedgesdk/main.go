//go:build cgo

// Command libedgesdk builds the edge facade as a C shared library:
//
//	go build -buildmode=c-shared -o libedgesdk.so ./cmd/libedgesdk
//
// The generated libedgesdk.h declares the Edge_* functions below together
// with the types in edge_sdk.h. The simulated backend is linked in; select
// a backend with EDGE_SDK_BACKEND or Edge_useBackend.
package main

/*
#include "edge_sdk.h"
*/
import "C"

import (
	"unsafe"

	"github.com/thesyncim/edge"
	_ "github.com/thesyncim/edge/sim"
)

func main() {}

// The facade's records are used in place of the C structs; these fail to
// compile when the layouts drift apart.
var (
	_ [unsafe.Sizeof(C.CCString{}) - unsafe.Sizeof(edge.StringView{})]byte
	_ [unsafe.Sizeof(edge.StringView{}) - unsafe.Sizeof(C.CCString{})]byte
	_ [unsafe.Sizeof(C.CEdgeDevice{}) - unsafe.Sizeof(edge.DeviceIdentity{})]byte
	_ [unsafe.Sizeof(edge.DeviceIdentity{}) - unsafe.Sizeof(C.CEdgeDevice{})]byte
	_ [unsafe.Sizeof(C.CEdgeLogger{}) - unsafe.Sizeof(edge.LoggerConfig{})]byte
	_ [unsafe.Sizeof(edge.LoggerConfig{}) - unsafe.Sizeof(C.CEdgeLogger{})]byte
	_ [unsafe.Sizeof(C.CEdgeLiveViewOptions{}) - unsafe.Sizeof(edge.LiveViewOptions{})]byte
	_ [unsafe.Sizeof(edge.LiveViewOptions{}) - unsafe.Sizeof(C.CEdgeLiveViewOptions{})]byte
	_ [unsafe.Sizeof(C.CEdgeMediaFile{}) - unsafe.Sizeof(edge.MediaFileRecord{})]byte
	_ [unsafe.Sizeof(edge.MediaFileRecord{}) - unsafe.Sizeof(C.CEdgeMediaFile{})]byte
)

func cfunc(p unsafe.Pointer) edge.CFunc {
	return edge.CFunc(uintptr(p))
}

//export Edge_init
func Edge_init(device *C.CEdgeDevice, app *C.CEdgeAppInfo, keys *C.CEdgeKeyStore, logger *C.CEdgeLogger, deInitOnFailed C.bool) C.int {
	return C.int(edge.Init(
		(*edge.DeviceIdentity)(unsafe.Pointer(device)),
		(*edge.AppInfo)(unsafe.Pointer(app)),
		(*edge.KeyStoreInfo)(unsafe.Pointer(keys)),
		(*edge.LoggerConfig)(unsafe.Pointer(logger)),
		bool(deInitOnFailed),
	))
}

//export Edge_deInit
func Edge_deInit() C.int {
	return C.int(edge.DeInit())
}

//export Edge_useBackend
func Edge_useBackend(name *C.CCString) C.int {
	if name == nil {
		return C.int(edge.ErrorInvalidArgument)
	}
	if err := edge.UseBackend(edge.ViewToOwned(*(*edge.StringView)(unsafe.Pointer(name)))); err != nil {
		return C.int(edge.ErrorInvalidArgument)
	}
	return C.int(edge.Ok)
}

//export Edge_shutdown
func Edge_shutdown() C.int {
	if err := edge.Shutdown(); err != nil {
		return C.int(edge.ErrorSystemError)
	}
	return C.int(edge.Ok)
}

//export Edge_free
func Edge_free(p unsafe.Pointer) {
	edge.Free(p)
}

//export Edge_Cloud_registerCustomMsgHandler
func Edge_Cloud_registerCustomMsgHandler(handler C.CEdgeCloudCustomMsgHandler) C.int {
	return C.int(edge.CloudRegisterCustomMsgHandler(cfunc(unsafe.Pointer(handler))))
}

//export Edge_Cloud_sendCustomEventsMessage
func Edge_Cloud_sendCustomEventsMessage(data *C.uint8_t, length C.uint32_t) C.int {
	return C.int(edge.CloudSendCustomEventsMessage((*byte)(unsafe.Pointer(data)), uint32(length)))
}

//export Edge_LiveView_new
func Edge_LiveView_new(ctx unsafe.Pointer) C.CEdgeLiveView {
	return C.CEdgeLiveView(edge.LiveViewNew(uintptr(ctx)))
}

//export Edge_LiveView_delete
func Edge_LiveView_delete(obj C.CEdgeLiveView) {
	edge.LiveViewDelete(edge.Handle(obj))
}

//export Edge_LiveView_init
func Edge_LiveView_init(obj C.CEdgeLiveView, opt *C.CEdgeLiveViewOptions) C.int {
	return C.int(edge.LiveViewInit(edge.Handle(obj), (*edge.LiveViewOptions)(unsafe.Pointer(opt))))
}

//export Edge_LiveView_deInit
func Edge_LiveView_deInit(obj C.CEdgeLiveView) C.int {
	return C.int(edge.LiveViewDeInit(edge.Handle(obj)))
}

//export Edge_LiveView_setCameraSource
func Edge_LiveView_setCameraSource(obj C.CEdgeLiveView, source C.int) C.int {
	return C.int(edge.LiveViewSetCameraSource(edge.Handle(obj), int32(source)))
}

//export Edge_LiveView_subscribeStreamStatus
func Edge_LiveView_subscribeStreamStatus(obj C.CEdgeLiveView, callback C.CEdgeLiveViewStreamStatusCallback) C.int {
	return C.int(edge.LiveViewSubscribeStreamStatus(edge.Handle(obj), cfunc(unsafe.Pointer(callback))))
}

//export Edge_LiveView_startH264Stream
func Edge_LiveView_startH264Stream(obj C.CEdgeLiveView) C.int {
	return C.int(edge.LiveViewStartH264Stream(edge.Handle(obj)))
}

//export Edge_LiveView_stopH264Stream
func Edge_LiveView_stopH264Stream(obj C.CEdgeLiveView) C.int {
	return C.int(edge.LiveViewStopH264Stream(edge.Handle(obj)))
}

//export Edge_MediaMgr_createMediaFilesReader
func Edge_MediaMgr_createMediaFilesReader() C.CEdgeMFReader {
	return C.CEdgeMFReader(edge.MediaCreateFilesReader())
}

//export Edge_MediaMgr_deleteMediaFilesReader
func Edge_MediaMgr_deleteMediaFilesReader(reader C.CEdgeMFReader) {
	edge.MediaDeleteFilesReader(edge.Handle(reader))
}

//export Edge_MediaMgr_registerMediaFilesObserver
func Edge_MediaMgr_registerMediaFilesObserver(callback C.CEdgeMediaFilesObserver) C.int {
	return C.int(edge.MediaRegisterFilesObserver(cfunc(unsafe.Pointer(callback))))
}

//export Edge_MediaMgr_setDroneNestUploadCloud
func Edge_MediaMgr_setDroneNestUploadCloud(enable C.bool) C.int {
	return C.int(edge.MediaSetAutoUploadToCloud(bool(enable)))
}

//export Edge_MediaMgr_setDroneNestAutoDelete
func Edge_MediaMgr_setDroneNestAutoDelete(enable C.bool) C.int {
	return C.int(edge.MediaSetAutoDeleteAfterUpload(bool(enable)))
}

//export Edge_MFReader_init
func Edge_MFReader_init(reader C.CEdgeMFReader) C.int {
	return C.int(edge.FilesReaderInit(edge.Handle(reader)))
}

//export Edge_MFReader_deInit
func Edge_MFReader_deInit(reader C.CEdgeMFReader) C.int {
	return C.int(edge.FilesReaderDeInit(edge.Handle(reader)))
}

// Edge_MFReader_fileList stores the list in *files. Release it with one
// Edge_free call when the result is positive.
//
//export Edge_MFReader_fileList
func Edge_MFReader_fileList(reader C.CEdgeMFReader, files **C.CEdgeMediaFile) C.int32_t {
	if files == nil {
		return C.int32_t(-int32(edge.ErrorInvalidArgument))
	}
	*files = nil
	n, p := edge.FilesReaderList(edge.Handle(reader))
	if n > 0 {
		*files = (*C.CEdgeMediaFile)(unsafe.Pointer(p))
	}
	return C.int32_t(n)
}

//export Edge_MFReader_open
func Edge_MFReader_open(reader C.CEdgeMFReader, path *C.CCString) C.int32_t {
	return C.int32_t(edge.FilesReaderOpen(edge.Handle(reader), (*edge.StringView)(unsafe.Pointer(path))))
}

//export Edge_MFReader_read
func Edge_MFReader_read(reader C.CEdgeMFReader, fd C.int32_t, buf unsafe.Pointer, count C.size_t) C.size_t {
	if buf == nil || count == 0 {
		return 0
	}
	b := unsafe.Slice((*byte)(buf), int(count))
	return C.size_t(edge.FilesReaderRead(edge.Handle(reader), int32(fd), b))
}

//export Edge_MFReader_close
func Edge_MFReader_close(reader C.CEdgeMFReader, fd C.int32_t) C.int {
	return C.int(edge.FilesReaderClose(edge.Handle(reader), int32(fd)))
}
