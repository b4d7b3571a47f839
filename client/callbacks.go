package client

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/thesyncim/edge"
)

// C function pointers into this package. purego callbacks cannot be
// released, so each one is created once per process.
var (
	callbackOnce   sync.Once
	streamCallback edge.CFunc
	statusCallback edge.CFunc
	logCallback    edge.CFunc
	cloudCallback  edge.CFunc
	mediaCallback  edge.CFunc
)

func initCallbacks() {
	callbackOnce.Do(func() {
		streamCallback = edge.CFunc(purego.NewCallback(onStreamData))
		statusCallback = edge.CFunc(purego.NewCallback(onStreamStatus))
		logCallback = edge.CFunc(purego.NewCallback(onLogOutput))
		cloudCallback = edge.CFunc(purego.NewCallback(onCloudMessage))
		mediaCallback = edge.CFunc(purego.NewCallback(onMediaFile))
	})
}

// Live views by callback context.
var (
	liveViewsMu     sync.RWMutex
	liveViews       = make(map[uintptr]*LiveView)
	liveViewCounter uintptr
)

func registerLiveView(lv *LiveView) uintptr {
	liveViewsMu.Lock()
	defer liveViewsMu.Unlock()
	liveViewCounter++
	liveViews[liveViewCounter] = lv
	return liveViewCounter
}

func unregisterLiveView(id uintptr) {
	liveViewsMu.Lock()
	delete(liveViews, id)
	liveViewsMu.Unlock()
}

func lookupLiveView(id uintptr) *LiveView {
	liveViewsMu.RLock()
	defer liveViewsMu.RUnlock()
	return liveViews[id]
}

// cBytes views size bytes at p. size arrives as a C uint32_t, so only the
// low 32 bits are meaningful.
func cBytes(p, size uintptr) []byte {
	n := uint32(size)
	if p == 0 || n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(p)), n)
}

// onStreamData is void (*)(void *ctx, const uint8_t *buf, uint32_t len).
func onStreamData(ctx, buf, size uintptr) {
	lv := lookupLiveView(ctx)
	if lv == nil {
		return
	}
	lv.onReceiveStream(cBytes(buf, size))
}

// onStreamStatus is void (*)(void *ctx, uint32_t status).
func onStreamStatus(ctx, status uintptr) {
	lv := lookupLiveView(ctx)
	if lv == nil {
		return
	}
	lv.onLiveStatusUpdate(decodeLiveStatus(uint32(status)))
}

// onLogOutput is void (*)(const uint8_t *data, uint32_t len).
func onLogOutput(data, size uintptr) {
	logNativeLine(string(cBytes(data, size)))
}

// onCloudMessage is void (*)(const uint8_t *data, uint32_t len).
func onCloudMessage(data, size uintptr) {
	h := cloudHandler.Load()
	if h == nil {
		return
	}
	// The handler may keep the message past the call.
	b := append([]byte(nil), cBytes(data, size)...)
	(*h)(b)
}

// onMediaFile is void (*)(const CEdgeMediaFile *file).
func onMediaFile(file uintptr) {
	obs := mediaObserver.Load()
	if obs == nil || file == 0 {
		return
	}
	(*obs)(convertRecord((*edge.MediaFileRecord)(unsafe.Pointer(file))))
}
