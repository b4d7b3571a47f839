package edge

import "sync/atomic"

// LiveViewOptions mirrors CEdgeLiveViewOptions. StreamCallback has the C
// signature void (*)(void *ctx, const uint8_t *buf, uint32_t len) and may
// be null.
type LiveViewOptions struct {
	Camera         int32
	Quality        int32
	StreamCallback CFunc
}

// liveViewSession pairs a native streaming object with the caller context
// that identifies it inside callbacks.
type liveViewSession struct {
	instance Shared[Liveview]
	ctx      atomic.Uintptr
}

var liveViews HandleTable[*liveViewSession]

// LiveViewNew creates a native live view paired with ctx. It returns 0 when
// the SDK cannot create one.
func LiveViewNew(ctx uintptr) Handle {
	b := ActiveBackend()
	if b == nil || b.NewLiveview == nil {
		return 0
	}
	lv := b.NewLiveview()
	if lv == nil {
		return 0
	}
	s := &liveViewSession{instance: MakeShared(lv, releaseNative[Liveview])}
	s.ctx.Store(ctx)
	return liveViews.Put(s)
}

// LiveViewDelete clears the context and the native reference of h and frees
// the session record. The native object is released once its last
// reference goes away.
func LiveViewDelete(h Handle) {
	s, ok := liveViews.Delete(h)
	if !ok {
		return
	}
	s.ctx.Store(0)
	s.instance.Reset()
}

// LiveViewContext returns the caller context paired with h.
func LiveViewContext(h Handle) (uintptr, bool) {
	s, ok := liveViews.Get(h)
	if !ok {
		return 0, false
	}
	return s.ctx.Load(), true
}

func liveViewInstance(h Handle) (*liveViewSession, Liveview, bool) {
	s, ok := liveViews.Get(h)
	if !ok {
		return nil, nil, false
	}
	lv, ok := s.instance.Get()
	if !ok || lv == nil {
		return nil, nil, false
	}
	return s, lv, true
}

// LiveViewInit initializes the native live view. A stream trampoline is
// installed only when opt.StreamCallback is set.
func LiveViewInit(h Handle, opt *LiveViewOptions) ErrorCode {
	s, lv, ok := liveViewInstance(h)
	if !ok || opt == nil {
		return ErrorInvalidArgument
	}
	var cb H264Callback
	if opt.StreamCallback != 0 {
		t := &streamTrampoline{ctx: s.ctx.Load(), session: h, fn: opt.StreamCallback}
		cb = t.onData
	}
	return lv.Init(LiveviewOptions{
		Camera:   CameraType(opt.Camera),
		Quality:  StreamQuality(opt.Quality),
		Callback: cb,
	})
}

// LiveViewDeInit de-initializes the native live view.
func LiveViewDeInit(h Handle) ErrorCode {
	_, lv, ok := liveViewInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return lv.DeInit()
}

// LiveViewSetCameraSource switches the lens feeding the stream.
func LiveViewSetCameraSource(h Handle, source int32) ErrorCode {
	_, lv, ok := liveViewInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return lv.SetCameraSource(CameraSource(source))
}

// LiveViewSubscribeStreamStatus registers a status callback with the C
// signature void (*)(void *ctx, uint32_t status).
func LiveViewSubscribeStreamStatus(h Handle, callback CFunc) ErrorCode {
	s, lv, ok := liveViewInstance(h)
	if !ok || callback == 0 {
		return ErrorInvalidArgument
	}
	t := &statusTrampoline{ctx: s.ctx.Load(), session: h, fn: callback}
	return lv.SubscribeLiveviewStatus(t.onStatus)
}

// LiveViewStartH264Stream starts delivery of stream data.
func LiveViewStartH264Stream(h Handle) ErrorCode {
	_, lv, ok := liveViewInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return lv.StartH264Stream()
}

// LiveViewStopH264Stream stops delivery of stream data. It returns once the
// native object acknowledges.
func LiveViewStopH264Stream(h Handle) ErrorCode {
	_, lv, ok := liveViewInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return lv.StopH264Stream()
}
