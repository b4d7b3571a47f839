package edge

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiveViewInvalidHandle(t *testing.T) {
	installFake(t)

	opt := &LiveViewOptions{Camera: 1, Quality: 2, StreamCallback: 1}
	assert.Equal(t, ErrorInvalidArgument, LiveViewInit(0, opt))
	assert.Equal(t, ErrorInvalidArgument, LiveViewInit(12345, opt))
	assert.Equal(t, ErrorInvalidArgument, LiveViewDeInit(0))
	assert.Equal(t, ErrorInvalidArgument, LiveViewSetCameraSource(0, 1))
	assert.Equal(t, ErrorInvalidArgument, LiveViewSubscribeStreamStatus(0, 1))
	assert.Equal(t, ErrorInvalidArgument, LiveViewStartH264Stream(0))
	assert.Equal(t, ErrorInvalidArgument, LiveViewStopH264Stream(0))
	LiveViewDelete(0)
	LiveViewDelete(12345)
}

func TestLiveViewInitOptions(t *testing.T) {
	fb, _ := installFake(t)

	h := LiveViewNew(1)
	require.NotZero(t, h)
	defer LiveViewDelete(h)

	assert.Equal(t, ErrorInvalidArgument, LiveViewInit(h, nil))
	require.Equal(t, Ok, LiveViewInit(h, &LiveViewOptions{Camera: 1, Quality: 4}))
	lv := fb.liveviews[0]
	assert.Equal(t, CameraTypePayload, lv.opts.Camera)
	assert.Equal(t, StreamQuality1080p, lv.opts.Quality)
	assert.Nil(t, lv.opts.Callback, "no trampoline without a stream callback")

	require.Equal(t, Ok, LiveViewSetCameraSource(h, int32(CameraSourceIR)))
	assert.Equal(t, CameraSourceIR, lv.source)
	assert.Equal(t, Ok, LiveViewStartH264Stream(h))
	assert.Equal(t, Ok, LiveViewStopH264Stream(h))
	assert.Equal(t, Ok, LiveViewDeInit(h))
}

// Sessions sharing one C function each see only their own context, with
// every session's callbacks firing from its own goroutine.
func TestLiveViewContextRoutingConcurrent(t *testing.T) {
	fb, inv := installFake(t)

	const sessions, perSession = 8, 200
	handles := make([]Handle, sessions)
	for i := range handles {
		handles[i] = LiveViewNew(uintptr(1000 + i))
		require.NotZero(t, handles[i])
		defer LiveViewDelete(handles[i])
		opt := &LiveViewOptions{Camera: 1, Quality: 2, StreamCallback: 0xcafe}
		require.Equal(t, Ok, LiveViewInit(handles[i], opt))
		require.Equal(t, Ok, LiveViewSubscribeStreamStatus(handles[i], 0xbeef))
	}
	require.Len(t, fb.liveviews, sessions)

	var wg sync.WaitGroup
	for i, lv := range fb.liveviews {
		wg.Add(1)
		go func(i int, lv *fakeLiveview) {
			defer wg.Done()
			for n := 0; n < perSession; n++ {
				lv.opts.Callback([]byte{byte(i), byte(n)})
				lv.status(LiveviewStatus(i))
			}
		}(i, lv)
	}
	wg.Wait()

	streams := inv.streamCalls()
	require.Len(t, streams, sessions*perSession)
	for _, c := range streams {
		assert.Equal(t, uintptr(1000+int(c.data[0])), c.ctx)
	}

	inv.mu.Lock()
	statuses := append([]statusCall(nil), inv.statuses...)
	inv.mu.Unlock()
	require.Len(t, statuses, sessions*perSession)
	for _, c := range statuses {
		assert.Equal(t, uintptr(1000+int(c.status)), c.ctx)
	}
}

func TestLiveViewContextRouting(t *testing.T) {
	fb, inv := installFake(t)

	h1 := LiveViewNew(100)
	h2 := LiveViewNew(200)
	require.NotZero(t, h1)
	require.NotZero(t, h2)
	require.NotEqual(t, h1, h2)
	defer LiveViewDelete(h2)

	ctx, ok := LiveViewContext(h1)
	require.True(t, ok)
	assert.Equal(t, uintptr(100), ctx)

	// Both sessions register the same C function.
	opt := &LiveViewOptions{Camera: 0, Quality: 1, StreamCallback: 0xcafe}
	require.Equal(t, Ok, LiveViewInit(h1, opt))
	require.Equal(t, Ok, LiveViewInit(h2, opt))
	require.Len(t, fb.liveviews, 2)

	assert.Equal(t, Ok, fb.liveviews[0].opts.Callback([]byte{0, 0, 0, 1, 0x67}))
	assert.Equal(t, Ok, fb.liveviews[1].opts.Callback([]byte{0, 0, 0, 1, 0x65}))
	assert.Equal(t, Ok, fb.liveviews[0].opts.Callback([]byte{0, 0, 0, 1, 0x41}))

	calls := inv.streamCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, uintptr(100), calls[0].ctx)
	assert.Equal(t, uintptr(200), calls[1].ctx)
	assert.Equal(t, uintptr(100), calls[2].ctx)
	assert.Equal(t, CFunc(0xcafe), calls[1].fn)
	assert.Equal(t, []byte{0, 0, 0, 1, 0x65}, calls[1].data)

	// Callbacks arriving after delete are dropped and the native object is released.
	cb := fb.liveviews[0].opts.Callback
	LiveViewDelete(h1)
	assert.True(t, fb.liveviews[0].closed.Load())
	assert.Equal(t, Ok, cb([]byte{1}))
	assert.Len(t, inv.streamCalls(), 3)
	_, ok = LiveViewContext(h1)
	assert.False(t, ok)
	assert.Equal(t, ErrorInvalidArgument, LiveViewStartH264Stream(h1))
	assert.False(t, fb.liveviews[1].closed.Load())
}

func TestLiveViewStatusSubscription(t *testing.T) {
	fb, inv := installFake(t)

	h := LiveViewNew(42)
	require.NotZero(t, h)

	assert.Equal(t, ErrorInvalidArgument, LiveViewSubscribeStreamStatus(h, 0))
	require.Equal(t, Ok, LiveViewSubscribeStreamStatus(h, 0xf00d))
	status := fb.liveviews[0].status
	require.NotNil(t, status)

	status(StatusQualityAuto | StatusQuality720p)
	require.Len(t, inv.statuses, 1)
	assert.Equal(t, statusCall{fn: 0xf00d, ctx: 42, status: 0b101}, inv.statuses[0])

	LiveViewDelete(h)
	status(StatusQuality1080p)
	assert.Len(t, inv.statuses, 1)
}

func TestLiveViewNativeOutlivesHandle(t *testing.T) {
	fb, _ := installFake(t)

	h := LiveViewNew(1)
	s, ok := liveViews.Get(h)
	require.True(t, ok)
	extra := s.instance.Clone()

	LiveViewDelete(h)
	assert.False(t, fb.liveviews[0].closed.Load())
	extra.Reset()
	assert.True(t, fb.liveviews[0].closed.Load())
}
