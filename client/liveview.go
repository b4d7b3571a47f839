package client

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/thesyncim/edge"
)

// CameraSource is the lens of a payload camera.
type CameraSource int

func (c CameraSource) IsValid() bool {
	return c >= CameraSourceWide && c <= CameraSourceIR
}

const (
	CameraSourceWide CameraSource = iota + 1 // wide-angle lens
	CameraSourceZoom                         // zoom lens
	CameraSourceIR                           // infrared lens
)

// StreamQuality of a live stream.
type StreamQuality int

func (s StreamQuality) IsValid() bool {
	return s >= StreamQuality540p && s <= StreamQuality1080p
}

const (
	// StreamQuality540p 30fps, 960*540, 512 kbps
	StreamQuality540p StreamQuality = iota + 1

	// StreamQuality720p 30fps, 1280*720, 1 Mbps
	StreamQuality720p

	// StreamQuality720pHigh 30fps, 1280*720, 1.5 Mbps
	StreamQuality720pHigh

	// StreamQuality1080p 30fps, 1920*1080, 3 Mbps
	StreamQuality1080p
)

// CameraType of the aircraft camera feeding the stream.
type CameraType int

func (c CameraType) IsValid() bool {
	return c == CameraTypeFPV || c == CameraTypePayload
}

const (
	CameraTypeFPV CameraType = iota
	CameraTypePayload
)

// StreamReceiver receives stream data and status.
type StreamReceiver interface {
	// OnStreamStatusUpdate is called when the available qualities change,
	// for example on link loss or when the cloud starts a live broadcast.
	OnStreamStatusUpdate(status *LiveStatus)

	// OnReceiveStreamData receives one chunk of Annex B data. data refers
	// to native memory and is only valid during the call; copy it to keep it.
	OnReceiveStreamData(data []byte)
}

// LiveStatus is the decoded stream status bitmask.
type LiveStatus struct {
	Value                 uint32
	QualityAutoAvailable  bool
	Quality540PAvailable  bool
	Quality720PAvailable  bool
	Quality720PHAvailable bool
	Quality1080PAvailable bool
}

func decodeLiveStatus(v uint32) *LiveStatus {
	s := edge.LiveviewStatus(v)
	return &LiveStatus{
		Value:                 v,
		QualityAutoAvailable:  s&edge.StatusQualityAuto != 0,
		Quality540PAvailable:  s&edge.StatusQuality540p != 0,
		Quality720PAvailable:  s&edge.StatusQuality720p != 0,
		Quality720PHAvailable: s&edge.StatusQuality720pHigh != 0,
		Quality1080PAvailable: s&edge.StatusQuality1080p != 0,
	}
}

func (l *LiveStatus) String() string {
	return fmt.Sprintf("value:%d auto:%v 540p:%v 720p:%v 720ph:%v 1080p:%v",
		l.Value,
		l.QualityAutoAvailable,
		l.Quality540PAvailable,
		l.Quality720PAvailable,
		l.Quality720PHAvailable,
		l.Quality1080PAvailable)
}

const (
	cameraUninitialized int32 = iota
	cameraInitializing
	cameraInitialized
)

// LiveView subscribes to the live stream of one camera. Call Destroy when
// done with it.
type LiveView struct {
	id     uintptr
	handle edge.Handle

	mu       sync.RWMutex
	receiver StreamReceiver

	cameraInitState atomic.Int32
}

// NewLiveView creates a live view.
func NewLiveView() (*LiveView, error) {
	lv := &LiveView{}
	lv.id = registerLiveView(lv)
	lv.handle = edge.LiveViewNew(lv.id)
	if lv.handle == 0 {
		unregisterLiveView(lv.id)
		return nil, ErrNoBackend
	}
	return lv, nil
}

// Destroy de-initializes the live view and releases its native object.
func (lv *LiveView) Destroy() {
	if lv.handle == 0 {
		return
	}
	lv.DeInit()
	edge.LiveViewDelete(lv.handle)
	unregisterLiveView(lv.id)
	lv.handle = 0
	lv.setReceiver(nil)
}

// Init subscribes to the stream of cameraType at quality. A camera can be
// initialized once; later calls only replace the receiver.
func (lv *LiveView) Init(cameraType CameraType, quality StreamQuality, receiver StreamReceiver) error {
	if !cameraType.IsValid() || !quality.IsValid() {
		return fmt.Errorf("%w: camera %d quality %d", ErrInvalidParameter, cameraType, quality)
	}
	if receiver == nil {
		return fmt.Errorf("%w: nil receiver", ErrInvalidParameter)
	}
	if !Initialized() {
		return ErrSDKNotInit
	}
	initCallbacks()
	lv.setReceiver(receiver)

	if lv.cameraInitState.CompareAndSwap(cameraUninitialized, cameraInitializing) {
		ret := edge.LiveViewInit(lv.handle, &edge.LiveViewOptions{
			Camera:         int32(cameraType),
			Quality:        int32(quality),
			StreamCallback: streamCallback,
		})
		if err := codeErr(ret); err != nil {
			lv.cameraInitState.Store(cameraUninitialized)
			return err
		}
		lv.cameraInitState.Store(cameraInitialized)
	}
	return codeErr(edge.LiveViewSubscribeStreamStatus(lv.handle, statusCallback))
}

// DeInit ends the stream subscription.
func (lv *LiveView) DeInit() {
	if lv.cameraInitState.CompareAndSwap(cameraInitialized, cameraUninitialized) {
		edge.LiveViewDeInit(lv.handle)
	}
}

func (lv *LiveView) cameraInitialized() bool {
	return lv.cameraInitState.Load() == cameraInitialized
}

// SetCameraSource switches the lens feeding the stream.
func (lv *LiveView) SetCameraSource(source CameraSource) error {
	if !source.IsValid() {
		return fmt.Errorf("%w: camera source %d", ErrInvalidParameter, source)
	}
	if !lv.cameraInitialized() {
		return ErrLiveViewNotInit
	}
	return codeErr(edge.LiveViewSetCameraSource(lv.handle, int32(source)))
}

// StartH264Stream starts the stream; data arrives through
// StreamReceiver.OnReceiveStreamData.
func (lv *LiveView) StartH264Stream() error {
	if !lv.cameraInitialized() {
		return ErrLiveViewNotInit
	}
	return codeErr(edge.LiveViewStartH264Stream(lv.handle))
}

// StopH264Stream stops the stream.
func (lv *LiveView) StopH264Stream() error {
	return codeErr(edge.LiveViewStopH264Stream(lv.handle))
}

func (lv *LiveView) setReceiver(r StreamReceiver) {
	lv.mu.Lock()
	lv.receiver = r
	lv.mu.Unlock()
}

func (lv *LiveView) onLiveStatusUpdate(status *LiveStatus) {
	lv.mu.RLock()
	r := lv.receiver
	lv.mu.RUnlock()
	if r != nil {
		r.OnStreamStatusUpdate(status)
	}
}

func (lv *LiveView) onReceiveStream(data []byte) {
	lv.mu.RLock()
	r := lv.receiver
	lv.mu.RUnlock()
	if r != nil {
		r.OnReceiveStreamData(data)
	}
}
