package sim

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"time"

	"github.com/thesyncim/edge"
	"github.com/thesyncim/edge/relay"
)

// maxNALUSize bounds one NAL unit read from the stream source.
const maxNALUSize = 4 << 20

// stream is one running StartH264Stream session.
type stream struct {
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Liveview simulates one native streaming object. It reads an Annex B
// source and hands it to the stream callback one NAL unit at a time.
type Liveview struct {
	sdk *SDK

	mu       sync.Mutex
	inited   bool
	opts     edge.LiveviewOptions
	source   edge.CameraSource
	stream   *stream
	stopTick context.CancelFunc
	statusWG sync.WaitGroup

	statusMu sync.Mutex
	statusCb func(edge.LiveviewStatus)

	cbs deliveries
}

func newLiveview(s *SDK) *Liveview {
	return &Liveview{sdk: s, source: edge.CameraSourceWide}
}

// Init configures the live view. The SDK must be initialized.
func (l *Liveview) Init(opts edge.LiveviewOptions) edge.ErrorCode {
	if !l.sdk.Initialized() {
		return edge.ErrorInvalidOperation
	}
	if opts.Camera != edge.CameraTypeFPV && opts.Camera != edge.CameraTypePayload {
		return edge.ErrorParamOutOfRange
	}
	if opts.Quality < edge.StreamQuality540p || opts.Quality > edge.StreamQuality1080p {
		return edge.ErrorParamOutOfRange
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inited {
		return edge.ErrorRepeatOperation
	}
	l.opts = opts
	l.inited = true

	ctx, cancel := context.WithCancel(context.Background())
	l.stopTick = cancel
	l.statusWG.Add(1)
	go l.statusLoop(ctx)

	l.sdk.Logger().Info("liveview initialized", "camera", opts.Camera, "quality", opts.Quality)
	return edge.Ok
}

// DeInit stops the stream and the status updates. Called from inside a
// stream or status callback, it returns without waiting for that
// callback's goroutine.
func (l *Liveview) DeInit() edge.ErrorCode {
	l.mu.Lock()
	if !l.inited {
		l.mu.Unlock()
		return edge.ErrorInvalidOperation
	}
	st := l.stream
	l.stream = nil
	l.stopTick()
	l.stopTick = nil
	l.inited = false
	l.mu.Unlock()

	if st != nil {
		st.cancel()
	}
	if l.cbs.inside() {
		return edge.Ok
	}
	if st != nil {
		st.wg.Wait()
	}
	l.statusWG.Wait()
	return edge.Ok
}

// SetCameraSource selects the payload lens. The FPV camera has only one.
func (l *Liveview) SetCameraSource(src edge.CameraSource) edge.ErrorCode {
	if src < edge.CameraSourceWide || src > edge.CameraSourceIR {
		return edge.ErrorParamOutOfRange
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.inited || l.opts.Camera == edge.CameraTypeFPV {
		return edge.ErrorInvalidOperation
	}
	l.source = src
	return edge.Ok
}

// CameraSource returns the selected lens.
func (l *Liveview) CameraSource() edge.CameraSource {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// SubscribeLiveviewStatus sets the status callback. It is called with the
// current status right away, on every start and stop, and on every status
// tick.
func (l *Liveview) SubscribeLiveviewStatus(cb func(edge.LiveviewStatus)) edge.ErrorCode {
	if cb == nil {
		return edge.ErrorInvalidArgument
	}
	l.statusMu.Lock()
	l.statusCb = cb
	l.statusMu.Unlock()
	l.notify()
	return edge.Ok
}

// StartH264Stream starts streaming. Starting a running stream is a no-op.
func (l *Liveview) StartH264Stream() edge.ErrorCode {
	l.mu.Lock()
	if !l.inited {
		l.mu.Unlock()
		return edge.ErrorInvalidOperation
	}
	if l.stream != nil {
		l.mu.Unlock()
		return edge.Ok
	}
	src, err := l.openSource()
	if err != nil {
		l.mu.Unlock()
		l.sdk.Logger().Error("open stream source failed", "file", l.sdk.cfg.Stream.File, "error", err)
		return edge.ErrorSystemError
	}

	ctx, cancel := context.WithCancel(context.Background())
	st := &stream{cancel: cancel}
	l.stream = st
	queue := make(chan []byte, l.sdk.cfg.Stream.QueueSize)
	st.wg.Add(2)
	go func() {
		defer st.wg.Done()
		l.readLoop(ctx, src, queue)
	}()
	go func() {
		defer st.wg.Done()
		l.pushLoop(ctx, l.opts.Callback, queue)
	}()
	l.mu.Unlock()

	l.sdk.Logger().Info("h264 stream started")
	l.notify()
	return edge.Ok
}

// StopH264Stream stops streaming and returns once delivery has ended.
// Stopping a stopped stream is a no-op. Called from inside a callback, it
// hands the wait to another goroutine.
func (l *Liveview) StopH264Stream() edge.ErrorCode {
	l.mu.Lock()
	st := l.stream
	l.stream = nil
	l.mu.Unlock()
	if st == nil {
		return edge.Ok
	}
	st.cancel()
	if l.cbs.inside() {
		go l.stopped(st)
		return edge.Ok
	}
	l.stopped(st)
	return edge.Ok
}

func (l *Liveview) stopped(st *stream) {
	st.wg.Wait()
	l.sdk.Logger().Info("h264 stream stopped")
	l.notify()
}

// Streaming reports whether a stream is running.
func (l *Liveview) Streaming() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stream != nil
}

// Status returns the current availability bitmask.
func (l *Liveview) Status() edge.LiveviewStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stream == nil {
		return 0
	}
	return edge.StatusQualityAuto | qualityStatus(l.opts.Quality)
}

// Close de-initializes the live view and detaches it from the SDK.
func (l *Liveview) Close() error {
	l.DeInit()
	l.sdk.forget(l)
	return nil
}

func qualityStatus(q edge.StreamQuality) edge.LiveviewStatus {
	switch q {
	case edge.StreamQuality540p:
		return edge.StatusQuality540p
	case edge.StreamQuality720p:
		return edge.StatusQuality720p
	case edge.StreamQuality720pHigh:
		return edge.StatusQuality720pHigh
	case edge.StreamQuality1080p:
		return edge.StatusQuality1080p
	default:
		return 0
	}
}

// notify reports the current status. Status is read under statusMu so
// concurrent notifications never deliver a stale value last.
func (l *Liveview) notify() {
	l.statusMu.Lock()
	defer l.statusMu.Unlock()
	if cb := l.statusCb; cb != nil {
		status := l.Status()
		l.cbs.run(func() { cb(status) })
	}
}

func (l *Liveview) statusLoop(ctx context.Context) {
	defer l.statusWG.Done()
	ticker := time.NewTicker(l.sdk.cfg.Stream.StatusInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.notify()
		}
	}
}

// openSource opens the configured file, or the synthetic stream when no
// file is set. Caller holds mu.
func (l *Liveview) openSource() (io.ReadSeekCloser, error) {
	if name := l.sdk.cfg.Stream.File; name != "" {
		return os.Open(name)
	}
	return nopSeekCloser{bytes.NewReader(SyntheticStream())}, nil
}

// readLoop paces NAL units from src into queue, one per frame interval.
// A full queue drops the unit.
func (l *Liveview) readLoop(ctx context.Context, src io.ReadSeekCloser, queue chan<- []byte) {
	defer close(queue)
	defer src.Close()
	logger := l.sdk.Logger()
	ticker := time.NewTicker(l.sdk.cfg.Stream.FrameInterval)
	defer ticker.Stop()

	scanner := newNALUScanner(src)
	pass := 0
	for {
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				logger.Error("read stream source failed", "error", err)
				return
			}
			if !l.sdk.cfg.Stream.Loop {
				logger.Info("stream source ended")
				return
			}
			if pass == 0 {
				logger.Error("stream source unusable", "error", errEmptyStream)
				return
			}
			pass = 0
			if _, err := src.Seek(0, io.SeekStart); err != nil {
				logger.Error("rewind stream source failed", "error", err)
				return
			}
			scanner = newNALUScanner(src)
			continue
		}
		pass++
		// The scanner reuses its buffer.
		nalu := append([]byte(nil), scanner.Bytes()...)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		select {
		case queue <- nalu:
		default:
			logger.Warn("stream queue full, dropping nal unit", "type", relay.NALType(nalu))
		}
	}
}

func (l *Liveview) pushLoop(ctx context.Context, cb edge.H264Callback, queue <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case nalu, ok := <-queue:
			if !ok {
				return
			}
			if cb == nil || ctx.Err() != nil {
				continue
			}
			var code edge.ErrorCode
			l.cbs.run(func() { code = cb(nalu) })
			if code != edge.Ok {
				l.sdk.Logger().Debug("stream callback failed", "code", code)
			}
		}
	}
}

func newNALUScanner(r io.Reader) *bufio.Scanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64<<10), maxNALUSize)
	s.Split(relay.ScanNALUs)
	return s
}

type nopSeekCloser struct {
	io.ReadSeeker
}

func (nopSeekCloser) Close() error { return nil }

var errEmptyStream = errors.New("stream source has no nal units")

var (
	syntheticOnce sync.Once
	synthetic     []byte
)

// SyntheticStream returns a small Annex B H.264 stream: one GOP of an SPS,
// a PPS, an IDR slice and 29 P slices. The contents are stable.
func SyntheticStream() []byte {
	syntheticOnce.Do(func() {
		sps := []byte{0x67, 0x42, 0xC0, 0x1E, 0xDA, 0x02, 0x80, 0xBF, 0xE5, 0x84}
		pps := []byte{0x68, 0xCE, 0x3C, 0x80}
		b := relay.AppendAnnexB(nil, sps)
		b = relay.AppendAnnexB(b, pps)
		b = relay.AppendAnnexB(b, []byte{0x65, 0x88, 0x84, 0x00, 0x33, 0xFF})
		for i := 1; i < 30; i++ {
			b = relay.AppendAnnexB(b, []byte{0x41, 0x9A, byte(i), 0x04})
		}
		synthetic = b
	})
	return synthetic
}
