package edge

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

// fakeSDK records calls and returns scripted codes.
type fakeSDK struct {
	mu         sync.Mutex
	initCalls  int
	deInits    int
	initResult ErrorCode
	lastOpts   *Options
	inited     bool
}

func (s *fakeSDK) Init(opts *Options) ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initCalls++
	s.lastOpts = opts
	if s.initResult == Ok {
		s.inited = true
	}
	return s.initResult
}

func (s *fakeSDK) DeInit() ErrorCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deInits++
	if !s.inited {
		return ErrorInvalidOperation
	}
	s.inited = false
	return Ok
}

type fakeCloud struct {
	handler func([]byte)
	sent    [][]byte
}

func (c *fakeCloud) RegisterCustomServicesMessageHandler(h func([]byte)) ErrorCode {
	c.handler = h
	return Ok
}

func (c *fakeCloud) SendCustomEventsMessage(data []byte) ErrorCode {
	c.sent = append(c.sent, append([]byte(nil), data...))
	return Ok
}

type fakeLiveview struct {
	opts   LiveviewOptions
	status func(LiveviewStatus)
	source CameraSource
	closed atomic.Bool
}

func (l *fakeLiveview) Init(opts LiveviewOptions) ErrorCode { l.opts = opts; return Ok }
func (l *fakeLiveview) DeInit() ErrorCode                   { return Ok }
func (l *fakeLiveview) SetCameraSource(s CameraSource) ErrorCode {
	l.source = s
	return Ok
}
func (l *fakeLiveview) SubscribeLiveviewStatus(cb func(LiveviewStatus)) ErrorCode {
	l.status = cb
	return Ok
}
func (l *fakeLiveview) StartH264Stream() ErrorCode { return Ok }
func (l *fakeLiveview) StopH264Stream() ErrorCode  { return Ok }
func (l *fakeLiveview) Close() error               { l.closed.Store(true); return nil }

type fakeReader struct {
	files    []MediaFile
	count    int32
	data     map[string][]byte
	open     map[int32][]byte
	next     int32
	released int
}

func (r *fakeReader) Init() ErrorCode   { return Ok }
func (r *fakeReader) DeInit() ErrorCode { return Ok }
func (r *fakeReader) FileList() ([]MediaFile, int32) {
	return r.files, r.count
}
func (r *fakeReader) Open(path string) int32 {
	b, ok := r.data[path]
	if !ok {
		return -1
	}
	if r.open == nil {
		r.open = make(map[int32][]byte)
	}
	fd := r.next
	r.next++
	r.open[fd] = b
	return fd
}
func (r *fakeReader) Read(fd int32, buf []byte) int {
	b, ok := r.open[fd]
	if !ok {
		return 0
	}
	n := copy(buf, b)
	r.open[fd] = b[n:]
	return n
}
func (r *fakeReader) Release() {
	r.released++
	r.open = nil
}
func (r *fakeReader) Close(fd int32) ErrorCode {
	if _, ok := r.open[fd]; !ok {
		return ErrorInvalidArgument
	}
	delete(r.open, fd)
	return Ok
}

type fakeMedia struct {
	reader   *fakeReader
	observer func(*MediaFile) ErrorCode
	upload   bool
	autoDel  bool
}

func (m *fakeMedia) CreateMediaFilesReader() MediaFilesReader { return m.reader }
func (m *fakeMedia) RegisterMediaFilesObserver(o func(*MediaFile) ErrorCode) ErrorCode {
	m.observer = o
	return Ok
}
func (m *fakeMedia) SetDroneNestUploadCloud(e bool) ErrorCode { m.upload = e; return Ok }
func (m *fakeMedia) SetDroneNestAutoDelete(e bool) ErrorCode  { m.autoDel = e; return Ok }

type fakeBackend struct {
	sdk       *fakeSDK
	cloud     *fakeCloud
	media     *fakeMedia
	liveviews []*fakeLiveview
}

// installFake installs a fresh fake backend and a recording invoker for
// the duration of the test.
func installFake(t testing.TB) (*fakeBackend, *recordingInvoker) {
	t.Helper()
	fb := &fakeBackend{
		sdk:   &fakeSDK{},
		cloud: &fakeCloud{},
		media: &fakeMedia{reader: &fakeReader{}},
	}
	b := &Backend{
		Name:  "fake",
		SDK:   fb.sdk,
		Cloud: fb.cloud,
		Media: fb.media,
		NewLiveview: func() Liveview {
			lv := &fakeLiveview{}
			fb.liveviews = append(fb.liveviews, lv)
			return lv
		},
	}
	if err := Install(b); err != nil {
		t.Fatalf("Install: %v", err)
	}
	inv := &recordingInvoker{}
	prev := cinvoke
	cinvoke = inv
	t.Cleanup(func() {
		cinvoke = prev
		_ = Shutdown()
	})
	return fb, inv
}

type streamCall struct {
	fn   CFunc
	ctx  uintptr
	data []byte
}

type statusCall struct {
	fn     CFunc
	ctx    uintptr
	status uint32
}

type recordCall struct {
	fn     CFunc
	name   string
	path   string
	size   uintptr
	inside bool
}

// recordingInvoker stands in for C function pointers.
type recordingInvoker struct {
	mu       sync.Mutex
	streams  []streamCall
	statuses []statusCall
	messages [][]byte
	records  []recordCall
}

func (r *recordingInvoker) stream(fn CFunc, ctx uintptr, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.streams = append(r.streams, streamCall{fn: fn, ctx: ctx, data: append([]byte(nil), data...)})
}

func (r *recordingInvoker) status(fn CFunc, ctx uintptr, status uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, statusCall{fn: fn, ctx: ctx, status: status})
}

func (r *recordingInvoker) bytes(fn CFunc, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, append([]byte(nil), data...))
}

func (r *recordingInvoker) mediaFile(fn CFunc, file *MediaFileRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if file == nil {
		r.records = append(r.records, recordCall{fn: fn})
		return
	}
	base := uintptr(unsafe.Pointer(file))
	end := base + mediaFileRecordSize + file.FileName.Len + file.FilePath.Len
	r.records = append(r.records, recordCall{
		fn:     fn,
		name:   file.FileName.String(),
		path:   file.FilePath.String(),
		size:   file.FileSize,
		inside: viewWithin(file.FileName, base, end) && viewWithin(file.FilePath, base, end),
	})
}

func (r *recordingInvoker) streamCalls() []streamCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]streamCall(nil), r.streams...)
}

// viewWithin reports whether v lies in [base, end).
func viewWithin(v StringView, base, end uintptr) bool {
	if v.Len == 0 {
		return true
	}
	p := uintptr(unsafe.Pointer(v.Data))
	return p >= base && p+v.Len <= end
}
