package client

import (
	"fmt"
	"io"
	"io/fs"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/thesyncim/edge"
)

// MediaFileType of a media file.
type MediaFileType int

func (m MediaFileType) IsValid() bool {
	return m == MediaFileTypeJPEG || m == MediaFileTypeMP4
}

const (
	MediaFileTypeJPEG MediaFileType = 0
	MediaFileTypeMP4  MediaFileType = 3
)

// CameraAttr is the lens that produced a media file.
type CameraAttr int

func (c CameraAttr) IsValid() bool {
	return c == CameraAttrInfrared || c == CameraAttrWide || c == CameraAttrZoom || c == CameraAttrVisible
}

const (
	CameraAttrInfrared CameraAttr = 0
	CameraAttrZoom     CameraAttr = 1
	CameraAttrWide     CameraAttr = 2
	CameraAttrVisible  CameraAttr = 3
)

// MediaFileDesc describes one media file on the dock.
type MediaFileDesc struct {
	FileName         string
	FilePath         string
	FileSize         uint64
	FileType         MediaFileType
	CameraAttr       CameraAttr
	Latitude         float64
	Longitude        float64
	AbsoluteAltitude float64
	RelativeAltitude float64
	GimbalYawDegree  float64
	ImageWidth       int
	ImageHeight      int
	VideoDuration    time.Duration
	CreateTime       time.Time
}

func convertRecord(f *edge.MediaFileRecord) *MediaFileDesc {
	return &MediaFileDesc{
		FileName:         f.FileName.String(),
		FilePath:         f.FilePath.String(),
		FileSize:         uint64(f.FileSize),
		FileType:         MediaFileType(f.FileType),
		CameraAttr:       CameraAttr(f.CameraAttr),
		Latitude:         f.Latitude,
		Longitude:        f.Longitude,
		AbsoluteAltitude: f.AbsoluteAltitude,
		RelativeAltitude: f.RelativeAltitude,
		GimbalYawDegree:  f.GimbalYawDegree,
		ImageWidth:       int(f.ImageWidth),
		ImageHeight:      int(f.ImageHeight),
		VideoDuration:    time.Duration(f.VideoDuration) * time.Second,
		CreateTime:       time.Unix(f.CreateTime, 0),
	}
}

var mediaObserver atomic.Pointer[func(*MediaFileDesc)]

// RegisterMediaFilesObserver sets the observer notified of new media files.
func RegisterMediaFilesObserver(observer func(desc *MediaFileDesc)) error {
	if observer == nil {
		return ErrInvalidParameter
	}
	initCallbacks()
	prev := mediaObserver.Swap(&observer)
	if err := codeErr(edge.MediaRegisterFilesObserver(mediaCallback)); err != nil {
		mediaObserver.Store(prev)
		return err
	}
	return nil
}

// SetDroneNestUploadCloud sets whether the dock uploads media files to the
// cloud. Wayline media is uploaded by default; the dock restores that
// default when the edge device is offline for over 30s.
func SetDroneNestUploadCloud(enable bool) error {
	if !Initialized() {
		return ErrSDKNotInit
	}
	return codeErr(edge.MediaSetAutoUploadToCloud(enable))
}

// SetDroneNestAutoDelete sets whether the dock deletes local media files
// after upload. Keep files when they are to be read from the edge device.
func SetDroneNestAutoDelete(enable bool) error {
	if !Initialized() {
		return ErrSDKNotInit
	}
	return codeErr(edge.MediaSetAutoDeleteAfterUpload(enable))
}

const (
	readerClosed int32 = iota
	readerOpening
	readerOpened
	readerClosing
)

// MediaFileReader reads media files from the dock.
type MediaFileReader struct {
	handle edge.Handle
	status atomic.Int32
}

// NewMediaFileReader returns a media file reader. Call Destroy when done.
func NewMediaFileReader() (*MediaFileReader, error) {
	h := edge.MediaCreateFilesReader()
	if h == 0 {
		return nil, ErrNoBackend
	}
	return &MediaFileReader{handle: h}, nil
}

// Destroy releases the reader.
func (m *MediaFileReader) Destroy() {
	if m.IsOpened() {
		_ = m.Close()
	}
	m.status.Store(readerClosed)
	if m.handle != 0 {
		edge.MediaDeleteFilesReader(m.handle)
		m.handle = 0
	}
}

// Open connects to the dock's media store. It also makes the dock keep
// local media files.
func (m *MediaFileReader) Open() error {
	if !Initialized() {
		return ErrSDKNotInit
	}
	if !m.status.CompareAndSwap(readerClosed, readerOpening) {
		return ErrStateAbnormal
	}
	if err := codeErr(edge.FilesReaderInit(m.handle)); err != nil {
		m.status.Store(readerClosed)
		return err
	}
	m.status.Store(readerOpened)
	return nil
}

// Close disconnects from the media store. Open must be called again
// before further reads.
func (m *MediaFileReader) Close() error {
	if !m.status.CompareAndSwap(readerOpened, readerClosing) {
		return ErrStateAbnormal
	}
	if err := codeErr(edge.FilesReaderDeInit(m.handle)); err != nil {
		m.status.Store(readerOpened)
		return err
	}
	m.status.Store(readerClosed)
	return nil
}

// IsOpened reports whether Open succeeded.
func (m *MediaFileReader) IsOpened() bool {
	return m.status.Load() == readerOpened
}

// GetFileList lists the media files of the most recent wayline mission.
func (m *MediaFileReader) GetFileList() ([]*MediaFileDesc, error) {
	if !m.IsOpened() {
		return nil, ErrFileReaderNotOpen
	}
	n, files := edge.FilesReaderList(m.handle)
	if n < 0 {
		return nil, codeErr(edge.ErrorCode(-n))
	}
	if n == 0 {
		return nil, nil
	}
	defer edge.Free(unsafe.Pointer(files))

	records := edge.MediaFileRecords(files, n)
	list := make([]*MediaFileDesc, len(records))
	for i := range records {
		list[i] = convertRecord(&records[i])
	}
	return list, nil
}

// OpenFile opens the file at path, a MediaFileDesc.FilePath.
func (m *MediaFileReader) OpenFile(path string) (*MediaFile, error) {
	if !m.IsOpened() {
		return nil, ErrFileReaderNotOpen
	}
	v := edge.MakeView(path)
	fd := edge.FilesReaderOpen(m.handle, &v)
	if fd < 0 {
		return nil, fmt.Errorf("open file %s: %w", path, codeErr(edge.ErrorCode(-fd)))
	}
	return &MediaFile{path: path, fd: fd, reader: m}, nil
}

// MediaFile is an open dock media file.
type MediaFile struct {
	path   string
	fd     int32
	reader *MediaFileReader
	closed atomic.Bool
}

var _ io.ReadCloser = (*MediaFile)(nil)

// Path returns the path the file was opened with.
func (f *MediaFile) Path() string { return f.path }

// Read reads from the file. It returns io.EOF at the end of the file.
func (f *MediaFile) Read(p []byte) (int, error) {
	if f.closed.Load() {
		return 0, fs.ErrClosed
	}
	if !f.reader.IsOpened() {
		return 0, ErrFileReaderNotOpen
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := edge.FilesReaderRead(f.reader.handle, f.fd, p)
	if n == 0 {
		return 0, io.EOF
	}
	return int(n), nil
}

// Close closes the file.
func (f *MediaFile) Close() error {
	if !f.closed.CompareAndSwap(false, true) {
		return nil
	}
	if !f.reader.IsOpened() {
		return ErrFileReaderNotOpen
	}
	return codeErr(edge.FilesReaderClose(f.reader.handle, f.fd))
}
