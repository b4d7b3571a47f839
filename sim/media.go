package sim

import (
	"errors"
	"image"
	_ "image/jpeg"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/thesyncim/edge"
)

// defaultSettle is how long a new file must stay unchanged before the
// observer hears about it.
const defaultSettle = 200 * time.Millisecond

// MediaManager serves the dock media store from a directory.
type MediaManager struct {
	sdk    *SDK
	dir    string
	settle time.Duration

	mu         sync.Mutex
	observer   func(*edge.MediaFile) edge.ErrorCode
	upload     bool
	autoDelete bool

	watcher *fsnotify.Watcher
	pending map[string]time.Time
	seen    map[string]bool
	done    chan struct{}
	wg      sync.WaitGroup
}

func newMediaManager(s *SDK, dir string) *MediaManager {
	return &MediaManager{sdk: s, dir: dir, settle: defaultSettle}
}

// Dir returns the media directory, empty when media access is disabled.
func (m *MediaManager) Dir() string { return m.dir }

// CreateMediaFilesReader returns a reader over the media directory, or nil
// when no directory is configured.
func (m *MediaManager) CreateMediaFilesReader() edge.MediaFilesReader {
	if m.dir == "" {
		return nil
	}
	return &FilesReader{m: m, files: make(map[int32]*os.File)}
}

// RegisterMediaFilesObserver sets the observer notified of every new media
// file and starts watching the directory.
func (m *MediaManager) RegisterMediaFilesObserver(observer func(*edge.MediaFile) edge.ErrorCode) edge.ErrorCode {
	if observer == nil {
		return edge.ErrorInvalidArgument
	}
	if m.dir == "" {
		return edge.ErrorInvalidOperation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observer = observer
	if m.watcher != nil {
		return edge.Ok
	}
	if err := m.startWatchLocked(); err != nil {
		m.sdk.Logger().Error("watch media directory failed", "dir", m.dir, "error", err)
		return edge.ErrorSystemError
	}
	return edge.Ok
}

// SetDroneNestUploadCloud sets whether the dock uploads media files.
func (m *MediaManager) SetDroneNestUploadCloud(enable bool) edge.ErrorCode {
	if !m.sdk.Initialized() {
		return edge.ErrorInvalidOperation
	}
	m.mu.Lock()
	m.upload = enable
	m.mu.Unlock()
	m.sdk.Logger().Info("set media upload to cloud", "enable", enable)
	return edge.Ok
}

// SetDroneNestAutoDelete sets whether the dock deletes uploaded media files.
func (m *MediaManager) SetDroneNestAutoDelete(enable bool) edge.ErrorCode {
	if !m.sdk.Initialized() {
		return edge.ErrorInvalidOperation
	}
	m.mu.Lock()
	m.autoDelete = enable
	m.mu.Unlock()
	m.sdk.Logger().Info("set media auto delete", "enable", enable)
	return edge.Ok
}

// UploadToCloud reports the upload setting.
func (m *MediaManager) UploadToCloud() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upload
}

// AutoDelete reports the auto delete setting.
func (m *MediaManager) AutoDelete() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.autoDelete
}

// startWatchLocked starts the watcher. Files already present are never
// reported. Caller holds mu.
func (m *MediaManager) startWatchLocked() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(m.dir); err != nil {
		w.Close()
		return err
	}
	m.watcher = w
	m.pending = make(map[string]time.Time)
	m.seen = make(map[string]bool)
	m.done = make(chan struct{})
	if entries, err := os.ReadDir(m.dir); err == nil {
		for _, e := range entries {
			m.seen[filepath.Join(m.dir, e.Name())] = true
		}
	}

	m.wg.Add(2)
	go m.eventLoop(w, m.done)
	go m.settleLoop(m.done)
	return nil
}

func (m *MediaManager) eventLoop(w *fsnotify.Watcher, done <-chan struct{}) {
	defer m.wg.Done()
	for {
		select {
		case <-done:
			return
		case event, ok := <-w.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if _, ok := mediaType(event.Name); !ok {
				continue
			}
			m.mu.Lock()
			if !m.seen[event.Name] {
				m.pending[event.Name] = time.Now()
			}
			m.mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			m.sdk.Logger().Warn("media watcher error", "error", err)
		}
	}
}

// settleLoop reports files once they stop changing.
func (m *MediaManager) settleLoop(done <-chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(m.settle / 2)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			m.reportSettled(now)
		}
	}
}

func (m *MediaManager) reportSettled(now time.Time) {
	var ready []string
	m.mu.Lock()
	for path, at := range m.pending {
		if now.Sub(at) >= m.settle {
			ready = append(ready, path)
			delete(m.pending, path)
			m.seen[path] = true
		}
	}
	observer := m.observer
	m.mu.Unlock()

	sort.Strings(ready)
	for _, path := range ready {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		f, ok := describeFile(path, info)
		if !ok || observer == nil {
			continue
		}
		if code := observer(&f); code != edge.Ok {
			m.sdk.Logger().Warn("media observer failed", "file", f.FileName, "code", code)
		}
	}
}

func (m *MediaManager) close() error {
	m.mu.Lock()
	w, done := m.watcher, m.done
	m.watcher, m.done = nil, nil
	m.mu.Unlock()
	if w == nil {
		return nil
	}
	close(done)
	m.wg.Wait()
	return w.Close()
}

// list returns the media files under the directory, oldest first.
func (m *MediaManager) list() ([]edge.MediaFile, error) {
	var files []edge.MediaFile
	err := filepath.WalkDir(m.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if f, ok := describeFile(path, info); ok {
			files = append(files, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].CreateTime != files[j].CreateTime {
			return files[i].CreateTime < files[j].CreateTime
		}
		return files[i].FilePath < files[j].FilePath
	})
	return files, nil
}

// resolve maps a path from the file list to a file inside the directory.
func (m *MediaManager) resolve(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	root, err := filepath.Abs(m.dir)
	if err != nil {
		return "", err
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, abs)
	}
	abs = filepath.Clean(abs)
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.New("path outside media directory")
	}
	return abs, nil
}

func mediaType(path string) (edge.MediaFileType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return edge.MediaFileTypeJPEG, true
	case ".mp4":
		return edge.MediaFileTypeMP4, true
	default:
		return 0, false
	}
}

// cameraAttr reads the lens from the DJI style name suffix, such as
// DJI_0001_W.JPG. Names without one are visible light.
func cameraAttr(path string) edge.CameraAttr {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	i := strings.LastIndexByte(base, '_')
	if i < 0 {
		return edge.CameraAttrVisible
	}
	switch strings.ToUpper(base[i+1:]) {
	case "W":
		return edge.CameraAttrWide
	case "Z":
		return edge.CameraAttrZoom
	case "T":
		return edge.CameraAttrInfrared
	default:
		return edge.CameraAttrVisible
	}
}

func describeFile(path string, info fs.FileInfo) (edge.MediaFile, bool) {
	typ, ok := mediaType(path)
	if !ok {
		return edge.MediaFile{}, false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	f := edge.MediaFile{
		FileName:   info.Name(),
		FilePath:   abs,
		FileSize:   uint64(info.Size()),
		FileType:   typ,
		CameraAttr: cameraAttr(path),
		CreateTime: info.ModTime().Unix(),
	}
	if typ == edge.MediaFileTypeJPEG {
		f.ImageWidth, f.ImageHeight = imageSize(abs)
	}
	return f, true
}

// imageSize decodes only the image header; unreadable images report 0x0.
func imageSize(path string) (int32, int32) {
	r, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer r.Close()
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0
	}
	return int32(cfg.Width), int32(cfg.Height)
}

// FilesReader reads the media directory with POSIX-like file handles.
type FilesReader struct {
	m *MediaManager

	mu     sync.Mutex
	inited bool
	files  map[int32]*os.File
	next   int32
}

// Init connects the reader. It also turns off auto delete so listed files
// stay readable.
func (r *FilesReader) Init() edge.ErrorCode {
	if !r.m.sdk.Initialized() {
		return edge.ErrorInvalidOperation
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.inited {
		return edge.ErrorRepeatOperation
	}
	r.inited = true
	r.m.mu.Lock()
	r.m.autoDelete = false
	r.m.mu.Unlock()
	return edge.Ok
}

// DeInit closes every open file and disconnects the reader.
func (r *FilesReader) DeInit() edge.ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inited {
		return edge.ErrorInvalidOperation
	}
	r.closeAllLocked()
	r.inited = false
	return edge.Ok
}

// FileList lists the media directory.
func (r *FilesReader) FileList() ([]edge.MediaFile, int32) {
	r.mu.Lock()
	inited := r.inited
	r.mu.Unlock()
	if !inited {
		return nil, -int32(edge.ErrorInvalidOperation)
	}
	files, err := r.m.list()
	if err != nil {
		r.m.sdk.Logger().Error("list media files failed", "error", err)
		return nil, -int32(edge.ErrorSystemError)
	}
	return files, int32(len(files))
}

// Open opens a file inside the media directory.
func (r *FilesReader) Open(path string) int32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.inited {
		return -int32(edge.ErrorInvalidOperation)
	}
	abs, err := r.m.resolve(path)
	if err != nil {
		return -int32(edge.ErrorInvalidArgument)
	}
	f, err := os.Open(abs)
	if err != nil {
		return -int32(edge.ErrorSystemError)
	}
	fd := r.next
	r.next++
	r.files[fd] = f
	return fd
}

// Read reads from fd. It returns 0 at EOF or on error.
func (r *FilesReader) Read(fd int32, buf []byte) int {
	r.mu.Lock()
	f, ok := r.files[fd]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return 0
	}
	return n
}

// Close closes fd.
func (r *FilesReader) Close(fd int32) edge.ErrorCode {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[fd]
	if !ok {
		return edge.ErrorInvalidArgument
	}
	delete(r.files, fd)
	if err := f.Close(); err != nil {
		return edge.ErrorSystemError
	}
	return edge.Ok
}

// Release closes every open file. It runs when the reader's last facade
// reference is dropped.
func (r *FilesReader) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closeAllLocked()
	r.inited = false
}

func (r *FilesReader) closeAllLocked() {
	for fd, f := range r.files {
		f.Close()
		delete(r.files, fd)
	}
}
