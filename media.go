package edge

import "unsafe"

// MediaFileRecord mirrors CEdgeMediaFile. When returned in bulk, FileName
// and FilePath point into the same allocation as the record array.
type MediaFileRecord struct {
	FileName         StringView
	FilePath         StringView
	FileSize         uintptr
	FileType         int32
	CameraAttr       int32
	Latitude         float64
	Longitude        float64
	AbsoluteAltitude float64
	RelativeAltitude float64
	GimbalYawDegree  float64
	ImageWidth       int32
	ImageHeight      int32
	VideoDuration    uint32
	CreateTime       int64
}

const mediaFileRecordSize = unsafe.Sizeof(MediaFileRecord{})

// MediaFileRecords views n records starting at files.
func MediaFileRecords(files *MediaFileRecord, n int32) []MediaFileRecord {
	if files == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice(files, n)
}

// filesReader is the facade record behind a reader handle.
type filesReader struct {
	reader Shared[MediaFilesReader]
}

var filesReaders HandleTable[*filesReader]

// MediaCreateFilesReader creates a media files reader. It returns 0 when
// the media manager is unavailable.
func MediaCreateFilesReader() Handle {
	m := mediaManager()
	if m == nil {
		return 0
	}
	r := m.CreateMediaFilesReader()
	if r == nil {
		return 0
	}
	return filesReaders.Put(&filesReader{reader: MakeShared(r, releaseNative[MediaFilesReader])})
}

// MediaDeleteFilesReader releases the reader handle.
func MediaDeleteFilesReader(h Handle) {
	r, ok := filesReaders.Delete(h)
	if !ok {
		return
	}
	r.reader.Reset()
}

// MediaRegisterFilesObserver registers a C observer, void (*)(const
// CEdgeMediaFile *), notified for every new media file. The record passed
// to the observer is only valid during the call.
func MediaRegisterFilesObserver(callback CFunc) ErrorCode {
	if callback == 0 {
		return ErrorInvalidArgument
	}
	m := mediaManager()
	if m == nil {
		return ErrorNullPointer
	}
	t := &mediaFileTrampoline{fn: callback}
	return m.RegisterMediaFilesObserver(t.onFile)
}

// MediaSetAutoUploadToCloud sets whether the dock uploads media files to the cloud.
func MediaSetAutoUploadToCloud(enable bool) ErrorCode {
	m := mediaManager()
	if m == nil {
		return ErrorNullPointer
	}
	return m.SetDroneNestUploadCloud(enable)
}

// MediaSetAutoDeleteAfterUpload sets whether the dock deletes local media
// files once uploaded.
func MediaSetAutoDeleteAfterUpload(enable bool) ErrorCode {
	m := mediaManager()
	if m == nil {
		return ErrorNullPointer
	}
	return m.SetDroneNestAutoDelete(enable)
}

func readerInstance(h Handle) (MediaFilesReader, bool) {
	r, ok := filesReaders.Get(h)
	if !ok {
		return nil, false
	}
	mr, ok := r.reader.Get()
	if !ok || mr == nil {
		return nil, false
	}
	return mr, true
}

// FilesReaderInit connects the reader. It must precede every other reader call.
func FilesReaderInit(h Handle) ErrorCode {
	r, ok := readerInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return r.Init()
}

// FilesReaderDeInit disconnects the reader and releases native resources.
func FilesReaderDeInit(h Handle) ErrorCode {
	r, ok := readerInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return r.DeInit()
}

// FilesReaderList returns the media file list as one allocation: count
// records followed by the bytes of every name and path. On count > 0 the
// caller owns files and releases it with a single Free. A count <= 0 is
// returned as is and nothing is allocated.
func FilesReaderList(h Handle) (count int32, files *MediaFileRecord) {
	r, ok := readerInstance(h)
	if !ok {
		return -int32(ErrorInvalidArgument), nil
	}
	list, n := r.FileList()
	if n <= 0 {
		return n, nil
	}
	if int(n) > len(list) {
		n = int32(len(list))
		if n == 0 {
			return 0, nil
		}
	}
	block := serializeMediaFiles(list[:n])
	if block == nil {
		return -int32(ErrorSystemError), nil
	}
	return n, (*MediaFileRecord)(block)
}

// FilesReaderOpen opens the file at path and returns its file handle, or a
// negative error code.
func FilesReaderOpen(h Handle, path *StringView) int32 {
	r, ok := readerInstance(h)
	if !ok || path == nil {
		return -int32(ErrorInvalidArgument)
	}
	return r.Open(ViewToOwned(*path))
}

// FilesReaderRead reads up to len(buf) bytes from fd into buf.
func FilesReaderRead(h Handle, fd int32, buf []byte) uintptr {
	r, ok := readerInstance(h)
	if !ok || len(buf) == 0 {
		return 0
	}
	n := r.Read(fd, buf)
	if n <= 0 {
		return 0
	}
	return uintptr(n)
}

// FilesReaderClose closes fd.
func FilesReaderClose(h Handle, fd int32) ErrorCode {
	r, ok := readerInstance(h)
	if !ok {
		return ErrorInvalidArgument
	}
	return r.Close(fd)
}

// serializeMediaFiles lays out len(files) records followed by their string
// bytes in a single block from the allocator. The first pass sizes the
// string region, the second fills records and strings.
func serializeMediaFiles(files []MediaFile) unsafe.Pointer {
	var strLen uintptr
	for i := range files {
		strLen += uintptr(len(files[i].FileName) + len(files[i].FilePath))
	}

	head := uintptr(len(files)) * mediaFileRecordSize
	block := Alloc(head + strLen)
	if block == nil {
		return nil
	}
	records := unsafe.Slice((*MediaFileRecord)(block), len(files))

	var tail []byte
	if strLen > 0 {
		tail = unsafe.Slice((*byte)(unsafe.Add(block, head)), strLen)
	}
	off := 0
	for i := range files {
		f := &files[i]
		rec := &records[i]
		rec.FileName = OwnedToView(f.FileName, tail[off:])
		off += len(f.FileName)
		rec.FilePath = OwnedToView(f.FilePath, tail[off:])
		off += len(f.FilePath)
		rec.FileSize = uintptr(f.FileSize)
		rec.FileType = int32(f.FileType)
		rec.CameraAttr = int32(f.CameraAttr)
		rec.Latitude = f.Latitude
		rec.Longitude = f.Longitude
		rec.AbsoluteAltitude = f.AbsoluteAltitude
		rec.RelativeAltitude = f.RelativeAltitude
		rec.GimbalYawDegree = f.GimbalYawDegree
		rec.ImageWidth = f.ImageWidth
		rec.ImageHeight = f.ImageHeight
		rec.VideoDuration = f.VideoDuration
		rec.CreateTime = f.CreateTime
	}
	return block
}
