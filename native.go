package edge

// Interfaces of the native edge SDK the facade marshals into. A backend
// supplies implementations; see Backend.

// FirmwareVersion is the version quad handed to the SDK.
type FirmwareVersion [4]uint8

// LogLevel of a native logger console. Lower is more severe.
type LogLevel int32

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// IsValid reports whether l is a known level.
func (l LogLevel) IsValid() bool {
	return l >= LogLevelError && l <= LogLevelDebug
}

// LoggerConsole receives formatted native log lines up to Level.
type LoggerConsole struct {
	Level        LogLevel
	Output       func(line []byte) ErrorCode
	SupportColor bool
}

// AppCredentials identifies the developer application.
type AppCredentials struct {
	AppName          string
	AppID            string
	AppKey           string
	AppLicense       string
	DeveloperAccount string
}

// KeyStore hands the SDK its RSA-2048 key pair in DER form on demand.
type KeyStore interface {
	RSA2048DERPrivateKey() ([]byte, ErrorCode)
	RSA2048DERPublicKey() ([]byte, ErrorCode)
}

// Options is the native configuration object. It owns copies of every
// string; nothing in it aliases caller memory.
type Options struct {
	ProductName     string
	VendorName      string
	SerialNumber    string
	FirmwareVersion FirmwareVersion
	AppInfo         AppCredentials
	Consoles        []LoggerConsole
	KeyStore        KeyStore
}

// ESDK is the process-wide SDK lifecycle singleton.
type ESDK interface {
	Init(opts *Options) ErrorCode
	DeInit() ErrorCode
}

// CloudAPI is the singleton cloud transport for custom messages.
type CloudAPI interface {
	RegisterCustomServicesMessageHandler(handler func(data []byte)) ErrorCode
	SendCustomEventsMessage(data []byte) ErrorCode
}

// CameraType selects the aircraft camera feeding a live view.
type CameraType int32

const (
	CameraTypeFPV CameraType = iota
	CameraTypePayload
)

// StreamQuality of a live view.
type StreamQuality int32

const (
	StreamQuality540p     StreamQuality = iota + 1 // 30fps, 960*540
	StreamQuality720p                              // 30fps, 1280*720
	StreamQuality720pHigh                          // 30fps, 1280*720, higher bitrate
	StreamQuality1080p                             // 30fps, 1920*1080
)

// CameraSource selects the lens of a payload camera.
type CameraSource int32

const (
	CameraSourceWide CameraSource = iota + 1
	CameraSourceZoom
	CameraSourceIR
)

// LiveviewStatus is a bitmask of the stream qualities currently available.
type LiveviewStatus uint32

const (
	StatusQualityAuto LiveviewStatus = 1 << iota
	StatusQuality540p
	StatusQuality720p
	StatusQuality720pHigh
	StatusQuality1080p
)

// H264Callback receives one chunk of Annex B stream data. The slice is only
// valid for the duration of the call.
type H264Callback func(data []byte) ErrorCode

// LiveviewOptions configures a native live view.
type LiveviewOptions struct {
	Camera   CameraType
	Quality  StreamQuality
	Callback H264Callback
}

// Liveview is one native streaming object.
type Liveview interface {
	Init(opts LiveviewOptions) ErrorCode
	DeInit() ErrorCode
	SetCameraSource(source CameraSource) ErrorCode
	SubscribeLiveviewStatus(cb func(status LiveviewStatus)) ErrorCode
	StartH264Stream() ErrorCode
	StopH264Stream() ErrorCode
}

// MediaFileType of a media file.
type MediaFileType int32

const (
	MediaFileTypeJPEG MediaFileType = 0
	MediaFileTypeMP4  MediaFileType = 3
)

// CameraAttr is the lens that produced a media file.
type CameraAttr int32

const (
	CameraAttrInfrared CameraAttr = 0
	CameraAttrZoom     CameraAttr = 1
	CameraAttrWide     CameraAttr = 2
	CameraAttrVisible  CameraAttr = 3
)

// MediaFile describes one file in the native media index.
type MediaFile struct {
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
	ImageWidth       int32
	ImageHeight      int32
	VideoDuration    uint32 // seconds
	CreateTime       int64  // unix seconds
}

// MediaFilesReader is a stateful reader of the media index with POSIX-like
// file access. Several files may be open at once.
type MediaFilesReader interface {
	Init() ErrorCode
	DeInit() ErrorCode
	// FileList returns the files and their count, or a count <= 0 which
	// may be a negated native error code.
	FileList() ([]MediaFile, int32)
	// Open returns a non-negative file handle or a negative error code.
	Open(path string) int32
	Read(fd int32, buf []byte) int
	Close(fd int32) ErrorCode
}

// MediaManager is the media index singleton.
type MediaManager interface {
	CreateMediaFilesReader() MediaFilesReader
	RegisterMediaFilesObserver(observer func(file *MediaFile) ErrorCode) ErrorCode
	SetDroneNestUploadCloud(enable bool) ErrorCode
	SetDroneNestAutoDelete(enable bool) ErrorCode
}
