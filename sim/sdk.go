package sim

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thesyncim/edge"
)

// State is the SDK lifecycle state.
type State int32

const (
	StateUninitialized State = iota
	StateInitializing
	StateInitialized
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateInitialized:
		return "initialized"
	default:
		return "unknown"
	}
}

// Device is the identity the SDK was initialized with.
type Device struct {
	ProductName     string
	VendorName      string
	SerialNumber    string
	FirmwareVersion edge.FirmwareVersion
	AppInfo         edge.AppCredentials
}

// SDK simulates the native edge SDK singleton. It implements edge.ESDK and
// owns the cloud and media services of its backend.
type SDK struct {
	cfg   *Config
	state atomic.Int32

	mu        sync.Mutex
	device    Device
	logger    *slog.Logger
	liveviews map[*Liveview]struct{}

	cloud *Cloud
	media *MediaManager
}

// New creates a simulated SDK. A nil cfg uses DefaultConfig.
func New(cfg *Config) *SDK {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	s := &SDK{
		cfg:       cfg,
		logger:    slog.New(discardHandler{}),
		liveviews: make(map[*Liveview]struct{}),
	}
	s.cloud = newCloud(s)
	s.media = newMediaManager(s, cfg.Media.Dir)
	return s
}

// Config returns the configuration the SDK was created with.
func (s *SDK) Config() *Config { return s.cfg }

// State returns the current lifecycle state.
func (s *SDK) State() State { return State(s.state.Load()) }

// Initialized reports whether Init has completed.
func (s *SDK) Initialized() bool { return s.State() == StateInitialized }

// Device returns the identity passed to the last successful Init.
func (s *SDK) Device() Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.device
}

// Logger returns the logger writing to the consoles passed to Init.
func (s *SDK) Logger() *slog.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logger
}

// Cloud returns the cloud custom message service.
func (s *SDK) Cloud() *Cloud { return s.cloud }

// Media returns the media manager.
func (s *SDK) Media() *MediaManager { return s.media }

// Init validates opts, fetches and checks the key pair, and connects the
// cloud transport. On failure the SDK stays uninitialized.
func (s *SDK) Init(opts *edge.Options) edge.ErrorCode {
	if opts == nil {
		return edge.ErrorInvalidArgument
	}
	if !s.state.CompareAndSwap(int32(StateUninitialized), int32(StateInitializing)) {
		if s.State() == StateInitialized {
			return edge.ErrorRepeatOperation
		}
		return edge.ErrorInvalidOperation
	}

	code := s.init(opts)
	if code != edge.Ok {
		s.state.Store(int32(StateUninitialized))
		return code
	}
	s.state.Store(int32(StateInitialized))
	s.Logger().Info("edge sdk initialized",
		"product", opts.ProductName,
		"serial", opts.SerialNumber)
	return edge.Ok
}

func (s *SDK) init(opts *edge.Options) edge.ErrorCode {
	if opts.ProductName == "" || opts.SerialNumber == "" {
		return edge.ErrorInvalidArgument
	}
	consoles := make([]edge.LoggerConsole, 0, len(opts.Consoles))
	for _, c := range opts.Consoles {
		if !c.Level.IsValid() {
			return edge.ErrorParamOutOfRange
		}
		if c.Output != nil {
			consoles = append(consoles, c)
		}
	}
	logger := slog.New(newConsoleHandler("sim", consoles))

	if opts.KeyStore == nil {
		return edge.ErrorNullPointer
	}
	priv, code := opts.KeyStore.RSA2048DERPrivateKey()
	if code != edge.Ok {
		logger.Error("get private key failed", "code", code)
		return code
	}
	pub, code := opts.KeyStore.RSA2048DERPublicKey()
	if code != edge.Ok {
		logger.Error("get public key failed", "code", code)
		return code
	}
	if s.cfg.VerifyKeys {
		if err := verifyKeyPair(priv, pub); err != nil {
			logger.Error("key verification failed", "error", err)
			return edge.ErrorAuthVerifyFailure
		}
	}

	if s.cfg.InitDelay > 0 {
		time.Sleep(s.cfg.InitDelay)
	}

	s.mu.Lock()
	s.logger = logger
	s.device = Device{
		ProductName:     opts.ProductName,
		VendorName:      opts.VendorName,
		SerialNumber:    opts.SerialNumber,
		FirmwareVersion: opts.FirmwareVersion,
		AppInfo:         opts.AppInfo,
	}
	s.mu.Unlock()

	if url := s.cfg.Cloud.URL; url != "" {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Cloud.DialTimeout)
		defer cancel()
		if err := s.cloud.connect(ctx, url); err != nil {
			logger.Error("cloud connect failed", "url", url, "error", err)
			return edge.ErrorConnectFailure
		}
	}
	return edge.Ok
}

// DeInit stops every live view stream and disconnects the cloud. It fails
// with ErrorInvalidOperation unless the SDK is initialized.
func (s *SDK) DeInit() edge.ErrorCode {
	if !s.state.CompareAndSwap(int32(StateInitialized), int32(StateUninitialized)) {
		return edge.ErrorInvalidOperation
	}
	s.mu.Lock()
	lvs := make([]*Liveview, 0, len(s.liveviews))
	for lv := range s.liveviews {
		lvs = append(lvs, lv)
	}
	logger := s.logger
	s.mu.Unlock()

	for _, lv := range lvs {
		lv.StopH264Stream()
	}
	s.cloud.disconnect()
	logger.Info("edge sdk deinitialized")
	return edge.Ok
}

// Close de-initializes the SDK if needed and stops the media watcher.
func (s *SDK) Close() error {
	if s.Initialized() {
		s.DeInit()
	}
	return s.media.close()
}

// NewLiveview creates a live view bound to this SDK.
func (s *SDK) NewLiveview() *Liveview {
	lv := newLiveview(s)
	s.mu.Lock()
	s.liveviews[lv] = struct{}{}
	s.mu.Unlock()
	return lv
}

func (s *SDK) forget(lv *Liveview) {
	s.mu.Lock()
	delete(s.liveviews, lv)
	s.mu.Unlock()
}

// discardHandler drops every record.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }
