package client

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/thesyncim/edge"
)

// AppInfo identifies the developer application.
type AppInfo struct {
	Name             string
	ID               string
	Key              string
	License          string
	DeveloperAccount string
}

// Config is the device identity and key material passed to InitSDK.
type Config struct {
	ProductName     string
	VendorName      string
	SerialNumber    string
	FirmwareVersion [4]uint8
	App             AppInfo

	// PrivateKey and PublicKey are the DER encoded RSA-2048 key pair.
	PrivateKey []byte
	PublicKey  []byte

	// Logger receives the SDK's log lines. Nil disables SDK logging.
	Logger *slog.Logger
	// LogLevel is the most verbose SDK level forwarded to Logger.
	LogLevel edge.LogLevel
	// LogColor asks the SDK for ANSI colored lines.
	LogColor bool

	// KeepOnFailure leaves the SDK as is when Init fails instead of
	// de-initializing it.
	KeepOnFailure bool
}

const (
	sdkUninitialized int32 = iota
	sdkInitializing
	sdkInitialized
)

var (
	sdkState  atomic.Int32
	sdkLogger atomic.Pointer[slog.Logger]
)

// Initialized reports whether InitSDK succeeded and DeInitSDK has not run
// since.
func Initialized() bool {
	return sdkState.Load() == sdkInitialized
}

// InitSDK initializes the edge SDK.
func InitSDK(cfg Config) error {
	if cfg.Logger != nil && !cfg.LogLevel.IsValid() {
		return ErrInvalidParameter
	}
	if !sdkState.CompareAndSwap(sdkUninitialized, sdkInitializing) {
		return codeErr(edge.ErrorRepeatOperation)
	}

	device := &edge.DeviceIdentity{
		ProductName:  edge.MakeView(cfg.ProductName),
		VendorName:   edge.MakeView(cfg.VendorName),
		SerialNumber: edge.MakeView(cfg.SerialNumber),
		FirmwareVersion: edge.Version{
			Major:  cfg.FirmwareVersion[0],
			Minor:  cfg.FirmwareVersion[1],
			Modify: cfg.FirmwareVersion[2],
			Debug:  cfg.FirmwareVersion[3],
		},
	}
	app := &edge.AppInfo{
		AppName:          edge.MakeView(cfg.App.Name),
		AppID:            edge.MakeView(cfg.App.ID),
		AppKey:           edge.MakeView(cfg.App.Key),
		AppLicense:       edge.MakeView(cfg.App.License),
		DeveloperAccount: edge.MakeView(cfg.App.DeveloperAccount),
	}
	keys := &edge.KeyStoreInfo{
		PrivateKey: edge.MakeBytesView(cfg.PrivateKey),
		PublicKey:  edge.MakeBytesView(cfg.PublicKey),
	}

	var logger *edge.LoggerConfig
	if cfg.Logger != nil {
		initCallbacks()
		sdkLogger.Store(cfg.Logger)
		logger = &edge.LoggerConfig{
			Level:        int32(cfg.LogLevel),
			SupportColor: cfg.LogColor,
			Output:       logCallback,
		}
	}

	ret := edge.Init(device, app, keys, logger, !cfg.KeepOnFailure)
	if err := codeErr(ret); err != nil {
		sdkState.Store(sdkUninitialized)
		return err
	}
	sdkState.Store(sdkInitialized)
	return nil
}

// DeInitSDK de-initializes the edge SDK.
func DeInitSDK() error {
	if !sdkState.CompareAndSwap(sdkInitialized, sdkUninitialized) {
		return ErrSDKNotInit
	}
	return codeErr(edge.DeInit())
}

// logNativeLine turns one SDK console line back into a slog record. Lines
// look like "[time][Level]-[module] message".
func logNativeLine(line string) {
	logger := sdkLogger.Load()
	if logger == nil {
		return
	}
	level, module, msg := parseConsoleLine(line)
	logger.Log(context.Background(), level, msg, "source", "edge-sdk", "module", module)
}

func parseConsoleLine(line string) (slog.Level, string, string) {
	line = stripANSI(strings.TrimRight(line, "\r\n"))
	level := slog.LevelInfo
	module := ""

	// Skip the timestamp, then read the level and module tags.
	if rest, ok := cutTag(line); ok {
		line = rest
		if tag, rest, ok := readTag(line); ok {
			level = parseLevel(tag)
			line = strings.TrimPrefix(rest, "-")
			if tag, rest, ok := readTag(line); ok {
				module = tag
				line = rest
			}
		}
	}
	return level, module, strings.TrimSpace(line)
}

func cutTag(s string) (string, bool) {
	_, rest, ok := readTag(s)
	return rest, ok
}

func readTag(s string) (tag, rest string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", s, false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", s, false
	}
	return s[1:end], s[end+1:], true
}

func parseLevel(tag string) slog.Level {
	switch strings.ToLower(tag) {
	case "error":
		return slog.LevelError
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// stripANSI removes SGR escape sequences.
func stripANSI(s string) string {
	if !strings.Contains(s, "\x1b[") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && s[j] != 'm' {
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
