package edge

// Version mirrors CEdgeVersion.
type Version struct {
	Major  uint8
	Minor  uint8
	Modify uint8
	Debug  uint8
}

// DeviceIdentity mirrors CEdgeDevice.
type DeviceIdentity struct {
	ProductName     StringView
	VendorName      StringView
	SerialNumber    StringView
	FirmwareVersion Version
}

// AppInfo mirrors CEdgeAppInfo.
type AppInfo struct {
	AppName          StringView
	AppID            StringView
	AppKey           StringView
	AppLicense       StringView
	DeveloperAccount StringView
}

// KeyStoreInfo mirrors CEdgeKeyStore: DER encoded RSA-2048 key material.
type KeyStoreInfo struct {
	PrivateKey StringView
	PublicKey  StringView
}

// LoggerConfig mirrors CEdgeLogger. Output has the C signature
// void (*)(const uint8_t *data, uint32_t len).
type LoggerConfig struct {
	Level        int32
	SupportColor bool
	Output       CFunc
}

// Init assembles the native options from the caller's records and
// initializes the SDK singleton. logger may be nil. When the SDK reports a
// failure and rollbackOnFailure is set, the SDK is de-initialized before the
// original code is returned.
func Init(device *DeviceIdentity, app *AppInfo, keys *KeyStoreInfo, logger *LoggerConfig, rollbackOnFailure bool) ErrorCode {
	if device == nil || app == nil || keys == nil {
		return ErrorInvalidArgument
	}
	s := sdk()
	if s == nil {
		return ErrorNullPointer
	}

	opts := &Options{
		ProductName:  ViewToOwned(device.ProductName),
		VendorName:   ViewToOwned(device.VendorName),
		SerialNumber: ViewToOwned(device.SerialNumber),
		FirmwareVersion: FirmwareVersion{
			device.FirmwareVersion.Major,
			device.FirmwareVersion.Minor,
			device.FirmwareVersion.Modify,
			device.FirmwareVersion.Debug,
		},
		AppInfo: AppCredentials{
			AppName:          ViewToOwned(app.AppName),
			AppID:            ViewToOwned(app.AppID),
			AppKey:           ViewToOwned(app.AppKey),
			AppLicense:       ViewToOwned(app.AppLicense),
			DeveloperAccount: ViewToOwned(app.DeveloperAccount),
		},
		KeyStore: &keyStore{
			private: []byte(ViewToOwned(keys.PrivateKey)),
			public:  []byte(ViewToOwned(keys.PublicKey)),
		},
	}

	if logger != nil && logger.Level >= 0 && logger.Output != 0 {
		t := &logTrampoline{fn: logger.Output}
		opts.Consoles = append(opts.Consoles, LoggerConsole{
			Level:        LogLevel(logger.Level),
			Output:       t.output,
			SupportColor: logger.SupportColor,
		})
	}

	ret := s.Init(opts)
	if ret != Ok && rollbackOnFailure {
		_ = s.DeInit()
	}
	return ret
}

// DeInit de-initializes the SDK singleton. It is safe to call without a
// prior successful Init; the result is whatever the SDK reports.
func DeInit() ErrorCode {
	s := sdk()
	if s == nil {
		return ErrorNullPointer
	}
	return s.DeInit()
}

// keyStore serves key material copied at Init time.
type keyStore struct {
	private []byte
	public  []byte
}

func (k *keyStore) RSA2048DERPrivateKey() ([]byte, ErrorCode) {
	return k.private, Ok
}

func (k *keyStore) RSA2048DERPublicKey() ([]byte, ErrorCode) {
	return k.public, Ok
}
