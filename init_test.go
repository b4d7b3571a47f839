package edge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIdentity() (*DeviceIdentity, *AppInfo, *KeyStoreInfo) {
	dev := &DeviceIdentity{
		ProductName:     MakeView("Dock"),
		VendorName:      MakeView("vendor"),
		SerialNumber:    MakeView("SN0001"),
		FirmwareVersion: Version{Major: 1, Minor: 2, Modify: 3, Debug: 4},
	}
	app := &AppInfo{
		AppName:          MakeView("relay"),
		AppID:            MakeView("123"),
		AppKey:           MakeView("key"),
		AppLicense:       MakeView("license"),
		DeveloperAccount: MakeView("dev@example.com"),
	}
	keys := &KeyStoreInfo{
		PrivateKey: MakeBytesView([]byte{0x30, 0x82, 0x01}),
		PublicKey:  MakeBytesView([]byte{0x30, 0x82, 0x02}),
	}
	return dev, app, keys
}

func TestInitNilArguments(t *testing.T) {
	fb, _ := installFake(t)
	dev, app, keys := testIdentity()

	assert.Equal(t, ErrorInvalidArgument, Init(nil, app, keys, nil, false))
	assert.Equal(t, ErrorInvalidArgument, Init(dev, nil, keys, nil, false))
	assert.Equal(t, ErrorInvalidArgument, Init(dev, app, nil, nil, true))
	assert.Zero(t, fb.sdk.initCalls)
	assert.Zero(t, fb.sdk.deInits)
}

func TestInitBuildsOptions(t *testing.T) {
	fb, _ := installFake(t)
	dev, app, keys := testIdentity()

	require.Equal(t, Ok, Init(dev, app, keys, nil, false))
	opts := fb.sdk.lastOpts
	require.NotNil(t, opts)
	assert.Equal(t, "Dock", opts.ProductName)
	assert.Equal(t, "vendor", opts.VendorName)
	assert.Equal(t, "SN0001", opts.SerialNumber)
	assert.Equal(t, FirmwareVersion{1, 2, 3, 4}, opts.FirmwareVersion)
	assert.Equal(t, AppCredentials{
		AppName:          "relay",
		AppID:            "123",
		AppKey:           "key",
		AppLicense:       "license",
		DeveloperAccount: "dev@example.com",
	}, opts.AppInfo)
	assert.Empty(t, opts.Consoles)

	priv, code := opts.KeyStore.RSA2048DERPrivateKey()
	assert.Equal(t, Ok, code)
	assert.Equal(t, []byte{0x30, 0x82, 0x01}, priv)
	pub, code := opts.KeyStore.RSA2048DERPublicKey()
	assert.Equal(t, Ok, code)
	assert.Equal(t, []byte{0x30, 0x82, 0x02}, pub)
}

func TestInitLoggerConsole(t *testing.T) {
	fb, inv := installFake(t)
	dev, app, keys := testIdentity()

	require.Equal(t, Ok, Init(dev, app, keys, &LoggerConfig{Level: 2, SupportColor: true, Output: 0xbeef}, false))
	require.Len(t, fb.sdk.lastOpts.Consoles, 1)
	c := fb.sdk.lastOpts.Consoles[0]
	assert.Equal(t, LogLevelInfo, c.Level)
	assert.True(t, c.SupportColor)

	assert.Equal(t, Ok, c.Output([]byte("hello\r\n")))
	require.Len(t, inv.messages, 1)
	assert.Equal(t, "hello\r\n", string(inv.messages[0]))
}

func TestInitLoggerSkipped(t *testing.T) {
	fb, _ := installFake(t)
	dev, app, keys := testIdentity()

	require.Equal(t, Ok, Init(dev, app, keys, &LoggerConfig{Level: -1, Output: 0xbeef}, false))
	assert.Empty(t, fb.sdk.lastOpts.Consoles)
	require.Equal(t, Ok, Init(dev, app, keys, &LoggerConfig{Level: 3}, false))
	assert.Empty(t, fb.sdk.lastOpts.Consoles)
}

func TestInitRollback(t *testing.T) {
	fb, _ := installFake(t)
	dev, app, keys := testIdentity()
	fb.sdk.initResult = ErrorAuthVerifyFailure

	assert.Equal(t, ErrorAuthVerifyFailure, Init(dev, app, keys, nil, false))
	assert.Zero(t, fb.sdk.deInits)

	// The rollback outcome is discarded; the original code is returned.
	assert.Equal(t, ErrorAuthVerifyFailure, Init(dev, app, keys, nil, true))
	assert.Equal(t, 1, fb.sdk.deInits)
}

func TestInitDeInitCycle(t *testing.T) {
	fb, _ := installFake(t)
	dev, app, keys := testIdentity()

	require.Equal(t, Ok, Init(dev, app, keys, nil, false))
	assert.Equal(t, Ok, DeInit())
	assert.Equal(t, ErrorInvalidOperation, DeInit())
	assert.Equal(t, 2, fb.sdk.deInits)
}

func TestNoBackend(t *testing.T) {
	t.Setenv(EnvBackend, "no-such-backend")
	require.NoError(t, Shutdown())
	t.Cleanup(func() { _ = Shutdown() })

	dev, app, keys := testIdentity()
	assert.Equal(t, ErrorNullPointer, Init(dev, app, keys, nil, false))
	assert.Equal(t, ErrorNullPointer, DeInit())
	assert.Equal(t, ErrorNullPointer, CloudRegisterCustomMsgHandler(1))
	assert.Equal(t, ErrorNullPointer, MediaSetAutoUploadToCloud(true))
	assert.Zero(t, LiveViewNew(7))
	assert.Zero(t, MediaCreateFilesReader())
}

func TestUseBackend(t *testing.T) {
	t.Cleanup(func() { _ = Shutdown() })
	closed := 0
	RegisterBackend("test-registry", func() (*Backend, error) {
		return &Backend{SDK: &fakeSDK{}, Close: func() error { closed++; return nil }}, nil
	})
	assert.Contains(t, Backends(), "test-registry")
	assert.Error(t, UseBackend("missing"))

	require.NoError(t, UseBackend("test-registry"))
	b := ActiveBackend()
	require.NotNil(t, b)
	assert.Equal(t, "test-registry", b.Name)

	require.NoError(t, Shutdown())
	assert.Equal(t, 1, closed)

	t.Setenv(EnvBackend, "test-registry")
	require.NotNil(t, ActiveBackend(), "backend is constructed lazily from the environment")
}
