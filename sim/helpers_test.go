package sim

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/thesyncim/edge"
)

var (
	keysOnce sync.Once
	testKey  *rsa.PrivateKey
	otherKey *rsa.PrivateKey
	keysErr  error
)

func testKeys(t *testing.T) (*rsa.PrivateKey, *rsa.PrivateKey) {
	t.Helper()
	keysOnce.Do(func() {
		testKey, keysErr = rsa.GenerateKey(rand.Reader, RSAKeyBits)
		if keysErr != nil {
			return
		}
		otherKey, keysErr = rsa.GenerateKey(rand.Reader, RSAKeyBits)
	})
	require.NoError(t, keysErr)
	return testKey, otherKey
}

type keyStore struct {
	priv, pub []byte
	code      edge.ErrorCode
}

func (k keyStore) RSA2048DERPrivateKey() ([]byte, edge.ErrorCode) { return k.priv, k.code }
func (k keyStore) RSA2048DERPublicKey() ([]byte, edge.ErrorCode)  { return k.pub, edge.Ok }

func validKeyStore(t *testing.T) keyStore {
	t.Helper()
	key, _ := testKeys(t)
	pub, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return keyStore{priv: x509.MarshalPKCS1PrivateKey(key), pub: pub}
}

func testOptions(t *testing.T, consoles ...edge.LoggerConsole) *edge.Options {
	t.Helper()
	return &edge.Options{
		ProductName:     "Edge-1.0",
		VendorName:      "Vendor",
		SerialNumber:    "SN0000100010101",
		FirmwareVersion: edge.FirmwareVersion{0, 1, 0, 0},
		AppInfo: edge.AppCredentials{
			AppName: "app", AppID: "id", AppKey: "key", AppLicense: "license",
			DeveloperAccount: "dev",
		},
		Consoles: consoles,
		KeyStore: validKeyStore(t),
	}
}

// newTestSDK returns an SDK tuned for fast tests, closed on cleanup.
func newTestSDK(t *testing.T, mutate func(*Config)) *SDK {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Stream.FrameInterval = time.Millisecond
	cfg.Stream.StatusInterval = 20 * time.Millisecond
	cfg.Cloud.DialTimeout = time.Second
	if mutate != nil {
		mutate(cfg)
	}
	s := New(cfg)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func initSDK(t *testing.T, s *SDK) {
	t.Helper()
	require.Equal(t, edge.Ok, s.Init(testOptions(t)))
}

// lineConsole collects console output.
type lineConsole struct {
	mu    sync.Mutex
	lines []string
}

func (c *lineConsole) output(line []byte) edge.ErrorCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(line))
	return edge.Ok
}

func (c *lineConsole) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}
