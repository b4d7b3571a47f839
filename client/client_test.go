package client

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thesyncim/edge"
	"github.com/thesyncim/edge/sim"
)

// useSim installs a sim backend serving mediaDir. Keys are not verified
// unless verifyKeys is set.
func useSim(t *testing.T, mediaDir string, verifyKeys bool) *sim.SDK {
	t.Helper()
	cfg := fmt.Sprintf("verify_keys = %v\n", verifyKeys)
	if mediaDir != "" {
		cfg += fmt.Sprintf("[media]\ndir = %q\n", mediaDir)
	}
	path := filepath.Join(t.TempDir(), "sim.toml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	t.Setenv(sim.EnvConfig, path)

	require.NoError(t, edge.UseBackend(sim.BackendName))
	t.Cleanup(func() {
		if Initialized() {
			_ = DeInitSDK()
		}
		_ = edge.Shutdown()
	})
	s, ok := edge.ActiveBackend().SDK.(*sim.SDK)
	require.True(t, ok)
	return s
}

func testConfig() Config {
	return Config{
		ProductName:     "Edge-1.0",
		VendorName:      "Vendor",
		SerialNumber:    "SN0001",
		FirmwareVersion: [4]uint8{0, 1, 0, 0},
		App: AppInfo{
			Name:             "app",
			ID:               "id",
			Key:              "key",
			License:          "license",
			DeveloperAccount: "dev",
		},
		PrivateKey: []byte("private"),
		PublicKey:  []byte("public"),
	}
}

func initClient(t *testing.T, mediaDir string) *sim.SDK {
	t.Helper()
	s := useSim(t, mediaDir, false)
	require.NoError(t, InitSDK(testConfig()))
	return s
}
