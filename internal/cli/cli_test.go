package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutu-network/proverd/internal/config"
	"github.com/tutu-network/proverd/internal/security"
)

func TestKeygenCmd_GeneratesAndPrintsPublicKey(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PROVERD_HOME", home)

	var out bytes.Buffer
	keygenCmd.SetOut(&out)
	err := runKeygen(keygenCmd, nil)
	require.NoError(t, err)

	keys, err := security.LoadOrCreateKeypair(home)
	require.NoError(t, err)
	assert.Equal(t, keys.PublicKeyHex()+"\n", out.String())
}

func TestVersionCmd_PrintsConfiguredVersion(t *testing.T) {
	rootCmd.Version = "test-version"
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	err := rootCmd.Execute()
	require.NoError(t, err)
	assert.Equal(t, "test-version\n", out.String())
}

func TestResolveWorkerCount_FlagOverridesConfig(t *testing.T) {
	startWorkers = 5
	defer func() { startWorkers = 0 }()

	cfg := config.DefaultConfig()
	cfg.Worker.Count = 2
	assert.Equal(t, 5, resolveWorkerCount(cfg))
}

func TestResolveWorkerCount_FallsBackToConfig(t *testing.T) {
	startWorkers = 0

	cfg := config.DefaultConfig()
	cfg.Worker.Count = 3
	assert.Equal(t, 3, resolveWorkerCount(cfg))
}

func TestResolveGeoDBPath_FlagOverridesConfig(t *testing.T) {
	startGeoDB = "/flag/path.mmdb"
	defer func() { startGeoDB = "" }()

	cfg := config.DefaultConfig()
	cfg.Geo.MMDBPath = "/config/path.mmdb"
	assert.Equal(t, "/flag/path.mmdb", resolveGeoDBPath(cfg))
}

func TestResolveGeoDBPath_FallsBackToConfig(t *testing.T) {
	startGeoDB = ""

	cfg := config.DefaultConfig()
	cfg.Geo.MMDBPath = "/config/path.mmdb"
	assert.Equal(t, "/config/path.mmdb", resolveGeoDBPath(cfg))
}
