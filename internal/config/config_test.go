package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuswallet/core/internal/config"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	cfg := config.Defaults()
	cfg.Electrum.Host = "electrum.example.com"
	cfg.Wallet.NetworkType = config.Testnet
	cfg.Output.Verbose = true

	err := config.Save(cfg, path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.Electrum.Host, loaded.Electrum.Host)
	assert.Equal(t, cfg.Wallet.NetworkType, loaded.Wallet.NetworkType)
	assert.Equal(t, cfg.Output.Verbose, loaded.Output.Verbose)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "~/.walletcore", cfg.Home)
	assert.Equal(t, config.DefaultElectrumHost, cfg.Electrum.Host)
	assert.Equal(t, config.DefaultElectrumPort, cfg.Electrum.Port)
	assert.True(t, cfg.Electrum.SSL)
	assert.Equal(t, config.Mainnet, cfg.Wallet.NetworkType)
	assert.Equal(t, config.DefaultGapLimit, cfg.Wallet.GapLimit)
	assert.True(t, cfg.Wallet.AutoRotateReceive)
	assert.True(t, cfg.Wallet.UseNewTxPipeline)
	assert.True(t, cfg.Security.MemoryLock)
	assert.Equal(t, "auto", cfg.Output.DefaultFormat)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()
	_, err := config.Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	err := os.WriteFile(path, []byte("invalid: yaml: content: ["), 0o600)
	require.NoError(t, err)

	_, err = config.Load(path)
	assert.Error(t, err)
}

func TestSave_CreatesDirectory(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "subdir", "config.yaml")

	cfg := config.Defaults()
	err := config.Save(cfg, path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestConfigPath(t *testing.T) {
	t.Parallel()
	path := config.Path("/home/user/.walletcore")
	assert.Equal(t, "/home/user/.walletcore/config.yaml", path)
}

func TestDefaultHome(t *testing.T) {
	t.Parallel()
	home := config.DefaultHome()
	assert.Contains(t, home, ".walletcore")
}
