package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3sale/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, "127.0.0.1:8545", cfg.Listen)
	assert.Equal(t, "60-M", cfg.RateLimit)
	assert.Equal(t, config.KeystoreSystem, cfg.Keystore)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataPath())
	assert.Equal(t, filepath.Join(dir, "data", "journal"), cfg.JournalPath())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
	assert.Equal(t, filepath.Join(dir, "contracts.json"), cfg.ContractsPath())
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	cfg.DefaultWallet = "deployer"
	cfg.ChainID = 1337
	cfg.DataDir = filepath.Join(dir, "elsewhere")
	cfg.Keystore = config.KeystoreFile
	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "deployer", reloaded.DefaultWallet)
	assert.Equal(t, int64(1337), reloaded.ChainID)
	assert.Equal(t, filepath.Join(dir, "elsewhere"), reloaded.DataPath())
	assert.Equal(t, config.KeystoreFile, reloaded.Keystore)
}

func TestLoadCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	_, err := config.Load(dir)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadRejectsBadValues(t *testing.T) {
	for name, body := range map[string]string{
		"chain id": `{"chain_id": 0, "keystore": "system"}`,
		"keystore": `{"chain_id": 1, "keystore": "vault"}`,
		"syntax":   `{`,
	} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o600))
			_, err := config.Load(dir)
			assert.Error(t, err)
		})
	}
}

func TestDefaultDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, dir)

	got, err := config.DefaultDir()
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.Dir())
}

func TestNodeURL(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	t.Setenv(config.EnvNode, "")
	assert.Empty(t, cfg.NodeURL())

	cfg.Node = "http://127.0.0.1:8545/rpc"
	assert.Equal(t, "http://127.0.0.1:8545/rpc", cfg.NodeURL())

	t.Setenv(config.EnvNode, "http://node:9000/rpc")
	assert.Equal(t, "http://node:9000/rpc", cfg.NodeURL())
}
