package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giftcards/giftprogram"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "devnet", cfg.Network)
	assert.Equal(t, giftprogram.RPCURLDevnet, cfg.RPCURL)
	assert.Equal(t, giftprogram.WSURLDevnet, cfg.WSURL)
	assert.Equal(t, giftprogram.GiftCardProgramID, cfg.ProgramID)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "giftcards.db", cfg.DBPath)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GIFTCARDS_NETWORK", "localnet")
	t.Setenv("GIFTCARDS_PORT", "9090")
	t.Setenv("GIFTCARDS_RPC_URL", "http://custom:8899")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localnet", cfg.Network)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "http://custom:8899", cfg.RPCURL, "explicit URL beats the cluster default")
	assert.Equal(t, giftprogram.WSURLLocalhost, cfg.WSURL, "unset URL falls back to the cluster default")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: testnet\nport: \"3000\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Network)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, giftprogram.RPCURLTestnet, cfg.RPCURL)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_UnknownNetwork(t *testing.T) {
	t.Setenv("GIFTCARDS_NETWORK", "betanet")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown network "betanet"`)
}

func TestLoad_MainnetAliases(t *testing.T) {
	for _, network := range []string{"mainnet", "mainnet-beta"} {
		t.Setenv("GIFTCARDS_NETWORK", network)

		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, giftprogram.RPCURLMainnet, cfg.RPCURL, "network %s", network)
	}
}
