// Package config loads service settings from environment variables
// (GIFTCARDS_*), an optional yaml file, and cluster defaults, in that order
// of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"giftcards/giftprogram"
)

// Config - Runtime settings for the gift card service
type Config struct {
	Network   string `mapstructure:"network"`    // devnet, testnet, mainnet-beta, localnet
	RPCURL    string `mapstructure:"rpc_url"`    // empty = cluster default
	WSURL     string `mapstructure:"ws_url"`     // empty = cluster default
	ProgramID string `mapstructure:"program_id"` // empty = canonical deployment
	Port      string `mapstructure:"port"`
	DBPath    string `mapstructure:"db_path"`
}

// Load - Read settings from the optional file path and the environment.
// An unknown network name is an error, not a silent devnet fallback.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("network", "devnet")
	v.SetDefault("rpc_url", "")
	v.SetDefault("ws_url", "")
	v.SetDefault("program_id", giftprogram.GiftCardProgramID)
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "giftcards.db")

	v.SetEnvPrefix("GIFTCARDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	rpcURL, wsURL, err := clusterEndpoints(cfg.Network)
	if err != nil {
		return nil, err
	}
	if cfg.RPCURL == "" {
		cfg.RPCURL = rpcURL
	}
	if cfg.WSURL == "" {
		cfg.WSURL = wsURL
	}
	return &cfg, nil
}

// clusterEndpoints - Default RPC/WS endpoints for a named cluster
func clusterEndpoints(network string) (string, string, error) {
	switch network {
	case "devnet":
		return giftprogram.RPCURLDevnet, giftprogram.WSURLDevnet, nil
	case "testnet":
		return giftprogram.RPCURLTestnet, giftprogram.WSURLTestnet, nil
	case "mainnet", "mainnet-beta":
		return giftprogram.RPCURLMainnet, giftprogram.WSURLMainnet, nil
	case "localnet", "localhost":
		return giftprogram.RPCURLLocalhost, giftprogram.WSURLLocalhost, nil
	default:
		return "", "", errors.Errorf("unknown network %q (want devnet, testnet, mainnet-beta or localnet)", network)
	}
}
