// Package config loads the node's environment-variable configuration.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ellipticoin-labs/ellipticoind/pkg/utils"
)

// Config is the node's full runtime configuration (spec.md §6 Environment
// variables).
type Config struct {
	Web3URL        string `mapstructure:"web3_url"`
	Host           string `mapstructure:"host"`
	HashOnionSize  int    `mapstructure:"hash_onion_size"`
	EnableMiner    bool   `mapstructure:"enable_miner"`
	GenesisNode    bool   `mapstructure:"genesis_node"`
	PrivateKey     string `mapstructure:"private_key"`
	DBPath         string `mapstructure:"db_path"`
	NetworkID      uint64 `mapstructure:"network_id"`
	MinerAllowList string `mapstructure:"miner_allow_list"`
	BridgeContract string `mapstructure:"bridge_contract"`
}

// MinerAllowListHexes splits the comma-separated MINER_ALLOW_LIST
// environment variable into its individual hex addresses.
func (c Config) MinerAllowListHexes() []string {
	if c.MinerAllowList == "" {
		return nil
	}
	parts := strings.Split(c.MinerAllowList, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// defaultHashOnionSize is 365.25 days of 4-second blocks
// (7,889,400 × 4 s = 31,557,600 s) (spec.md §4.N).
const defaultHashOnionSize = 7_889_400

// defaultBridgeContract is the Ethereum-mainnet bridge contract the
// peerchain poller watches by default (spec.md §4.M, §6).
const defaultBridgeContract = "0xE55faDE7825Ad88581507C51c9f1b33827AaE5E8"

// AppConfig holds the configuration loaded via Load.
var AppConfig Config

// Load reads a .env file if present (ignored if absent, since production
// deployments set real environment variables instead), binds every known
// key to its environment variable, applies defaults, and unmarshals into
// AppConfig.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("host", "")
	v.SetDefault("hash_onion_size", defaultHashOnionSize)
	v.SetDefault("enable_miner", false)
	v.SetDefault("genesis_node", false)
	v.SetDefault("db_path", "./db")
	v.SetDefault("network_id", uint64(1))
	v.SetDefault("bridge_contract", defaultBridgeContract)

	for _, key := range []string{"web3_url", "host", "hash_onion_size", "enable_miner", "genesis_node", "private_key", "db_path", "network_id", "miner_allow_list", "bridge_contract"} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("bind env %s", key))
		}
	}
	v.AutomaticEnv()

	if err := v.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	if AppConfig.Web3URL == "" {
		return nil, fmt.Errorf("config: WEB3_URL is required")
	}
	return &AppConfig, nil
}
