// Package config binds the node's CLI flags to a NodeConfig via
// viper, so every flag is also overridable by a PRISM_-prefixed
// environment variable, matching the teacher's config-binding idiom
// in cmd/gochain.
package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NodeConfig holds every CLI-tunable parameter of a running node.
type NodeConfig struct {
	P2PAddr      string
	APIAddr      string
	KnownPeers   []string
	P2PWorkers   int
	VoterChains  uint32
	VoterDepthK  uint32
	Verbosity    int
}

const envPrefix = "PRISM"

// BindFlags registers the node's flags on cmd and binds each one into
// viper under envPrefix, so every flag can also be set by its
// corresponding PRISM_* environment variable (PRISM_P2P, PRISM_API,
// PRISM_P2P_WORKERS, PRISM_VOTER_CHAINS, PRISM_VOTER_DEPTH_K).
func BindFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("p2p", "127.0.0.1:6000", "address of the P2P server")
	cmd.PersistentFlags().String("api", "127.0.0.1:7000", "address of the API server")
	cmd.PersistentFlags().StringSliceP("connect", "c", nil, "peers to connect to at start (repeatable)")
	cmd.PersistentFlags().Int("p2p-workers", 4, "number of worker goroutines for the P2P server")
	cmd.PersistentFlags().Uint32("voter-chains", 40, "number of voter chains")
	cmd.PersistentFlags().Uint32("voter-depth-k", 2, "depth of votes before the ledger manager can confirm a leader")
	cmd.PersistentFlags().CountP("verbose", "v", "increase log verbosity (repeatable)")

	v := viper.GetViper()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	_ = v.BindPFlag("p2p", cmd.PersistentFlags().Lookup("p2p"))
	_ = v.BindPFlag("api", cmd.PersistentFlags().Lookup("api"))
	_ = v.BindPFlag("connect", cmd.PersistentFlags().Lookup("connect"))
	_ = v.BindPFlag("p2p-workers", cmd.PersistentFlags().Lookup("p2p-workers"))
	_ = v.BindPFlag("voter-chains", cmd.PersistentFlags().Lookup("voter-chains"))
	_ = v.BindPFlag("voter-depth-k", cmd.PersistentFlags().Lookup("voter-depth-k"))
	_ = v.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
}

// Load reads the bound flags (and any overriding environment
// variables) back out of viper into a NodeConfig.
func Load() *NodeConfig {
	v := viper.GetViper()
	return &NodeConfig{
		P2PAddr:     v.GetString("p2p"),
		APIAddr:     v.GetString("api"),
		KnownPeers:  v.GetStringSlice("connect"),
		P2PWorkers:  v.GetInt("p2p-workers"),
		VoterChains: v.GetUint32("voter-chains"),
		VoterDepthK: v.GetUint32("voter-depth-k"),
		Verbosity:   v.GetInt("verbose"),
	}
}
