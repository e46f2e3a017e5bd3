package config

import (
	"math/big"
	"time"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	StatePath   string // registry state file, ./.tmp_context by default

	// Chain settings
	Network         *Network
	UseLocalDefault bool

	// Build settings
	ArtifactsPath  string
	ScriptsPath    string
	DisableRebuild bool

	// Local node, managed only when LOCAL_NODE=TRUE
	Node NodeConfig

	// Accounts
	Deployer   string   // wallet that uploads artifacts during setup
	FundAmount *big.Int // wei given to every test wallet on a managed node

	// Execution settings
	Debug       bool
	JSON        bool
	Timeout     time.Duration
	MetricsFile string

	// Config source tracking
	ConfigFile string // harness.toml path, empty when absent
}

// Network represents network configuration
type Network struct {
	Name    string `json:"name"`
	RPCURL  string `json:"rpcUrl"`
	ChainID uint64 `json:"chainId"`
}

// NodeConfig describes the local anvil node the harness may manage.
type NodeConfig struct {
	Managed bool
	Binary  string
	Port    string
	ChainID uint64
	PidFile string
	LogFile string
}
