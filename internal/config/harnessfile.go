package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
)

// HarnessFileName is the optional project configuration file.
const HarnessFileName = "harness.toml"

// HarnessFile represents the raw harness.toml structure
type HarnessFile struct {
	StateFile     string                 `toml:"state_file"`
	ArtifactsPath string                 `toml:"artifacts_path"`
	ScriptsPath   string                 `toml:"scripts_path"`
	Networks      map[string]NetworkFile `toml:"networks"`
	Node          NodeFile               `toml:"node"`
	Accounts      AccountsFile           `toml:"accounts"`
}

// NetworkFile is one [networks.<name>] table.
type NetworkFile struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID uint64 `toml:"chain_id"`
}

// NodeFile is the [node] table.
type NodeFile struct {
	Binary  string `toml:"binary"`
	Port    string `toml:"port"`
	ChainID uint64 `toml:"chain_id"`
}

// AccountsFile is the [accounts] table.
type AccountsFile struct {
	Deployer string `toml:"deployer"`
	FundWei  string `toml:"fund_wei"`
}

// loadHarnessFile loads and parses harness.toml if it exists.
// Returns (nil, nil) when the file does not exist.
func loadHarnessFile(projectRoot string) (*HarnessFile, error) {
	path := filepath.Join(projectRoot, HarnessFileName)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var hf HarnessFile
	if _, err := toml.DecodeFile(path, &hf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", HarnessFileName, err)
	}

	hf.StateFile = os.ExpandEnv(hf.StateFile)
	hf.ArtifactsPath = os.ExpandEnv(hf.ArtifactsPath)
	hf.ScriptsPath = os.ExpandEnv(hf.ScriptsPath)
	hf.Node.Binary = os.ExpandEnv(hf.Node.Binary)
	hf.Accounts.FundWei = os.ExpandEnv(hf.Accounts.FundWei)
	for name, network := range hf.Networks {
		network.RPCURL = os.ExpandEnv(network.RPCURL)
		hf.Networks[name] = network
	}

	return &hf, nil
}

// applyFileDefaults layers harness.toml values above built-in defaults,
// so environment variables and flags still win.
func applyFileDefaults(v *viper.Viper, hf *HarnessFile) {
	setIf := func(key, value string) {
		if value != "" {
			v.SetDefault(key, value)
		}
	}
	setIf("state_file", hf.StateFile)
	setIf("artifacts_path", hf.ArtifactsPath)
	setIf("scripts_path", hf.ScriptsPath)
	setIf("node_binary", hf.Node.Binary)
	setIf("node_port", hf.Node.Port)
	setIf("deployer", hf.Accounts.Deployer)
	setIf("fund_wei", hf.Accounts.FundWei)
	if hf.Node.ChainID != 0 {
		v.SetDefault("node_chain_id", hf.Node.ChainID)
	}
}
