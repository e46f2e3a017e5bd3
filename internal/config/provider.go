package config

import (
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/steadifi/contract-harness/internal/domain"
	"github.com/steadifi/contract-harness/internal/domain/config"
)

// LocalNetworkName names the network served by the local node.
const LocalNetworkName = "local"

// RuntimeConfig is re-exported so wire providers in this package read naturally.
type RuntimeConfig = config.RuntimeConfig

// legacyEnv maps config keys to the unprefixed variables test suites already export.
var legacyEnv = map[string]string{
	"use_local_default": "USE_LOCAL_DEFAULT",
	"client_url":        "CLIENT_URL",
	"chain_id":          "CHAIN_ID",
	"artifacts_path":    "ARTIFACTS_PATH",
	"scripts_path":      "SCRIPTS_PATH",
	"disable_rebuild":   "DISABLE_REBUILD",
	"local_node":        "LOCAL_NODE",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	harnessFile, err := loadHarnessFile(projectRoot)
	if err != nil {
		return nil, err
	}
	if harnessFile != nil {
		applyFileDefaults(v, harnessFile)
	}

	useLocal, err := parseToggle("USE_LOCAL_DEFAULT", v.GetString("use_local_default"), true)
	if err != nil {
		return nil, err
	}
	disableRebuild, err := parseToggle("DISABLE_REBUILD", v.GetString("disable_rebuild"), false)
	if err != nil {
		return nil, err
	}
	localNode, err := parseToggle("LOCAL_NODE", v.GetString("local_node"), false)
	if err != nil {
		return nil, err
	}

	fundAmount, ok := new(big.Int).SetString(v.GetString("fund_wei"), 10)
	if !ok || fundAmount.Sign() < 0 {
		return nil, fmt.Errorf("%w: fund_wei must be a non-negative integer, got %q", domain.ErrInvalidConfig, v.GetString("fund_wei"))
	}

	port := v.GetString("node_port")
	cfg := &RuntimeConfig{
		ProjectRoot:     projectRoot,
		StatePath:       resolvePath(projectRoot, v.GetString("state_file")),
		UseLocalDefault: useLocal,
		ArtifactsPath:   resolvePath(projectRoot, v.GetString("artifacts_path")),
		ScriptsPath:     resolvePath(projectRoot, v.GetString("scripts_path")),
		DisableRebuild:  disableRebuild,
		Node: config.NodeConfig{
			Managed: localNode,
			Binary:  v.GetString("node_binary"),
			Port:    port,
			ChainID: v.GetUint64("node_chain_id"),
			PidFile: filepath.Join(os.TempDir(), fmt.Sprintf("harness-anvil-%s.pid", port)),
			LogFile: filepath.Join(os.TempDir(), fmt.Sprintf("harness-anvil-%s.log", port)),
		},
		Deployer:    v.GetString("deployer"),
		FundAmount:  fundAmount,
		Debug:       v.GetBool("debug"),
		JSON:        v.GetBool("json"),
		Timeout:     v.GetDuration("timeout"),
		MetricsFile: v.GetString("metrics_file"),
	}
	if harnessFile != nil {
		cfg.ConfigFile = filepath.Join(projectRoot, HarnessFileName)
	}

	cfg.Network, err = resolveNetwork(v, harnessFile, cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// resolveNetwork picks the chain endpoint. An explicit --network wins, then
// USE_LOCAL_DEFAULT=TRUE selects the local node, otherwise CLIENT_URL and
// CHAIN_ID must both be set.
func resolveNetwork(v *viper.Viper, hf *HarnessFile, cfg *RuntimeConfig) (*config.Network, error) {
	if name := v.GetString("network"); name != "" {
		if name == LocalNetworkName {
			return localNetwork(cfg.Node), nil
		}
		if hf != nil {
			if n, ok := hf.Networks[name]; ok {
				return &config.Network{Name: name, RPCURL: n.RPCURL, ChainID: n.ChainID}, nil
			}
		}
		return nil, fmt.Errorf("%w: network %q is not defined in %s", domain.ErrInvalidConfig, name, HarnessFileName)
	}

	if cfg.UseLocalDefault {
		return localNetwork(cfg.Node), nil
	}

	url := v.GetString("client_url")
	rawChainID := v.GetString("chain_id")
	if url == "" || rawChainID == "" {
		return nil, fmt.Errorf("%w: USE_LOCAL_DEFAULT=FALSE requires CLIENT_URL and CHAIN_ID", domain.ErrInvalidConfig)
	}
	chainID, err := strconv.ParseUint(rawChainID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: CHAIN_ID must be numeric, got %q", domain.ErrInvalidConfig, rawChainID)
	}
	return &config.Network{Name: "custom", RPCURL: url, ChainID: chainID}, nil
}

func localNetwork(node config.NodeConfig) *config.Network {
	return &config.Network{
		Name:    LocalNetworkName,
		RPCURL:  "http://127.0.0.1:" + node.Port,
		ChainID: node.ChainID,
	}
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// FindProjectRoot walks up from the current directory to find harness.toml.
// Without one, the current directory is the project root.
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		if _, err := os.Stat(filepath.Join(dir, HarnessFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance. cmd may be nil when
// the harness is built from a test binary instead of the CLI.
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	loadDotEnv(projectRoot)

	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("HARNESS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	for key, env := range legacyEnv {
		_ = v.BindEnv(key, env)
	}

	// Set defaults
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("state_file", ".tmp_context")
	v.SetDefault("artifacts_path", "out")
	v.SetDefault("scripts_path", "scripts")
	v.SetDefault("node_binary", "anvil")
	v.SetDefault("node_port", "8545")
	v.SetDefault("node_chain_id", 31337)
	v.SetDefault("deployer", "test1")
	v.SetDefault("fund_wei", "1000000000000000000000")
	v.SetDefault("timeout", "5m")
	v.SetDefault("debug", false)
	v.SetDefault("json", false)

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Name == "help" {
				return
			}
			err := v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
			if err != nil {
				panic(err)
			}
		})
	}

	return v
}
