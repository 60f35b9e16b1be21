package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// NetworkTarget is the compile-time-selected network name. The upstream
// compiler gates several constant tables (address prefixes, finalizer cost
// limits) behind a feature flag per network; here it is a single field
// carried in Config rather than a conditional-compilation axis (spec §9
// Open Question).
type NetworkTarget string

const (
	NetworkTestnet NetworkTarget = "testnet"
	NetworkMainnet NetworkTarget = "mainnet"
	NetworkCanary  NetworkTarget = "canary"
)

// Config is the compile session's configuration, loadable from a YAML
// file alongside the Leo program (mirrors the teacher's yaml.v3-backed
// manifest/benchmark-spec loading).
type Config struct {
	Network NetworkTarget `yaml:"network"`

	// ConstGenericExpansionLimit bounds how many distinct const-argument
	// tuples a single inline function may be monomorphized into, guarding
	// against pathological expansion.
	ConstGenericExpansionLimit int `yaml:"const_generic_expansion_limit"`

	// FinalizerCostWarnLimit is the soft instruction-count ceiling past
	// which code generation emits an informational cost warning for an
	// async function body (see SPEC_FULL.md "Supplemented features" #1).
	FinalizerCostWarnLimit int `yaml:"finalizer_cost_warn_limit"`
}

// DefaultConfig returns the configuration used when no YAML file is given.
func DefaultConfig() Config {
	return Config{
		Network:                    NetworkTestnet,
		ConstGenericExpansionLimit: 64,
		FinalizerCostWarnLimit:     10000,
	}
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	switch cfg.Network {
	case NetworkTestnet, NetworkMainnet, NetworkCanary:
	default:
		return cfg, fmt.Errorf("unknown network target %q", cfg.Network)
	}
	return cfg, nil
}
