package network

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// DefaultTimeout bounds a single request to the node.
	DefaultTimeout = 8 * time.Second
	// DefaultMaxAttempts is the number of tries before a request fails.
	DefaultMaxAttempts = 5
	// DefaultBackoff is the delay before the first retry.
	DefaultBackoff = time.Second
	// BackoffMultiplier grows the delay between retries.
	BackoffMultiplier = 1.25
)

// RPCConfig holds the connection parameters for a ledger node's HTTP API.
type RPCConfig struct {
	URL         string        `json:"url" yaml:"url"`
	Network     string        `json:"network" yaml:"network"`
	Timeout     time.Duration `json:"timeout" yaml:"timeout"`
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	Backoff     time.Duration `json:"backoff" yaml:"backoff"`
}

// NetworkPresets contains default endpoints for local networks.
// Mainnet is intentionally omitted to require explicit configuration.
var NetworkPresets = map[string]RPCConfig{
	"local":   {URL: "http://localhost:8884/v1/"},
	"testnet": {URL: "http://localhost:8884/v1/"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. explicit overrides
//  2. environment variables (LIBWALLET_RPC_URL, LIBWALLET_RPC_TIMEOUT, LIBWALLET_RPC_ATTEMPTS)
//  3. network presets
//
// Unset numeric fields fall back to the package defaults.
func ResolveConfig(overrides *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v := env["LIBWALLET_RPC_URL"]; v != "" {
			result.URL = v
		}
		if v := env["LIBWALLET_RPC_TIMEOUT"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("network: LIBWALLET_RPC_TIMEOUT: %w", err)
			}
			result.Timeout = d
		}
		if v := env["LIBWALLET_RPC_ATTEMPTS"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("network: LIBWALLET_RPC_ATTEMPTS: %w", err)
			}
			result.MaxAttempts = n
		}
	}

	if overrides != nil {
		if overrides.URL != "" {
			result.URL = overrides.URL
		}
		if overrides.Timeout > 0 {
			result.Timeout = overrides.Timeout
		}
		if overrides.MaxAttempts > 0 {
			result.MaxAttempts = overrides.MaxAttempts
		}
		if overrides.Backoff > 0 {
			result.Backoff = overrides.Backoff
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("network: %s requires explicit RPC configuration (set LIBWALLET_RPC_URL or config file)", network)
	}
	result.applyDefaults()
	return &result, nil
}

func (c *RPCConfig) applyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.Backoff <= 0 {
		c.Backoff = DefaultBackoff
	}
}
