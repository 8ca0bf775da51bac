package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMainnetHasNoPreset(t *testing.T) {
	_, ok := NetworkPresets["mainnet"]
	assert.False(t, ok, "mainnet should not have a default preset")

	_, err := ResolveConfig(nil, nil, "mainnet")
	assert.Error(t, err)
}

func TestResolveConfigLayers(t *testing.T) {
	tests := []struct {
		name      string
		overrides *RPCConfig
		env       map[string]string
		network   string
		wantURL   string
		wantTries int
		wantTime  time.Duration
	}{
		{"preset only", nil, nil, "local", "http://localhost:8884/v1/", DefaultMaxAttempts, DefaultTimeout},
		{"env overrides preset", nil,
			map[string]string{"LIBWALLET_RPC_URL": "http://env:1/", "LIBWALLET_RPC_ATTEMPTS": "2", "LIBWALLET_RPC_TIMEOUT": "3s"},
			"local", "http://env:1/", 2, 3 * time.Second},
		{"overrides beat env", &RPCConfig{URL: "http://flag:2/", MaxAttempts: 7},
			map[string]string{"LIBWALLET_RPC_URL": "http://env:1/"},
			"mainnet", "http://flag:2/", 7, DefaultTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveConfig(tt.overrides, tt.env, tt.network)
			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, cfg.URL)
			assert.Equal(t, tt.wantTries, cfg.MaxAttempts)
			assert.Equal(t, tt.wantTime, cfg.Timeout)
			assert.Equal(t, DefaultBackoff, cfg.Backoff)
			assert.Equal(t, tt.network, cfg.Network)
		})
	}
}

func TestResolveConfigBadEnv(t *testing.T) {
	_, err := ResolveConfig(nil, map[string]string{"LIBWALLET_RPC_ATTEMPTS": "many"}, "local")
	assert.Error(t, err)
	_, err = ResolveConfig(nil, map[string]string{"LIBWALLET_RPC_TIMEOUT": "soon"}, "local")
	assert.Error(t, err)
}
