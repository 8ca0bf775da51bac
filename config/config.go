// Copyright (c) 2024 The libwallet-go developers
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package config loads the library's YAML configuration file and builds the
// root logger from it.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/alicenetorg/libwallet-go/network"
)

const (
	// DefaultChainID is the chain id of a local development ledger.
	DefaultChainID = 42

	// DefaultPollInterval is how often a pending transaction is checked.
	DefaultPollInterval = 2 * time.Second

	// DefaultPollTimeout bounds how long a pending transaction is waited for.
	DefaultPollTimeout = 2 * time.Minute

	configFileName = "config.yaml"
)

// PollConfig controls waiting for a broadcast transaction to be mined.
type PollConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// Config is the library configuration.
type Config struct {
	ChainID  uint32            `yaml:"chain_id"`
	Network  string            `yaml:"network"`
	RPC      network.RPCConfig `yaml:"rpc"`
	Poll     PollConfig        `yaml:"poll"`
	DataDir  string            `yaml:"data_dir"`
	LogLevel string            `yaml:"log_level"`
}

// DefaultDataDir returns ~/.libwallet, or .libwallet in the working
// directory when the home directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".libwallet"
	}
	return filepath.Join(home, ".libwallet")
}

// DefaultConfig returns a configuration for a local ledger.
func DefaultConfig() Config {
	return Config{
		ChainID: DefaultChainID,
		Network: "local",
		RPC: network.RPCConfig{
			Timeout:     network.DefaultTimeout,
			MaxAttempts: network.DefaultMaxAttempts,
			Backoff:     network.DefaultBackoff,
		},
		Poll: PollConfig{
			Interval: DefaultPollInterval,
			Timeout:  DefaultPollTimeout,
		},
		DataDir:  DefaultDataDir(),
		LogLevel: "info",
	}
}

// ConfigPath returns the configuration file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, configFileName)
}

// JournalPath returns the transaction journal path inside the data directory.
func (c Config) JournalPath() string {
	return filepath.Join(c.DataDir, "journal.db")
}

// Load reads the YAML file at path. Keys absent from the file keep their
// DefaultConfig values; unknown keys are ignored. Load does not validate.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// ResolveRPC layers environment variables and the file's rpc section over
// the network presets.
func (c Config) ResolveRPC(env map[string]string) (*network.RPCConfig, error) {
	return network.ResolveConfig(&c.RPC, env, c.Network)
}

// NewLogger returns a timestamped logger writing to w at level.
// A nil w writes to stderr.
func NewLogger(level string, w io.Writer) (zerolog.Logger, error) {
	if !validLogLevels[strings.ToLower(level)] {
		return zerolog.Nop(), fmt.Errorf("%w: %q", ErrInvalidLogLevel, level)
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
	}
	if w == nil {
		w = os.Stderr
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
