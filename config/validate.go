// Copyright (c) 2024 The libwallet-go developers
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net/url"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validNetworks = map[string]bool{
	"mainnet": true,
	"testnet": true,
	"local":   true,
}

// Validate checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return ErrEmptyDataDir
	}
	if !validNetworks[c.Network] {
		return fmt.Errorf("%w: %q", ErrInvalidNetwork, c.Network)
	}
	if c.ChainID == 0 {
		return ErrInvalidChainID
	}
	if c.RPC.URL != "" {
		if err := validateURL(c.RPC.URL); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRPCURL, err)
		}
	}
	if c.RPC.Timeout < 0 || c.RPC.Backoff < 0 || c.RPC.MaxAttempts < 0 {
		return fmt.Errorf("%w: rpc", ErrInvalidDuration)
	}
	if c.Poll.Interval < 0 || c.Poll.Timeout < 0 {
		return fmt.Errorf("%w: poll", ErrInvalidDuration)
	}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	return nil
}

// validateURL checks that raw is an absolute http(s) URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
