// Copyright (c) 2024 The libwallet-go developers
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

var (
	// ErrInvalidNetwork indicates the network name is not recognized.
	ErrInvalidNetwork = fmt.Errorf("%w: network must be \"mainnet\", \"testnet\", or \"local\"", ErrInvalidConfig)

	// ErrInvalidChainID indicates a zero chain id.
	ErrInvalidChainID = fmt.Errorf("%w: chain id must be positive", ErrInvalidConfig)

	// ErrInvalidRPCURL indicates the node URL is malformed.
	ErrInvalidRPCURL = fmt.Errorf("%w: invalid rpc url", ErrInvalidConfig)

	// ErrInvalidDuration indicates a negative timeout, backoff or poll setting.
	ErrInvalidDuration = fmt.Errorf("%w: durations and attempt counts must not be negative", ErrInvalidConfig)

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = fmt.Errorf("%w: log level must be \"debug\", \"info\", \"warn\", or \"error\"", ErrInvalidConfig)

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = fmt.Errorf("%w: data directory must not be empty", ErrInvalidConfig)
)

// ErrConfigNotFound indicates the configuration file does not exist.
var ErrConfigNotFound = errors.New("config: configuration file not found")
