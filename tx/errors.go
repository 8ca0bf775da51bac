package tx

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates malformed local input (address, hex, curve, length).
	// All other validation sentinels in this package wrap it.
	ErrValidation = errors.New("tx: validation error")

	// ErrInvalidHex indicates a string is not a hexadecimal byte string.
	ErrInvalidHex = fmt.Errorf("%w: invalid hex", ErrValidation)

	// ErrInvalidAddress indicates an address is not 20 bytes.
	ErrInvalidAddress = fmt.Errorf("%w: invalid address", ErrValidation)

	// ErrInvalidCurve indicates an unsupported curve identifier.
	ErrInvalidCurve = fmt.Errorf("%w: invalid curve", ErrValidation)

	// ErrInvalidValidation indicates an unsupported owner validation byte.
	ErrInvalidValidation = fmt.Errorf("%w: invalid validation type", ErrValidation)

	// ErrInvalidValue indicates a missing or zero value where a positive one is required.
	ErrInvalidValue = fmt.Errorf("%w: invalid value", ErrValidation)

	// ErrValueOverflow indicates a value does not fit in 256 bits.
	ErrValueOverflow = fmt.Errorf("%w: value exceeds 256 bits", ErrValidation)

	// ErrIndexTooLarge indicates a storage index longer than 32 bytes.
	ErrIndexTooLarge = fmt.Errorf("%w: index too large", ErrValidation)

	// ErrInvalidDuration indicates a storage duration of zero epochs.
	ErrInvalidDuration = fmt.Errorf("%w: invalid duration", ErrValidation)

	// ErrFeeTooLow indicates an explicit fee below the fee schedule.
	ErrFeeTooLow = fmt.Errorf("%w: fee too low", ErrValidation)

	// ErrDataTooLarge indicates a storage payload larger than MaxDataSize.
	ErrDataTooLarge = errors.New("tx: data too large")

	// ErrDepositTooSmall indicates a deposit that does not cover the two-epoch floor.
	ErrDepositTooSmall = errors.New("tx: deposit too small")

	// ErrEpochInPast indicates an epoch earlier than a record's issue epoch.
	ErrEpochInPast = errors.New("tx: epoch is in the past")

	// ErrInvalidOwner indicates an owner prefix that is not exactly 22 bytes.
	ErrInvalidOwner = errors.New("tx: invalid owner")
)
