package tx

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// MaxDataSize is the largest storage payload in bytes.
	MaxDataSize = 2097152
	// BaseDataSize is the fixed per-record overhead charged on top of the payload.
	BaseDataSize = 376
	// EpochLength is the number of blocks in an epoch.
	EpochLength = 1024
	// EpochBoundary is the height within an epoch after which new records are
	// issued at the following epoch.
	EpochBoundary = 960
	// MaxUTXOs is the largest number of units fetched in one ledger request.
	MaxUTXOs = 255
)

// MaxValue is the largest representable value, 2^256-1.
var MaxValue = new(uint256.Int).Not(new(uint256.Int))

// epochCost returns len(data)+BaseDataSize, the price of one epoch of storage.
func epochCost(data []byte) (*uint256.Int, error) {
	if len(data) > MaxDataSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", ErrDataTooLarge, len(data), MaxDataSize)
	}
	return uint256.NewInt(uint64(len(data)) + BaseDataSize), nil
}

// MinimumDeposit returns the deposit needed to store data for duration
// epochs: (len(data)+BaseDataSize) * (2+duration).
func MinimumDeposit(data []byte, duration uint64) (*uint256.Int, error) {
	cost, err := epochCost(data)
	if err != nil {
		return nil, fmt.Errorf("minimum deposit: %w", err)
	}
	epochs := new(uint256.Int).AddUint64(uint256.NewInt(duration), 2)
	deposit, overflow := new(uint256.Int).MulOverflow(cost, epochs)
	if overflow {
		return nil, fmt.Errorf("minimum deposit: %w", ErrValueOverflow)
	}
	return deposit, nil
}

// NumEpochsCovered returns how many epochs beyond the two-epoch floor a
// deposit pays for.
func NumEpochsCovered(data []byte, deposit *uint256.Int) (*uint256.Int, error) {
	cost, err := epochCost(data)
	if err != nil {
		return nil, fmt.Errorf("epochs covered: %w", err)
	}
	if deposit == nil {
		return nil, fmt.Errorf("epochs covered: %w", ErrInvalidValue)
	}
	epochs := new(uint256.Int).Div(deposit, cost)
	if epochs.LtUint64(2) {
		return nil, fmt.Errorf("epochs covered: %w: %s covers %s epochs", ErrDepositTooSmall,
			deposit.ToBig(), epochs.ToBig())
	}
	return epochs.SubUint64(epochs, 2), nil
}

// StorageFee returns perEpochFee * (numEpochs+2).
func StorageFee(perEpochFee, numEpochs *uint256.Int) (*uint256.Int, error) {
	if perEpochFee == nil || numEpochs == nil {
		return nil, fmt.Errorf("storage fee: %w", ErrInvalidValue)
	}
	epochs, overflow := new(uint256.Int).AddOverflow(numEpochs, uint256.NewInt(2))
	if overflow {
		return nil, fmt.Errorf("storage fee: %w", ErrValueOverflow)
	}
	fee, overflow := new(uint256.Int).MulOverflow(perEpochFee, epochs)
	if overflow {
		return nil, fmt.Errorf("storage fee: %w", ErrValueOverflow)
	}
	return fee, nil
}

// RemainingDeposit returns the reward for spending unit at currentEpoch.
// The boolean is false when the record has expired and nothing may be
// reclaimed; this is distinct from a zero reward.
func RemainingDeposit(unit *StorageUnit, currentEpoch uint32) (*uint256.Int, bool, error) {
	if unit == nil {
		return nil, false, fmt.Errorf("remaining deposit: %w", ErrInvalidValue)
	}
	if currentEpoch < unit.IssuedAt {
		return nil, false, fmt.Errorf("remaining deposit: %w: epoch %d before issue epoch %d",
			ErrEpochInPast, currentEpoch, unit.IssuedAt)
	}
	cost, err := epochCost(unit.RawData)
	if err != nil {
		return nil, false, fmt.Errorf("remaining deposit: %w", err)
	}
	covered, err := NumEpochsCovered(unit.RawData, unit.Deposit)
	if err != nil {
		return nil, false, fmt.Errorf("remaining deposit: %w", err)
	}

	// An expired record (epochDiff > covered) yields no reward at all.
	epochDiff := uint64(currentEpoch - unit.IssuedAt)
	if covered.LtUint64(epochDiff) {
		return nil, false, nil
	}

	used, err := MinimumDeposit(unit.RawData, epochDiff)
	if err != nil {
		return nil, false, fmt.Errorf("remaining deposit: %w", err)
	}
	reward := new(uint256.Int).Sub(unit.Deposit, used)
	floor := new(uint256.Int).Lsh(cost, 1)
	if _, overflow := reward.AddOverflow(reward, floor); overflow {
		return nil, false, fmt.Errorf("remaining deposit: %w", ErrValueOverflow)
	}
	return reward, true, nil
}

// IssuedAtEpoch returns the epoch a record created at height is issued in.
// Records created in the last blocks of an epoch, or exactly on an epoch
// boundary, are issued at the next epoch.
func IssuedAtEpoch(epoch, height uint32) uint32 {
	pos := height % EpochLength
	if pos > EpochBoundary || pos == 0 {
		return epoch + 1
	}
	return epoch
}
