package network

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/alicenetorg/libwallet-go/tx"
)

// LedgerService is the chain-facing interface the transaction builder
// needs: unspent lookups, fees, epoch and height, and broadcast.
type LedgerService interface {
	// GetUnspentValueUnits returns ids of value units owned by addr worth at
	// least minValue (all of them when minValue is nil) and their total.
	GetUnspentValueUnits(ctx context.Context, addr tx.Address, curve tx.Curve, minValue *uint256.Int) ([]tx.Hash, *uint256.Int, error)

	// GetUnspentStorageUnits returns ids of all storage units owned by addr.
	GetUnspentStorageUnits(ctx context.Context, addr tx.Address, curve tx.Curve) ([]tx.Hash, error)

	// GetStorageUnitByIndex returns the live storage unit at index, or nil
	// when none exists. Callers must check the returned index.
	GetStorageUnitByIndex(ctx context.Context, addr tx.Address, curve tx.Curve, index tx.Index) (*tx.StorageUnit, error)

	// GetUnitsByIDs resolves unit ids.
	GetUnitsByIDs(ctx context.Context, ids []tx.Hash) ([]*tx.StorageUnit, []*tx.ValueUnit, error)

	// GetFeeSchedule returns the fees for the current epoch.
	GetFeeSchedule(ctx context.Context) (*tx.FeeSchedule, error)

	// GetCurrentEpoch returns the current epoch number.
	GetCurrentEpoch(ctx context.Context) (uint32, error)

	// GetCurrentHeight returns the current block height.
	GetCurrentHeight(ctx context.Context) (uint32, error)

	// Broadcast submits a signed transaction and returns its hash.
	Broadcast(ctx context.Context, d *tx.Draft) (tx.Hash, error)

	// GetTxStatus reports whether a transaction has been mined.
	GetTxStatus(ctx context.Context, hash tx.Hash) (*TxStatus, error)
}

// TxStatus is the mining status of a transaction.
type TxStatus struct {
	Mined  bool   `json:"mined"`
	Height uint32 `json:"height,omitempty"`
}
