package network

import (
	"context"

	"github.com/holiman/uint256"

	"github.com/alicenetorg/libwallet-go/tx"
)

// MockLedgerService is a test double for LedgerService.
// All function fields must be set before the corresponding method is called.
type MockLedgerService struct {
	GetUnspentValueUnitsFn   func(ctx context.Context, addr tx.Address, curve tx.Curve, minValue *uint256.Int) ([]tx.Hash, *uint256.Int, error)
	GetUnspentStorageUnitsFn func(ctx context.Context, addr tx.Address, curve tx.Curve) ([]tx.Hash, error)
	GetStorageUnitByIndexFn  func(ctx context.Context, addr tx.Address, curve tx.Curve, index tx.Index) (*tx.StorageUnit, error)
	GetUnitsByIDsFn          func(ctx context.Context, ids []tx.Hash) ([]*tx.StorageUnit, []*tx.ValueUnit, error)
	GetFeeScheduleFn         func(ctx context.Context) (*tx.FeeSchedule, error)
	GetCurrentEpochFn        func(ctx context.Context) (uint32, error)
	GetCurrentHeightFn       func(ctx context.Context) (uint32, error)
	BroadcastFn              func(ctx context.Context, d *tx.Draft) (tx.Hash, error)
	GetTxStatusFn            func(ctx context.Context, hash tx.Hash) (*TxStatus, error)
}

var _ LedgerService = (*MockLedgerService)(nil)

func (m *MockLedgerService) GetUnspentValueUnits(ctx context.Context, addr tx.Address, curve tx.Curve, minValue *uint256.Int) ([]tx.Hash, *uint256.Int, error) {
	return m.GetUnspentValueUnitsFn(ctx, addr, curve, minValue)
}
func (m *MockLedgerService) GetUnspentStorageUnits(ctx context.Context, addr tx.Address, curve tx.Curve) ([]tx.Hash, error) {
	return m.GetUnspentStorageUnitsFn(ctx, addr, curve)
}
func (m *MockLedgerService) GetStorageUnitByIndex(ctx context.Context, addr tx.Address, curve tx.Curve, index tx.Index) (*tx.StorageUnit, error) {
	return m.GetStorageUnitByIndexFn(ctx, addr, curve, index)
}
func (m *MockLedgerService) GetUnitsByIDs(ctx context.Context, ids []tx.Hash) ([]*tx.StorageUnit, []*tx.ValueUnit, error) {
	return m.GetUnitsByIDsFn(ctx, ids)
}
func (m *MockLedgerService) GetFeeSchedule(ctx context.Context) (*tx.FeeSchedule, error) {
	return m.GetFeeScheduleFn(ctx)
}
func (m *MockLedgerService) GetCurrentEpoch(ctx context.Context) (uint32, error) {
	return m.GetCurrentEpochFn(ctx)
}
func (m *MockLedgerService) GetCurrentHeight(ctx context.Context) (uint32, error) {
	return m.GetCurrentHeightFn(ctx)
}
func (m *MockLedgerService) Broadcast(ctx context.Context, d *tx.Draft) (tx.Hash, error) {
	return m.BroadcastFn(ctx, d)
}
func (m *MockLedgerService) GetTxStatus(ctx context.Context, hash tx.Hash) (*TxStatus, error) {
	return m.GetTxStatusFn(ctx, hash)
}
