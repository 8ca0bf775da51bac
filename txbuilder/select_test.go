package txbuilder

import (
	"context"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicenetorg/libwallet-go/account"
	"github.com/alicenetorg/libwallet-go/tx"
)

var rawData = []byte("rawData")

// replaceRecord stores a record for alice at index issued at epoch 10 for
// 5 epochs, then adds a one-epoch replacement issued at epoch 12. The old
// record's remaining deposit at epoch 12 is 1915.
func replaceRecord(t *testing.T, f *ledgerFixture, b *Builder, alice *account.Account, fee *uint256.Int) {
	t.Helper()
	index := tx.Index{31: 7}
	f.store(alice, index, 10, rawData, 5)
	_, err := b.AddStorageOutput(context.Background(), StorageRequest{
		From: alice.Address, Index: index, Duration: 1, RawData: rawData, IssuedAt: 12, Fee: fee,
	})
	require.NoError(t, err)
}

func TestSelectStorageRewardNetting(t *testing.T) {
	tests := []struct {
		name       string
		storageFee uint64
		wantFee    uint64
		wantChange uint64
	}{
		// 1149 + 3 - 1915 = -763: change of 763 - 5.
		{"reward overshoots", 3, 4, 758},
		// 1149 + 766 - 1915 = 0: nothing to spend for this payer.
		{"reward covers exactly", 766, 4, 0},
		// 1149 + 763 - 1915 = -3: folded into the fee.
		{"reward overshoots by dust", 763, 7, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			alice, bob := f.account(1), f.account(2)
			f.fund(bob, 4)
			b := f.builder()

			replaceRecord(t, f, b, alice, uint256.NewInt(tt.storageFee))
			require.NoError(t, b.SetFee(context.Background(), bob.Address, uint256.NewInt(4)))

			_, err := b.Assemble(context.Background(), Funding{})
			require.NoError(t, err)
			d := f.sent[0]

			// The old record is spent first, then bob's fee unit: the zero
			// obligation does not stop selection for later payers.
			require.Len(t, d.Inputs, 2)
			owner, ok := d.FindOwner(d.Inputs[0].Consumed)
			require.True(t, ok)
			assert.True(t, owner.Storage)
			assert.Equal(t, tx.ValidationStorage, d.Inputs[0].Signature[0])
			owner, ok = d.FindOwner(d.Inputs[1].Consumed)
			require.True(t, ok)
			assert.Equal(t, bob.Address, owner.Address)

			assert.Equal(t, tt.wantFee, d.Fee.Uint64())
			if tt.wantChange == 0 {
				assert.Len(t, d.Outputs, 1)
			} else {
				require.Len(t, d.Outputs, 2)
				assert.Equal(t, tt.wantChange, d.Outputs[1].Value.Value.Uint64())
				assert.Equal(t, alice.Owner(tx.ValidationValue), d.Outputs[1].Value.Owner)
			}

			storage := d.StorageOutputs()
			require.Len(t, storage, 1)
			assert.Equal(t, tx.ValidationStorage, storage[0].Signature[0])
			f.conserved(d)
		})
	}
}

func TestSelectExpiredRecordNotReclaimed(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	index := tx.Index{31: 7}
	f.store(alice, index, 1, rawData, 1)
	f.fund(alice, 2000)
	b := f.builder()

	_, err := b.AddStorageOutput(context.Background(), StorageRequest{
		From: alice.Address, Index: index, Duration: 1, RawData: rawData, IssuedAt: 12,
	})
	require.NoError(t, err)
	require.NoError(t, b.SetFee(context.Background(), alice.Address, nil))

	_, err = b.Assemble(context.Background(), Funding{})
	require.NoError(t, err)
	d := f.sent[0]
	require.Len(t, d.Inputs, 1)
	owner, _ := d.FindOwner(d.Inputs[0].Consumed)
	assert.False(t, owner.Storage)
	// 2000 - (1149 + 3 + 4) = 844, less the change output's fee.
	assert.Equal(t, uint64(839), d.Outputs[1].Value.Value.Uint64())
	f.conserved(d)
}

func TestSelectIgnoresRecordAtOtherIndex(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	other := f.store(alice, tx.Index{31: 9}, 10, rawData, 5)
	f.ledger.GetStorageUnitByIndexFn = func(context.Context, tx.Address, tx.Curve, tx.Index) (*tx.StorageUnit, error) {
		return other, nil
	}
	f.fund(alice, 2000)
	b := f.builder()

	_, err := b.AddStorageOutput(context.Background(), StorageRequest{
		From: alice.Address, Index: tx.Index{31: 7}, Duration: 1, RawData: rawData, IssuedAt: 12,
	})
	require.NoError(t, err)
	require.NoError(t, b.SetFee(context.Background(), alice.Address, nil))
	_, err = b.Assemble(context.Background(), Funding{})
	require.NoError(t, err)
	assert.Len(t, f.sent[0].Inputs, 1)
}

func TestSelectEpochInPast(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	index := tx.Index{31: 7}
	f.store(alice, index, 10, rawData, 5)
	f.fund(alice, 2000)
	b := f.builder()

	_, err := b.AddStorageOutput(context.Background(), StorageRequest{
		From: alice.Address, Index: index, Duration: 1, RawData: rawData, IssuedAt: 5,
	})
	require.NoError(t, err)
	require.NoError(t, b.SetFee(context.Background(), alice.Address, nil))
	_, err = b.Assemble(context.Background(), Funding{})
	assert.ErrorIs(t, err, tx.ErrEpochInPast)
	assert.Empty(t, f.sent)
}

func TestSelectNoUnspentFound(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	b := f.builder()

	// A cache claiming more value than the units it holds.
	alice.Units.SetValueUnits(nil, uint256.NewInt(50))
	err := b.spend(alice, Funding{}, big.NewInt(20), uint256.NewInt(5))
	assert.ErrorIs(t, err, ErrNoUnspentFound)
}

func TestSelectSoftFail(t *testing.T) {
	f := newLedgerFixture(t)
	alice, bob := f.account(1), f.account(2)
	f.fund(alice, 10)
	f.fund(bob, 100)
	b := f.builder()
	ctx := context.Background()

	require.NoError(t, b.SetFee(ctx, bob.Address, nil))
	_, err := b.AddValueOutput(ctx, alice.Address, uint256.NewInt(50), bob.Address, tx.CurveSecp256k1, nil)
	require.NoError(t, err)

	funding, err := b.selectInputs(ctx, Funding{}, true)
	require.NoError(t, err)
	require.Len(t, funding, 1)
	assert.Equal(t, alice.Address, funding[0].Payer)
	assert.ErrorIs(t, funding[0], ErrInsufficientFunds)

	// bob was still funded.
	assert.Len(t, b.Draft().Inputs, 1)
}
