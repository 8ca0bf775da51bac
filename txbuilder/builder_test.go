package txbuilder

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicenetorg/libwallet-go/tx"
)

func TestAddValueOutput(t *testing.T) {
	f := newLedgerFixture(t)
	alice, bob := f.account(1), f.account(2)
	b := f.builder()
	ctx := context.Background()

	out, err := b.AddValueOutput(ctx, alice.Address, uint256.NewInt(10), bob.Address, tx.CurveSecp256k1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(testChainID), out.ChainID)
	assert.Equal(t, uint32(0), out.OutIdx)
	assert.Equal(t, uint64(5), out.Fee.Uint64())
	assert.Equal(t, bob.Owner(tx.ValidationValue), out.Owner)

	out, err = b.AddValueOutput(ctx, alice.Address, uint256.NewInt(7), bob.Address, tx.CurveSecp256k1, uint256.NewInt(9))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), out.OutIdx)
	assert.Equal(t, uint64(9), out.Fee.Uint64())

	obs := b.Obligations()
	require.Len(t, obs, 1)
	assert.Equal(t, alice.Address, obs[0].Payer)
	assert.Equal(t, int64(10+5+7+9), obs[0].Total.Int64())
}

func TestAddValueOutputValidation(t *testing.T) {
	f := newLedgerFixture(t)
	alice, bob := f.account(1), f.account(2)
	b := f.builder()
	ctx := context.Background()

	tests := []struct {
		name  string
		from  tx.Address
		value *uint256.Int
		curve tx.Curve
		fee   *uint256.Int
		want  error
	}{
		{"zero value", alice.Address, uint256.NewInt(0), tx.CurveSecp256k1, nil, tx.ErrInvalidValue},
		{"nil value", alice.Address, nil, tx.CurveSecp256k1, nil, tx.ErrInvalidValue},
		{"bad curve", alice.Address, uint256.NewInt(1), tx.Curve(9), nil, tx.ErrInvalidCurve},
		{"fee too low", alice.Address, uint256.NewInt(1), tx.CurveSecp256k1, uint256.NewInt(4), tx.ErrFeeTooLow},
		{"unknown payer", tx.Address{0x77}, uint256.NewInt(1), tx.CurveSecp256k1, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.AddValueOutput(ctx, tt.from, tt.value, bob.Address, tt.curve, tt.fee)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
				assert.ErrorIs(t, err, tx.ErrValidation)
			}
		})
	}
	assert.Empty(t, b.Draft().Outputs)
}

func TestAddStorageOutput(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	b := f.builder()
	ctx := context.Background()

	out, err := b.AddStorageOutput(ctx, StorageRequest{
		From:     alice.Address,
		Index:    tx.Index{31: 1},
		Duration: 1,
		RawData:  []byte("rawData"),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1149), out.Deposit.Uint64())
	assert.Equal(t, uint64(3), out.Fee.Uint64())
	assert.Equal(t, uint32(10), out.IssuedAt)
	assert.Equal(t, alice.Owner(tx.ValidationStorage), out.Owner)
	assert.Equal(t, tx.SignaturePlaceholder, out.Signature)

	obs := b.Obligations()
	require.Len(t, obs, 1)
	assert.Equal(t, int64(1152), obs[0].Total.Int64())
	assert.Equal(t, []tx.StorageRef{{Index: tx.Index{31: 1}, IssuedAt: 10}}, obs[0].StorageRefs)
}

func TestAddStorageOutputIssueEpoch(t *testing.T) {
	tests := []struct {
		name   string
		height uint32
		want   uint32
	}{
		{"inside epoch", 10*tx.EpochLength + 5, 10},
		{"at boundary", 10*tx.EpochLength + tx.EpochBoundary, 10},
		{"past boundary", 10*tx.EpochLength + tx.EpochBoundary + 1, 11},
		{"epoch start", 11 * tx.EpochLength, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLedgerFixture(t)
			f.height = tt.height
			alice := f.account(1)
			out, err := f.builder().AddStorageOutput(context.Background(), StorageRequest{
				From: alice.Address, Index: tx.Index{31: 1}, Duration: 2, RawData: []byte("x"),
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.IssuedAt)
		})
	}
}

func TestAddStorageOutputValidation(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	b := f.builder()
	ctx := context.Background()

	_, err := b.AddStorageOutput(ctx, StorageRequest{From: alice.Address, Duration: 0, RawData: []byte("x")})
	assert.ErrorIs(t, err, tx.ErrInvalidDuration)

	_, err = b.AddStorageOutput(ctx, StorageRequest{
		From: alice.Address, Duration: 3, RawData: []byte("x"), IssuedAt: 4, Fee: uint256.NewInt(4),
	})
	assert.ErrorIs(t, err, tx.ErrFeeTooLow)

	_, err = b.AddStorageOutput(ctx, StorageRequest{
		From: alice.Address, Duration: 1, RawData: make([]byte, tx.MaxDataSize+1), IssuedAt: 4,
	})
	assert.ErrorIs(t, err, tx.ErrDataTooLarge)

	out, err := b.AddStorageOutput(ctx, StorageRequest{
		From: alice.Address, Duration: 3, RawData: []byte("x"), IssuedAt: 4, Fee: uint256.NewInt(5),
	})
	require.NoError(t, err)
	assert.Equal(t, uint32(4), out.IssuedAt)
	assert.Equal(t, uint64(5), out.Fee.Uint64())
}

func TestSetFee(t *testing.T) {
	f := newLedgerFixture(t)
	alice, bob := f.account(1), f.account(2)
	b := f.builder()
	ctx := context.Background()

	require.NoError(t, b.SetFee(ctx, alice.Address, nil))
	assert.Equal(t, uint64(4), b.Draft().Fee.Uint64())

	require.NoError(t, b.SetFee(ctx, bob.Address, uint256.NewInt(6)))
	assert.Equal(t, uint64(6), b.Draft().Fee.Uint64())

	obs := b.Obligations()
	require.Len(t, obs, 2)
	assert.Equal(t, int64(0), obs[0].Total.Int64())
	assert.Equal(t, int64(6), obs[1].Total.Int64())

	err := b.SetFee(ctx, alice.Address, uint256.NewInt(0))
	assert.ErrorIs(t, err, tx.ErrInvalidValue)
}

func TestFixedFeeSchedule(t *testing.T) {
	f := newLedgerFixture(t)
	f.ledger.GetFeeScheduleFn = func(context.Context) (*tx.FeeSchedule, error) {
		t.Fatal("fee schedule fetched")
		return nil, nil
	}
	alice := f.account(1)
	fs := testFees()
	fs.ValueStoreFee = uint256.NewInt(8)
	b := f.builder(WithFeeSchedule(fs))

	out, err := b.AddValueOutput(context.Background(), alice.Address, uint256.NewInt(1), alice.Address, tx.CurveSecp256k1, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), out.Fee.Uint64())
}

func TestReset(t *testing.T) {
	f := newLedgerFixture(t)
	alice := f.account(1)
	b := f.builder()
	ctx := context.Background()

	require.NoError(t, b.SetFee(ctx, alice.Address, nil))
	_, err := b.AddValueOutput(ctx, alice.Address, uint256.NewInt(3), alice.Address, tx.CurveSecp256k1, nil)
	require.NoError(t, err)

	b.Reset()
	d := b.Draft()
	assert.Empty(t, d.Outputs)
	assert.True(t, d.Fee.IsZero())
	assert.Empty(t, b.Obligations())
}
