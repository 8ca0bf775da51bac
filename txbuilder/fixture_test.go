package txbuilder

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/alicenetorg/libwallet-go/account"
	"github.com/alicenetorg/libwallet-go/canon"
	"github.com/alicenetorg/libwallet-go/network"
	"github.com/alicenetorg/libwallet-go/tx"
)

const testChainID = 42

var broadcastHash = tx.Hash{0xfe, 0xed}

// ledgerFixture is an in-memory ledger behind a MockLedgerService.
type ledgerFixture struct {
	t        *testing.T
	reg      *account.Registry
	ledger   *network.MockLedgerService
	encoder  *canon.Encoder
	values   map[tx.Hash]*tx.ValueUnit
	order    []tx.Hash
	storage  map[tx.Hash]*tx.StorageUnit
	epoch    uint32
	height   uint32
	nextHash uint64
	sent     []*tx.Draft
}

func testKey(b byte) []byte {
	k := make([]byte, 32)
	k[31] = b
	return k
}

func testFees() *tx.FeeSchedule {
	return &tx.FeeSchedule{
		MinTxFee:      uint256.NewInt(4),
		ValueStoreFee: uint256.NewInt(5),
		DataStoreFee:  uint256.NewInt(1),
	}
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	enc, err := canon.New()
	require.NoError(t, err)
	f := &ledgerFixture{
		t:       t,
		reg:     account.NewRegistry(),
		encoder: enc,
		values:  make(map[tx.Hash]*tx.ValueUnit),
		storage: make(map[tx.Hash]*tx.StorageUnit),
		epoch:   10,
		height:  10*tx.EpochLength + 5,
	}
	f.ledger = &network.MockLedgerService{
		GetUnspentValueUnitsFn: func(_ context.Context, addr tx.Address, _ tx.Curve, _ *uint256.Int) ([]tx.Hash, *uint256.Int, error) {
			var ids []tx.Hash
			total := new(uint256.Int)
			for _, h := range f.order {
				u := f.values[h]
				if owner, _ := tx.ExtractOwner(u.Owner); owner.Address == addr {
					ids = append(ids, h)
					total.Add(total, u.Value)
				}
			}
			return ids, total, nil
		},
		GetUnspentStorageUnitsFn: func(_ context.Context, addr tx.Address, _ tx.Curve) ([]tx.Hash, error) {
			var ids []tx.Hash
			for h, u := range f.storage {
				if owner, _ := tx.ExtractOwner(u.Owner); owner.Address == addr {
					ids = append(ids, h)
				}
			}
			return ids, nil
		},
		GetStorageUnitByIndexFn: func(_ context.Context, addr tx.Address, _ tx.Curve, index tx.Index) (*tx.StorageUnit, error) {
			for _, u := range f.storage {
				if owner, _ := tx.ExtractOwner(u.Owner); owner.Address == addr && u.Index == index {
					return u, nil
				}
			}
			return nil, nil
		},
		GetUnitsByIDsFn: func(_ context.Context, ids []tx.Hash) ([]*tx.StorageUnit, []*tx.ValueUnit, error) {
			var s []*tx.StorageUnit
			var v []*tx.ValueUnit
			for _, id := range ids {
				if u, ok := f.values[id]; ok {
					cp := *u
					v = append(v, &cp)
				}
				if u, ok := f.storage[id]; ok {
					s = append(s, u)
				}
			}
			return s, v, nil
		},
		GetFeeScheduleFn:   func(context.Context) (*tx.FeeSchedule, error) { return testFees(), nil },
		GetCurrentEpochFn:  func(context.Context) (uint32, error) { return f.epoch, nil },
		GetCurrentHeightFn: func(context.Context) (uint32, error) { return f.height, nil },
		BroadcastFn: func(_ context.Context, d *tx.Draft) (tx.Hash, error) {
			f.sent = append(f.sent, d.Clone())
			return broadcastHash, nil
		},
		GetTxStatusFn: func(context.Context, tx.Hash) (*network.TxStatus, error) {
			return &network.TxStatus{Mined: true, Height: f.height}, nil
		},
	}
	return f
}

func (f *ledgerFixture) builder(opts ...Option) *Builder {
	return New(f.ledger, f.reg, f.encoder, testChainID, opts...)
}

func (f *ledgerFixture) account(key byte) *account.Account {
	f.t.Helper()
	acct, err := f.reg.AddAccount(testKey(key), tx.CurveSecp256k1)
	require.NoError(f.t, err)
	return acct
}

func (f *ledgerFixture) hash() tx.Hash {
	f.nextHash++
	var h tx.Hash
	binary.BigEndian.PutUint64(h[24:], f.nextHash)
	return h
}

// fund gives acct one value unit per value and returns their ids.
func (f *ledgerFixture) fund(acct *account.Account, values ...uint64) []tx.Hash {
	var ids []tx.Hash
	for _, v := range values {
		h := f.hash()
		f.values[h] = &tx.ValueUnit{
			ChainID: testChainID,
			TxHash:  h,
			Value:   uint256.NewInt(v),
			Owner:   acct.Owner(tx.ValidationValue),
			Fee:     uint256.NewInt(5),
		}
		f.order = append(f.order, h)
		ids = append(ids, h)
	}
	return ids
}

// store gives acct a live storage record.
func (f *ledgerFixture) store(acct *account.Account, index tx.Index, issuedAt uint32, data []byte, duration uint64) *tx.StorageUnit {
	f.t.Helper()
	deposit, err := tx.MinimumDeposit(data, duration)
	require.NoError(f.t, err)
	u := &tx.StorageUnit{
		ChainID:  testChainID,
		TxHash:   f.hash(),
		Index:    index,
		IssuedAt: issuedAt,
		Deposit:  deposit,
		RawData:  data,
		Owner:    acct.Owner(tx.ValidationStorage),
		Fee:      uint256.NewInt(3),
	}
	f.storage[u.TxHash] = u
	return u
}

// conserved checks that what d creates equals what it consumes.
func (f *ledgerFixture) conserved(d *tx.Draft) {
	f.t.Helper()
	out := new(uint256.Int).Set(d.Fee)
	for _, o := range d.Outputs {
		if o.Value != nil {
			out.Add(out, o.Value.Value)
			out.Add(out, o.Value.Fee)
		}
		if o.Storage != nil {
			out.Add(out, o.Storage.Deposit)
			out.Add(out, o.Storage.Fee)
		}
	}
	in := new(uint256.Int)
	for _, i := range d.Inputs {
		if u, ok := f.values[i.Consumed.TxHash]; ok {
			in.Add(in, u.Value)
			continue
		}
		u, ok := f.storage[i.Consumed.TxHash]
		require.True(f.t, ok, "unknown input %s", i.Consumed)
		reward, live, err := tx.RemainingDeposit(u, issuedAtFor(d, u.Index))
		require.NoError(f.t, err)
		require.True(f.t, live)
		in.Add(in, reward)
	}
	require.Equal(f.t, in.Dec(), out.Dec(), "value not conserved")
}

func issuedAtFor(d *tx.Draft, index tx.Index) uint32 {
	for _, s := range d.StorageOutputs() {
		if s.Index == index {
			return s.IssuedAt
		}
	}
	return 0
}
