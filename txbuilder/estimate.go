package txbuilder

import (
	"context"
	"fmt"
	"math/big"

	"github.com/alicenetorg/libwallet-go/tx"
)

// FeeEstimate is the fee cost of the current draft once funded.
type FeeEstimate struct {
	Schedule *tx.FeeSchedule
	// Outputs holds the cost of each output, including change outputs
	// selection would add. A storage output replacing a live record can
	// cost less than zero.
	Outputs []*big.Int
	// Total is the sum of Outputs plus the minimum transaction fee.
	Total *big.Int
	// Funding lists payers that could not cover their obligation.
	Funding []*FundingError
}

// EstimateFees runs input selection in soft-fail mode and prices the
// resulting outputs. The draft, the obligations and the fee are restored
// afterwards; the payers' unit caches are not.
func (b *Builder) EstimateFees(ctx context.Context, f Funding) (*FeeEstimate, error) {
	if err := b.checkReady(); err != nil {
		return nil, fmt.Errorf("estimate fees: %w", err)
	}
	draft, acc, prepared, signed := b.draft.Clone(), b.acc.Clone(), b.prepared, b.signed

	est, err := b.estimate(ctx, f)
	if err != nil {
		b.Reset()
		return nil, fmt.Errorf("estimate fees: %w", err)
	}
	b.draft, b.acc, b.prepared, b.signed = draft, acc, prepared, signed
	return est, nil
}

func (b *Builder) estimate(ctx context.Context, f Funding) (*FeeEstimate, error) {
	funding, err := b.selectInputs(ctx, f, true)
	if err != nil {
		return nil, err
	}
	fs, err := b.FeeSchedule(ctx)
	if err != nil {
		return nil, err
	}
	est := &FeeEstimate{
		Schedule: fs.Clone(),
		Total:    new(big.Int),
		Funding:  funding,
	}
	for i, o := range b.draft.Outputs {
		var cost *big.Int
		switch {
		case o.Value != nil:
			cost = fs.ValueStoreFee.ToBig()
		case o.Storage != nil:
			if cost, err = b.storageCost(ctx, fs, o.Storage); err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
		default:
			return nil, fmt.Errorf("output %d: empty output", i)
		}
		est.Outputs = append(est.Outputs, cost)
		est.Total.Add(est.Total, cost)
	}
	est.Total.Add(est.Total, fs.MinTxFee.ToBig())
	return est, nil
}

// storageCost is storageFee + deposit, less the reward of any live record
// the output replaces.
func (b *Builder) storageCost(ctx context.Context, fs *tx.FeeSchedule, out *tx.StorageOutput) (*big.Int, error) {
	epochs, err := tx.NumEpochsCovered(out.RawData, out.Deposit)
	if err != nil {
		return nil, err
	}
	fee, err := tx.StorageFee(fs.DataStoreFee, epochs)
	if err != nil {
		return nil, err
	}
	cost := new(big.Int).Add(fee.ToBig(), out.Deposit.ToBig())

	owner, err := tx.ExtractOwner(out.Owner)
	if err != nil {
		return nil, err
	}
	prior, err := b.ledger.GetStorageUnitByIndex(ctx, owner.Address, owner.Curve, out.Index)
	if err != nil {
		return nil, err
	}
	if prior == nil || prior.Index != out.Index {
		return cost, nil
	}
	reward, ok, err := tx.RemainingDeposit(prior, out.IssuedAt)
	if err != nil {
		return nil, err
	}
	if ok {
		cost.Sub(cost, reward.ToBig())
	}
	return cost, nil
}

