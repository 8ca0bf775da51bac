package txbuilder

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/alicenetorg/libwallet-go/account"
	"github.com/alicenetorg/libwallet-go/tx"
)

// Funding controls input selection.
type Funding struct {
	// Change receives change outputs. The zero address sends change back
	// to the payer.
	Change tx.Address
	// ChangeCurve of zero uses the payer's curve.
	ChangeCurve tx.Curve
	// UnitIDs, when set, restricts selection to these units instead of
	// looking up each payer's unspent value.
	UnitIDs []tx.Hash
}

// selectInputs funds every obligation in accumulator order. With softFail,
// payers that cannot cover their obligation are skipped and reported
// instead of failing the whole selection.
func (b *Builder) selectInputs(ctx context.Context, f Funding, softFail bool) ([]*FundingError, error) {
	if b.ledger == nil {
		return nil, ErrNoLedger
	}
	fs, err := b.FeeSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("select inputs: %w", err)
	}
	storeFee := fs.ValueStoreFee.ToBig()

	var funding []*FundingError
	for _, ob := range b.acc.Obligations() {
		acct, err := b.accounts.Account(ob.Payer)
		if err != nil {
			return nil, fmt.Errorf("select inputs: %w", err)
		}
		if err := b.loadValueUnits(ctx, acct, ob.Total, f.UnitIDs); err != nil {
			return nil, fmt.Errorf("select inputs: %w", err)
		}

		total := new(big.Int).Set(ob.Total)
		for _, ref := range ob.StorageRefs {
			reward, err := b.reclaim(ctx, acct, ref)
			if err != nil {
				return nil, fmt.Errorf("select inputs: %w", err)
			}
			if reward != nil {
				total.Sub(total, reward.ToBig())
			}
		}

		available := acct.Units.Total()
		if total.Cmp(available.ToBig()) > 0 {
			fe := &FundingError{Payer: acct.Address, Required: total, Available: available}
			if !softFail {
				return nil, fmt.Errorf("select inputs: %w", fe)
			}
			b.log.Debug().Str("payer", acct.Address.String()).Str("required", total.String()).
				Msg("insufficient funds")
			funding = append(funding, fe)
			continue
		}

		switch total.Sign() {
		case 0:
			continue
		case -1:
			excess := new(big.Int).Neg(total)
			if excess.Cmp(storeFee) <= 0 {
				b.fold(excess)
				continue
			}
			if err := b.addChange(acct, f, excess.Sub(excess, storeFee), fs.ValueStoreFee); err != nil {
				return nil, fmt.Errorf("select inputs: %w", err)
			}
			continue
		}

		if err := b.spend(acct, f, total, fs.ValueStoreFee); err != nil {
			return nil, fmt.Errorf("select inputs: %w", err)
		}
	}
	return funding, nil
}

// loadValueUnits refills acct's cache with the units selection may spend.
// Units not owned by acct or already spent by the draft are skipped, and
// the cached total is the sum of what remains.
func (b *Builder) loadValueUnits(ctx context.Context, acct *account.Account, need *big.Int, ids []tx.Hash) error {
	if len(ids) == 0 {
		var minValue *uint256.Int
		if need.Sign() > 0 {
			var overflow bool
			if minValue, overflow = uint256.FromBig(need); overflow {
				return tx.ErrValueOverflow
			}
		}
		var err error
		if ids, _, err = b.ledger.GetUnspentValueUnits(ctx, acct.Address, acct.Curve, minValue); err != nil {
			return fmt.Errorf("value units of %s: %w", acct.Address, err)
		}
	}

	var units []*tx.ValueUnit
	if len(ids) > 0 {
		_, values, err := b.ledger.GetUnitsByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("value units of %s: %w", acct.Address, err)
		}
		for _, u := range values {
			if owner, err := tx.ExtractOwner(u.Owner); err != nil || owner.Address != acct.Address {
				continue
			}
			if b.draft.Spends(u.Outpoint()) {
				continue
			}
			units = append(units, u)
		}
	}
	acct.Units.SetValueUnits(units, nil)
	return nil
}

// reclaim spends the live storage record ref points at and returns its
// remaining deposit. It returns nil when there is nothing to reclaim.
func (b *Builder) reclaim(ctx context.Context, acct *account.Account, ref tx.StorageRef) (*uint256.Int, error) {
	su, err := b.ledger.GetStorageUnitByIndex(ctx, acct.Address, acct.Curve, ref.Index)
	if err != nil {
		return nil, fmt.Errorf("storage unit %s: %w", ref.Index, err)
	}
	if su == nil || su.Index != ref.Index {
		return nil, nil
	}
	reward, ok, err := tx.RemainingDeposit(su, ref.IssuedAt)
	if err != nil {
		return nil, fmt.Errorf("storage unit %s: %w", ref.Index, err)
	}
	if !ok || b.draft.Spends(su.Outpoint()) {
		return nil, nil
	}
	b.draft.AddInput(b.chainID, acct.Address, su.Outpoint(), true)
	b.log.Debug().Str("payer", acct.Address.String()).Str("index", ref.Index.String()).
		Str("reward", reward.Dec()).Msg("reclaiming storage deposit")
	return reward, nil
}

// spend consumes acct's highest value units until need is covered.
func (b *Builder) spend(acct *account.Account, f Funding, need *big.Int, storeFee *uint256.Int) error {
	current := new(big.Int).Set(need)
	fee := storeFee.ToBig()
	for {
		u := acct.Units.TakeHighest()
		if u == nil {
			return fmt.Errorf("%w: payer %s still owes %s", ErrNoUnspentFound, acct.Address, current)
		}
		if b.draft.Spends(u.Outpoint()) {
			continue
		}
		b.draft.AddInput(b.chainID, acct.Address, u.Outpoint(), false)
		b.log.Debug().Str("payer", acct.Address.String()).Str("unit", u.Outpoint().String()).
			Str("value", u.Value.Dec()).Msg("selected input")

		value := u.Value.ToBig()
		remaining := new(big.Int).Sub(value, current)
		if remaining.Sign() > 0 {
			if remaining.Cmp(fee) <= 0 {
				b.fold(remaining)
				return nil
			}
			return b.addChange(acct, f, remaining.Sub(remaining, fee), storeFee)
		}
		current.Sub(current, value)
		if current.Sign() == 0 {
			return nil
		}
	}
}

// fold adds a remainder too small for a change output to the fee.
func (b *Builder) fold(r *big.Int) {
	v, _ := uint256.FromBig(r)
	b.draft.Fee = new(uint256.Int).Add(b.draft.Fee, v)
	b.log.Debug().Str("amount", r.String()).Msg("folded remainder into fee")
}

// addChange appends a change output of value carrying fee.
func (b *Builder) addChange(acct *account.Account, f Funding, value *big.Int, fee *uint256.Int) error {
	v, overflow := uint256.FromBig(value)
	if overflow {
		return tx.ErrValueOverflow
	}
	to, curve := acct.Address, acct.Curve
	if !f.Change.IsZero() {
		to = f.Change
	}
	if f.ChangeCurve != 0 {
		curve = f.ChangeCurve
	}
	owner, err := tx.NewOwner(tx.ValidationValue, curve, to)
	if err != nil {
		return fmt.Errorf("change output: %w", err)
	}
	b.draft.Outputs = append(b.draft.Outputs, tx.Output{Value: &tx.ValueOutput{
		ChainID: b.chainID,
		Value:   v,
		OutIdx:  b.draft.NextOutIdx(),
		Owner:   owner,
		Fee:     fee.Clone(),
	}})
	b.log.Debug().Str("to", to.String()).Str("value", v.Dec()).Msg("added change output")
	return nil
}
