package txbuilder

import (
	"context"
	"fmt"

	"github.com/alicenetorg/libwallet-go/tx"
)

// Receipt is a broadcast transaction.
type Receipt struct {
	Hash  tx.Hash
	Draft *tx.Draft
}

// Assemble funds, canonicalizes, signs and broadcasts the draft. The
// builder is reset afterwards whatever the outcome; after a failure the
// payers' unit caches are stale.
func (b *Builder) Assemble(ctx context.Context, f Funding) (*Receipt, error) {
	defer b.Reset()

	if err := b.prepare(ctx, f); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	if err := b.sign(b.draft); err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	return b.broadcast(ctx, "assemble")
}

// CreateRawTransaction funds and canonicalizes the draft without signing
// it. The returned copy carries, in every signature field, the message its
// owner must sign. The builder keeps the prepared draft so signatures can
// be injected and sent with SendSigned. On failure the builder is reset.
func (b *Builder) CreateRawTransaction(ctx context.Context, f Funding) (*tx.Draft, error) {
	if err := b.prepare(ctx, f); err != nil {
		b.Reset()
		return nil, fmt.Errorf("create raw transaction: %w", err)
	}
	return b.draft.Clone(), nil
}

// SendSigned broadcasts a prepared draft whose signatures were injected.
// The builder is reset afterwards.
func (b *Builder) SendSigned(ctx context.Context) (*Receipt, error) {
	defer b.Reset()
	if !b.prepared {
		return nil, fmt.Errorf("send signed: %w", ErrNotPrepared)
	}
	if !b.signed {
		return nil, fmt.Errorf("send signed: %w: signatures were never injected", ErrMissingSignature)
	}
	return b.broadcast(ctx, "send signed")
}

func (b *Builder) broadcast(ctx context.Context, op string) (*Receipt, error) {
	hash, err := b.ledger.Broadcast(ctx, b.draft)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b.log.Debug().Str("hash", hash.String()).Int("inputs", len(b.draft.Inputs)).
		Int("outputs", len(b.draft.Outputs)).Msg("broadcast transaction")
	return &Receipt{Hash: hash, Draft: b.draft.Clone()}, nil
}

func (b *Builder) checkReady() error {
	if b.ledger == nil {
		return ErrNoLedger
	}
	if !b.feeSet || b.draft.Fee.IsZero() {
		return ErrNoFee
	}
	if len(b.draft.Outputs) == 0 {
		return ErrNoOutputs
	}
	return nil
}

// prepare selects inputs and replaces the draft with its canonical form.
func (b *Builder) prepare(ctx context.Context, f Funding) error {
	if err := b.checkReady(); err != nil {
		return err
	}
	if _, err := b.selectInputs(ctx, f, false); err != nil {
		return err
	}
	if len(b.draft.Inputs) == 0 {
		return ErrNoInputs
	}

	// The fee is not covered by the transaction hash.
	unhashed := b.draft.Clone()
	fee := unhashed.Fee
	unhashed.Fee = nil
	_, filled, err := b.encoder.Canonicalize(unhashed)
	if err != nil {
		return fmt.Errorf("canonicalize: %w", err)
	}
	filled.Fee = fee
	filled.Owners = unhashed.Owners
	b.draft = filled
	b.prepared = true
	b.signed = false
	return nil
}

// sign replaces every signing message in d with its owner's signature.
func (b *Builder) sign(d *tx.Draft) error {
	for i, in := range d.Inputs {
		owner, ok := d.FindOwner(in.Consumed)
		if !ok {
			return fmt.Errorf("sign input %d: %w: %s", i, ErrOwnerNotFound, in.Consumed)
		}
		acct, err := b.accounts.Account(owner.Address)
		if err != nil {
			return fmt.Errorf("sign input %d: %w: %w", i, ErrOwnerNotFound, err)
		}
		sig, err := acct.Signer.Sign(in.Signature)
		if err != nil {
			return fmt.Errorf("sign input %d: %w", i, err)
		}
		in.Signature = tx.Prefix(inputValidation(owner), acct.Curve, sig)
	}
	for i, out := range d.StorageOutputs() {
		owner, err := tx.ExtractOwner(out.Owner)
		if err != nil {
			return fmt.Errorf("sign storage output %d: %w", i, err)
		}
		acct, err := b.accounts.Account(owner.Address)
		if err != nil {
			return fmt.Errorf("sign storage output %d: %w: %w", i, ErrOwnerNotFound, err)
		}
		sig, err := acct.Signer.Sign(out.Signature)
		if err != nil {
			return fmt.Errorf("sign storage output %d: %w", i, err)
		}
		out.Signature = tx.Prefix(tx.ValidationStorage, acct.Curve, sig)
	}
	return nil
}

func inputValidation(o tx.InputOwner) byte {
	if o.Storage {
		return tx.ValidationStorage
	}
	return tx.ValidationValue
}
