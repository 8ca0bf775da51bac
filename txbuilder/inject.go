package txbuilder

import (
	"fmt"

	"github.com/alicenetorg/libwallet-go/tx"
)

// Messages are the signing messages of a prepared draft.
type Messages struct {
	// Inputs holds one message per input, in input order.
	Inputs [][]byte
	// Storage holds one message per storage output, in output order,
	// skipping value outputs.
	Storage [][]byte
}

// SigningMessages returns the messages that must be signed for the draft
// prepared by CreateRawTransaction.
func (b *Builder) SigningMessages() (*Messages, error) {
	if !b.prepared {
		return nil, fmt.Errorf("signing messages: %w", ErrNotPrepared)
	}
	m := &Messages{}
	for _, in := range b.draft.Inputs {
		m.Inputs = append(m.Inputs, append([]byte(nil), in.Signature...))
	}
	for _, out := range b.draft.StorageOutputs() {
		m.Storage = append(m.Storage, append([]byte(nil), out.Signature...))
	}
	return m, nil
}

// InjectSignatures installs signatures made out of process: one per input
// and one per storage output, in the order of SigningMessages. Each is
// prefixed with its owner's validation and curve bytes.
func (b *Builder) InjectSignatures(inputs, storage [][]byte) error {
	return b.inject("inject signatures", inputs, storage, 0)
}

// InjectSignaturesAggregate installs group signatures. Each slot holds the
// partial signatures of every co-signer; they are aggregated and prefixed
// with the group curve.
func (b *Builder) InjectSignaturesAggregate(inputs, storage [][][]byte) error {
	flat := func(parts [][][]byte) ([][]byte, error) {
		out := make([][]byte, len(parts))
		for i, p := range parts {
			if len(p) == 0 {
				return nil, fmt.Errorf("%w: slot %d has no partial signatures", ErrMissingSignature, i)
			}
			for j, s := range p {
				if len(s) == 0 {
					return nil, fmt.Errorf("%w: slot %d co-signer %d", ErrMissingSignature, i, j)
				}
			}
			agg, err := b.aggregator.AggregateSignatures(p)
			if err != nil {
				return nil, fmt.Errorf("slot %d: %w", i, err)
			}
			out[i] = agg
		}
		return out, nil
	}
	in, err := flat(inputs)
	if err != nil {
		return fmt.Errorf("inject aggregate signatures: inputs: %w", err)
	}
	st, err := flat(storage)
	if err != nil {
		return fmt.Errorf("inject aggregate signatures: storage outputs: %w", err)
	}
	return b.inject("inject aggregate signatures", in, st, tx.CurveBN256)
}

// inject prefixes and installs sigs. A zero curve means the owning
// account's curve.
func (b *Builder) inject(op string, inputs, storage [][]byte, curve tx.Curve) error {
	if !b.prepared {
		return fmt.Errorf("%s: %w", op, ErrNotPrepared)
	}
	outs := b.draft.StorageOutputs()
	if len(inputs) != len(b.draft.Inputs) {
		return fmt.Errorf("%s: %w: %d input signatures for %d inputs", op, ErrMissingSignature, len(inputs), len(b.draft.Inputs))
	}
	if len(storage) != len(outs) {
		return fmt.Errorf("%s: %w: %d storage signatures for %d storage outputs", op, ErrMissingSignature, len(storage), len(outs))
	}

	// Resolve everything before touching the draft so a failure leaves it intact.
	inSigs := make([][]byte, len(inputs))
	for i, in := range b.draft.Inputs {
		owner, ok := b.draft.FindOwner(in.Consumed)
		if !ok {
			return fmt.Errorf("%s: input %d: %w: %s", op, i, ErrOwnerNotFound, in.Consumed)
		}
		c, err := b.signatureCurve(inputs[i], owner.Address, curve)
		if err != nil {
			return fmt.Errorf("%s: input %d: %w", op, i, err)
		}
		inSigs[i] = tx.Prefix(inputValidation(owner), c, inputs[i])
	}
	outSigs := make([][]byte, len(outs))
	for i, out := range outs {
		owner, err := tx.ExtractOwner(out.Owner)
		if err != nil {
			return fmt.Errorf("%s: storage output %d: %w", op, i, err)
		}
		c, err := b.signatureCurve(storage[i], owner.Address, curve)
		if err != nil {
			return fmt.Errorf("%s: storage output %d: %w", op, i, err)
		}
		outSigs[i] = tx.Prefix(tx.ValidationStorage, c, storage[i])
	}

	for i, in := range b.draft.Inputs {
		in.Signature = inSigs[i]
	}
	for i, out := range outs {
		out.Signature = outSigs[i]
	}
	b.signed = true
	return nil
}

func (b *Builder) signatureCurve(sig []byte, owner tx.Address, curve tx.Curve) (tx.Curve, error) {
	if len(sig) == 0 {
		return 0, ErrMissingSignature
	}
	acct, err := b.accounts.Account(owner)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrOwnerNotFound, err)
	}
	if curve == 0 {
		curve = acct.Curve
	}
	return curve, nil
}
