// Package txbuilder funds, hashes and signs ledger transactions.
//
// A Builder owns one draft at a time. Outputs and the transaction fee are
// added first; each addition records what its payer owes. Assemble then
// selects inputs to cover every payer, canonicalizes the draft, signs it
// and broadcasts it. The draft is reset after every Assemble, successful
// or not. A Builder is not safe for concurrent use.
package txbuilder

import (
	"context"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog"

	"github.com/alicenetorg/libwallet-go/account"
	"github.com/alicenetorg/libwallet-go/network"
	"github.com/alicenetorg/libwallet-go/signer"
	"github.com/alicenetorg/libwallet-go/tx"
)

// AccountLookup resolves the account that signs for an address.
type AccountLookup interface {
	Account(addr tx.Address) (*account.Account, error)
}

// Encoder is the canonical encoder: it hashes a fee-less draft and returns
// a copy with hashes and signing messages filled in.
type Encoder interface {
	Canonicalize(d *tx.Draft) (tx.Hash, *tx.Draft, error)
}

// Builder assembles transactions.
type Builder struct {
	ledger     network.LedgerService
	accounts   AccountLookup
	encoder    Encoder
	aggregator signer.Aggregator
	chainID    uint32
	log        zerolog.Logger

	fixedFees *tx.FeeSchedule
	fees      *tx.FeeSchedule

	draft    *tx.Draft
	acc      *tx.Accumulator
	feeSet   bool
	feePayer tx.Address
	prepared bool
	signed   bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the builder's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithFeeSchedule pins the fee schedule instead of fetching it from the
// ledger for every draft.
func WithFeeSchedule(fs *tx.FeeSchedule) Option {
	return func(b *Builder) { b.fixedFees = fs.Clone() }
}

// WithAggregator replaces the signature aggregator used by
// InjectSignaturesAggregate.
func WithAggregator(a signer.Aggregator) Option {
	return func(b *Builder) { b.aggregator = a }
}

// New returns a Builder producing transactions for chainID.
func New(ledger network.LedgerService, accounts AccountLookup, encoder Encoder, chainID uint32, opts ...Option) *Builder {
	b := &Builder{
		ledger:     ledger,
		accounts:   accounts,
		encoder:    encoder,
		aggregator: signer.NewMultiSig(nil),
		chainID:    chainID,
		log:        zerolog.Nop(),
		draft:      tx.NewDraft(),
		acc:        tx.NewAccumulator(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Draft returns a copy of the draft under construction.
func (b *Builder) Draft() *tx.Draft {
	return b.draft.Clone()
}

// Obligations returns a copy of what each payer currently owes.
func (b *Builder) Obligations() []*tx.Obligation {
	return b.acc.Clone().Obligations()
}

// Reset discards the draft, the obligations and the cached fee schedule.
func (b *Builder) Reset() {
	b.draft = tx.NewDraft()
	b.acc.Reset()
	b.fees = nil
	b.feeSet = false
	b.prepared = false
	b.signed = false
}

// FeeSchedule returns the fee schedule used for the current draft,
// fetching it once per draft.
func (b *Builder) FeeSchedule(ctx context.Context) (*tx.FeeSchedule, error) {
	if b.fixedFees != nil {
		return b.fixedFees, nil
	}
	if b.fees != nil {
		return b.fees, nil
	}
	if b.ledger == nil {
		return nil, ErrNoLedger
	}
	fs, err := b.ledger.GetFeeSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("fee schedule: %w", err)
	}
	b.fees = fs
	return fs, nil
}

// SetFee sets the transaction fee, paid by payer. A nil fee takes the
// schedule's minimum transaction fee. Setting the fee again replaces the
// previous fee and its payer.
func (b *Builder) SetFee(ctx context.Context, payer tx.Address, fee *uint256.Int) error {
	if _, err := b.accounts.Account(payer); err != nil {
		return fmt.Errorf("set fee: %w", err)
	}
	if fee == nil {
		fs, err := b.FeeSchedule(ctx)
		if err != nil {
			return fmt.Errorf("set fee: %w", err)
		}
		fee = fs.MinTxFee
	}
	if fee == nil || fee.IsZero() {
		return fmt.Errorf("set fee: %w: fee must be positive", tx.ErrInvalidValue)
	}
	if b.feeSet {
		b.acc.Add(new(big.Int).Neg(b.draft.Fee.ToBig()), b.feePayer, nil)
	}
	b.draft.Fee = fee.Clone()
	b.feeSet = true
	b.feePayer = payer
	b.acc.AddValue(fee, payer, nil)
	b.prepared = false
	return nil
}

// AddValueOutput appends a transfer of value from an account to an address.
// A nil fee takes the schedule's value store fee; an explicit fee must be at
// least that much.
func (b *Builder) AddValueOutput(ctx context.Context, from tx.Address, value *uint256.Int, to tx.Address, toCurve tx.Curve, fee *uint256.Int) (*tx.ValueOutput, error) {
	if value == nil || value.IsZero() {
		return nil, fmt.Errorf("add value output: %w: value must be positive", tx.ErrInvalidValue)
	}
	owner, err := tx.NewOwner(tx.ValidationValue, toCurve, to)
	if err != nil {
		return nil, fmt.Errorf("add value output: %w", err)
	}
	if _, err := b.accounts.Account(from); err != nil {
		return nil, fmt.Errorf("add value output: %w", err)
	}
	fs, err := b.FeeSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("add value output: %w", err)
	}
	switch {
	case fee == nil:
		fee = fs.ValueStoreFee.Clone()
	case fee.Lt(fs.ValueStoreFee):
		return nil, fmt.Errorf("add value output: %w: %s below %s", tx.ErrFeeTooLow, fee.ToBig(), fs.ValueStoreFee.ToBig())
	default:
		fee = fee.Clone()
	}

	total, overflow := new(uint256.Int).AddOverflow(value, fee)
	if overflow {
		return nil, fmt.Errorf("add value output: %w", tx.ErrValueOverflow)
	}
	out := &tx.ValueOutput{
		ChainID: b.chainID,
		Value:   value.Clone(),
		OutIdx:  b.draft.NextOutIdx(),
		Owner:   owner,
		Fee:     fee,
	}
	b.draft.Outputs = append(b.draft.Outputs, tx.Output{Value: out})
	b.acc.AddValue(total, from, nil)
	b.prepared = false
	return out, nil
}

// StorageRequest describes a storage output.
type StorageRequest struct {
	From     tx.Address
	Index    tx.Index
	Duration uint64
	RawData  []byte
	// IssuedAt is the issue epoch; zero derives it from the ledger's
	// current epoch and height.
	IssuedAt uint32
	// Fee, when nil, takes storageFee(dataStoreFee, Duration).
	Fee *uint256.Int
}

// AddStorageOutput appends a storage record owned by req.From. The deposit
// is the minimum for req.Duration epochs. If a live record already exists
// at the index, its remaining deposit is reclaimed during input selection.
func (b *Builder) AddStorageOutput(ctx context.Context, req StorageRequest) (*tx.StorageOutput, error) {
	if req.Duration == 0 {
		return nil, fmt.Errorf("add storage output: %w: duration must be positive", tx.ErrInvalidDuration)
	}
	acct, err := b.accounts.Account(req.From)
	if err != nil {
		return nil, fmt.Errorf("add storage output: %w", err)
	}
	deposit, err := tx.MinimumDeposit(req.RawData, req.Duration)
	if err != nil {
		return nil, fmt.Errorf("add storage output: %w", err)
	}
	issuedAt := req.IssuedAt
	if issuedAt == 0 {
		if issuedAt, err = b.issueEpoch(ctx); err != nil {
			return nil, fmt.Errorf("add storage output: %w", err)
		}
	}
	fs, err := b.FeeSchedule(ctx)
	if err != nil {
		return nil, fmt.Errorf("add storage output: %w", err)
	}
	minFee, err := tx.StorageFee(fs.DataStoreFee, uint256.NewInt(req.Duration))
	if err != nil {
		return nil, fmt.Errorf("add storage output: %w", err)
	}
	fee := req.Fee
	switch {
	case fee == nil:
		fee = minFee
	case fee.Lt(minFee):
		return nil, fmt.Errorf("add storage output: %w: %s below %s", tx.ErrFeeTooLow, fee.ToBig(), minFee.ToBig())
	default:
		fee = fee.Clone()
	}

	total, overflow := new(uint256.Int).AddOverflow(deposit, fee)
	if overflow {
		return nil, fmt.Errorf("add storage output: %w", tx.ErrValueOverflow)
	}
	out := &tx.StorageOutput{
		ChainID:   b.chainID,
		Index:     req.Index,
		IssuedAt:  issuedAt,
		Deposit:   deposit,
		RawData:   append([]byte(nil), req.RawData...),
		OutIdx:    b.draft.NextOutIdx(),
		Owner:     acct.Owner(tx.ValidationStorage),
		Fee:       fee,
		Signature: append([]byte(nil), tx.SignaturePlaceholder...),
	}
	b.draft.Outputs = append(b.draft.Outputs, tx.Output{Storage: out})
	b.acc.AddValue(total, acct.Address, &tx.StorageRef{Index: req.Index, IssuedAt: issuedAt})
	b.prepared = false
	return out, nil
}

func (b *Builder) issueEpoch(ctx context.Context) (uint32, error) {
	if b.ledger == nil {
		return 0, ErrNoLedger
	}
	epoch, err := b.ledger.GetCurrentEpoch(ctx)
	if err != nil {
		return 0, err
	}
	height, err := b.ledger.GetCurrentHeight(ctx)
	if err != nil {
		return 0, err
	}
	return tx.IssuedAtEpoch(epoch, height), nil
}
