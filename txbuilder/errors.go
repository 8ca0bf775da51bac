package txbuilder

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/alicenetorg/libwallet-go/tx"
)

var (
	// ErrInsufficientFunds indicates a payer's obligation exceeds its unspent value.
	ErrInsufficientFunds = errors.New("txbuilder: insufficient funds")

	// ErrNoUnspentFound indicates coin selection ran out of candidate units.
	ErrNoUnspentFound = errors.New("txbuilder: no unspent value unit found")

	// ErrOwnerNotFound indicates an input or storage output with no known signing owner.
	ErrOwnerNotFound = errors.New("txbuilder: owner not found")

	// ErrMissingSignature indicates a signature slot left empty.
	ErrMissingSignature = errors.New("txbuilder: missing signature")

	// ErrNoFee indicates a transaction fee was never set.
	ErrNoFee = errors.New("txbuilder: no transaction fee set")

	// ErrNoOutputs indicates a draft with no outputs.
	ErrNoOutputs = errors.New("txbuilder: no outputs")

	// ErrNoInputs indicates coin selection left the draft without inputs.
	ErrNoInputs = errors.New("txbuilder: no inputs")

	// ErrNoLedger indicates a builder without a ledger service.
	ErrNoLedger = errors.New("txbuilder: no ledger service")

	// ErrNotPrepared indicates signatures were requested before the draft was
	// funded and canonicalized.
	ErrNotPrepared = errors.New("txbuilder: draft not prepared")
)

// FundingError reports a payer that cannot cover its obligation.
type FundingError struct {
	Payer     tx.Address
	Required  *big.Int
	Available *uint256.Int
}

func (e *FundingError) Error() string {
	return fmt.Sprintf("%v: payer %s needs %s, has %s",
		ErrInsufficientFunds, e.Payer, e.Required, e.Available.ToBig())
}

// Unwrap makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *FundingError) Unwrap() error { return ErrInsufficientFunds }
