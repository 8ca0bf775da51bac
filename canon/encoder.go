// Package canon turns draft transactions into their canonical hashed form.
//
// Every input and output is reduced to a preimage struct that is encoded
// with CBOR core deterministic encoding. The transaction hash is the
// Keccak-256 digest of the encoded input and output preimages; the fee and
// all signatures are excluded so that signatures never cover them. The
// message signed for an input or a storage output is the Keccak-256 digest
// of its own preimage followed by the transaction hash.
package canon

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/alicenetorg/libwallet-go/tx"
)

const (
	kindValue   uint8 = 1
	kindStorage uint8 = 2
)

type txInPreImage struct {
	_              struct{} `cbor:",toarray"`
	ChainID        uint32
	ConsumedTxIdx  uint32
	ConsumedTxHash []byte
}

type vsPreImage struct {
	_        struct{} `cbor:",toarray"`
	ChainID  uint32
	Value    []byte
	TXOutIdx uint32
	Owner    []byte
	Fee      []byte
}

type dsPreImage struct {
	_        struct{} `cbor:",toarray"`
	ChainID  uint32
	Index    []byte
	IssuedAt uint32
	Deposit  []byte
	RawData  []byte
	TXOutIdx uint32
	Owner    []byte
	Fee      []byte
}

type outPreImage struct {
	_    struct{} `cbor:",toarray"`
	Kind uint8
	Body cbor.RawMessage
}

type txPreImage struct {
	_    struct{} `cbor:",toarray"`
	Vin  []cbor.RawMessage
	Vout []outPreImage
}

// Encoder is the canonical encoder. It is stateless and safe for
// concurrent use.
type Encoder struct {
	mode cbor.EncMode
}

// New returns an Encoder using CBOR core deterministic encoding.
func New() (*Encoder, error) {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("canon: enc mode: %w", err)
	}
	return &Encoder{mode: mode}, nil
}

// Canonicalize computes the transaction hash of d and returns a filled
// copy: every input and output carries the hash, and each input and storage
// output signature field holds the message its owner must sign. d itself is
// not modified.
func (e *Encoder) Canonicalize(d *tx.Draft) (tx.Hash, *tx.Draft, error) {
	if d == nil {
		return tx.Hash{}, nil, ErrNilDraft
	}
	filled := d.Clone()

	inputs := make([][]byte, len(filled.Inputs))
	for i, in := range filled.Inputs {
		b, err := e.encodeInput(in)
		if err != nil {
			return tx.Hash{}, nil, fmt.Errorf("canonicalize: input %d: %w", i, err)
		}
		inputs[i] = b
	}
	outputs := make([]outPreImage, len(filled.Outputs))
	for i, o := range filled.Outputs {
		op, err := e.encodeOutput(o)
		if err != nil {
			return tx.Hash{}, nil, fmt.Errorf("canonicalize: output %d: %w", i, err)
		}
		outputs[i] = op
	}

	hash, err := e.hashTx(inputs, outputs)
	if err != nil {
		return tx.Hash{}, nil, fmt.Errorf("canonicalize: %w", err)
	}

	for i, in := range filled.Inputs {
		in.TxHash = hash
		in.Signature = message(inputs[i], hash)
	}
	for i, o := range filled.Outputs {
		switch {
		case o.Value != nil:
			o.Value.TxHash = hash
		case o.Storage != nil:
			o.Storage.TxHash = hash
			o.Storage.Signature = message(outputs[i].Body, hash)
		}
	}
	return hash, filled, nil
}

// TxHash returns the transaction hash of d without filling any fields.
func (e *Encoder) TxHash(d *tx.Draft) (tx.Hash, error) {
	h, _, err := e.Canonicalize(d)
	return h, err
}

func (e *Encoder) hashTx(inputs [][]byte, outputs []outPreImage) (tx.Hash, error) {
	pre := txPreImage{Vin: make([]cbor.RawMessage, len(inputs)), Vout: outputs}
	for i, b := range inputs {
		pre.Vin[i] = b
	}
	b, err := e.mode.Marshal(pre)
	if err != nil {
		return tx.Hash{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	var h tx.Hash
	copy(h[:], keccak256(b))
	return h, nil
}

func (e *Encoder) encodeInput(in *tx.Input) ([]byte, error) {
	b, err := e.mode.Marshal(txInPreImage{
		ChainID:        in.ChainID,
		ConsumedTxIdx:  in.Consumed.OutIdx,
		ConsumedTxHash: in.Consumed.TxHash[:],
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return b, nil
}

func (e *Encoder) encodeOutput(o tx.Output) (outPreImage, error) {
	var (
		kind uint8
		body interface{}
	)
	switch {
	case o.Value != nil:
		v := o.Value
		kind = kindValue
		body = vsPreImage{
			ChainID:  v.ChainID,
			Value:    word(v.Value),
			TXOutIdx: v.OutIdx,
			Owner:    v.Owner,
			Fee:      word(v.Fee),
		}
	case o.Storage != nil:
		s := o.Storage
		kind = kindStorage
		body = dsPreImage{
			ChainID:  s.ChainID,
			Index:    s.Index[:],
			IssuedAt: s.IssuedAt,
			Deposit:  word(s.Deposit),
			RawData:  s.RawData,
			TXOutIdx: s.OutIdx,
			Owner:    s.Owner,
			Fee:      word(s.Fee),
		}
	default:
		return outPreImage{}, ErrEmptyOutput
	}
	b, err := e.mode.Marshal(body)
	if err != nil {
		return outPreImage{}, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return outPreImage{Kind: kind, Body: b}, nil
}

// word returns v as a fixed 32-byte big-endian word; nil is zero.
func word(v *uint256.Int) []byte {
	var w [32]byte
	if v != nil {
		w = v.Bytes32()
	}
	return w[:]
}

func message(preimage []byte, hash tx.Hash) []byte {
	return keccak256(preimage, hash[:])
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}
