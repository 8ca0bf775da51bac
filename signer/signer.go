// Package signer implements the signature schemes that unlock ledger
// outputs: recoverable secp256k1 signatures (curve 1) and BLS signatures
// over BN256 with group aggregation (curve 2).
package signer

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/alicenetorg/libwallet-go/tx"
)

// Signer signs messages on behalf of one account.
type Signer interface {
	// Curve returns the curve the signer's owner prefixes carry.
	Curve() tx.Curve
	// Sign signs msg.
	Sign(msg []byte) ([]byte, error)
	// Verify checks sig over msg and returns the public key it was made with.
	Verify(msg, sig []byte) ([]byte, error)
	// PublicKey returns the serialized public key.
	PublicKey() ([]byte, error)
	// Address returns the 20-byte account address.
	Address() (tx.Address, error)
}

// Aggregator combines partial signatures made under a group public key.
type Aggregator interface {
	AggregateSignatures(sigs [][]byte) ([]byte, error)
	VerifyAggregate(groupPub, msg, sig []byte) (bool, error)
}

// New returns a signer for curve backed by privKey.
func New(curve tx.Curve, privKey []byte) (Signer, error) {
	switch curve {
	case tx.CurveSecp256k1:
		return NewSecp(privKey)
	case tx.CurveBN256:
		return NewBN(privKey)
	default:
		return nil, fmt.Errorf("%w: %d", tx.ErrInvalidCurve, curve)
	}
}

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, b := range data {
		h.Write(b)
	}
	return h.Sum(nil)
}

// addressFromKey returns the last 20 bytes of Keccak256(key).
func addressFromKey(key []byte) tx.Address {
	var a tx.Address
	copy(a[:], Keccak256(key)[12:])
	return a
}
