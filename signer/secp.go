package signer

import (
	"bytes"
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/alicenetorg/libwallet-go/tx"
)

const (
	// SecpSignatureLen is R || S || recovery id.
	SecpSignatureLen = 65

	compactHeader = 27
)

// Secp signs with a secp256k1 key. Messages are hashed with Keccak-256 and
// signatures carry a recovery id so that verification yields the key.
type Secp struct {
	priv *ec.PrivateKey
	pub  *ec.PublicKey
}

var _ Signer = (*Secp)(nil)

// NewSecp creates a signer from a 32-byte private key.
func NewSecp(privKey []byte) (*Secp, error) {
	if len(privKey) != 32 || bytes.Equal(privKey, make([]byte, 32)) {
		return nil, fmt.Errorf("%w: secp256k1 key must be 32 non-zero bytes", ErrInvalidPrivateKey)
	}
	priv, pub := ec.PrivateKeyFromBytes(privKey)
	return &Secp{priv: priv, pub: pub}, nil
}

// Curve implements Signer.
func (s *Secp) Curve() tx.Curve { return tx.CurveSecp256k1 }

// PublicKey returns the 65-byte uncompressed public key.
func (s *Secp) PublicKey() ([]byte, error) {
	return s.pub.Uncompressed(), nil
}

// Address returns Keccak256(pub[1:])[12:].
func (s *Secp) Address() (tx.Address, error) {
	return SecpAddress(s.pub.Uncompressed())
}

// Sign returns R || S || v over Keccak256(msg).
func (s *Secp) Sign(msg []byte) ([]byte, error) {
	compact, err := ec.SignCompact(ec.S256(), s.priv, Keccak256(msg), false)
	if err != nil {
		return nil, fmt.Errorf("secp256k1 sign: %w", err)
	}
	sig := make([]byte, SecpSignatureLen)
	copy(sig, compact[1:])
	sig[64] = compact[0] - compactHeader
	return sig, nil
}

// Verify recovers the signing key and checks it matches s.
func (s *Secp) Verify(msg, sig []byte) ([]byte, error) {
	pub, err := RecoverSecp(msg, sig)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pub, s.pub.Uncompressed()) {
		return nil, fmt.Errorf("%w: signed by a different key", ErrInvalidSignature)
	}
	return pub, nil
}

// RecoverSecp returns the uncompressed public key that produced sig over msg.
func RecoverSecp(msg, sig []byte) ([]byte, error) {
	if len(sig) != SecpSignatureLen {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, SecpSignatureLen, len(sig))
	}
	if sig[64] > 3 {
		return nil, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}
	compact := make([]byte, SecpSignatureLen)
	compact[0] = sig[64] + compactHeader
	copy(compact[1:], sig[:64])
	pub, _, err := ec.RecoverCompact(compact, Keccak256(msg))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}
	return pub.Uncompressed(), nil
}

// SecpAddress derives the address of an uncompressed secp256k1 public key.
func SecpAddress(pub []byte) (tx.Address, error) {
	if len(pub) != 65 || pub[0] != 0x04 {
		return tx.Address{}, fmt.Errorf("%w: expected 65-byte uncompressed key", ErrInvalidPublicKey)
	}
	return addressFromKey(pub[1:]), nil
}
