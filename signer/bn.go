package signer

import (
	"encoding/binary"
	"fmt"
	"math/big"

	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"

	"github.com/alicenetorg/libwallet-go/tx"
)

const (
	// G1Len is the marshalled size of a G1 point (a BLS signature).
	G1Len = 64
	// G2Len is the marshalled size of a G2 point (a BLS public key).
	G2Len = 128
	// BNSignatureLen is public key || signature point.
	BNSignatureLen = G2Len + G1Len
)

// BN signs with a BN256 BLS key. The signed message is prefixed with the
// public key the signature is made under, and the public key travels with
// the signature so that verification yields it.
type BN struct {
	sk  *big.Int
	pub *bn256.G2
}

var _ Signer = (*BN)(nil)

// NewBN creates a signer from a private scalar. The scalar is reduced
// modulo the group order and must not be zero.
func NewBN(privKey []byte) (*BN, error) {
	if len(privKey) == 0 || len(privKey) > 32 {
		return nil, fmt.Errorf("%w: bn256 key must be 1..32 bytes", ErrInvalidPrivateKey)
	}
	sk := new(big.Int).SetBytes(privKey)
	sk.Mod(sk, bn256.Order)
	if sk.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero scalar", ErrInvalidPrivateKey)
	}
	return &BN{sk: sk, pub: new(bn256.G2).ScalarBaseMult(sk)}, nil
}

// Curve implements Signer.
func (b *BN) Curve() tx.Curve { return tx.CurveBN256 }

// PublicKey returns the 128-byte G2 public key.
func (b *BN) PublicKey() ([]byte, error) { return b.pub.Marshal(), nil }

// Address returns Keccak256(pub)[12:].
func (b *BN) Address() (tx.Address, error) { return addressFromKey(b.pub.Marshal()), nil }

// Sign signs pub || msg.
func (b *BN) Sign(msg []byte) ([]byte, error) {
	return b.signUnder(b.pub.Marshal(), msg)
}

// SignGroup produces a partial signature over groupPub || msg for later
// aggregation.
func (b *BN) SignGroup(groupPub, msg []byte) ([]byte, error) {
	if len(groupPub) != G2Len {
		return nil, fmt.Errorf("%w: group key must be %d bytes", ErrInvalidPublicKey, G2Len)
	}
	return b.signUnder(groupPub, msg)
}

func (b *BN) signUnder(prefix, msg []byte) ([]byte, error) {
	h, err := hashToG1(concat(prefix, msg))
	if err != nil {
		return nil, fmt.Errorf("bn256 sign: %w", err)
	}
	sig := new(bn256.G1).ScalarMult(h, b.sk)
	return marshalBNSignature(b.pub, sig), nil
}

// Verify checks sig over pub || msg and requires it to be made with b's key.
func (b *BN) Verify(msg, sig []byte) ([]byte, error) {
	pub, err := VerifyBN(msg, sig)
	if err != nil {
		return nil, err
	}
	if string(pub) != string(b.pub.Marshal()) {
		return nil, fmt.Errorf("%w: signed by a different key", ErrInvalidSignature)
	}
	return pub, nil
}

// VerifyBN checks a BN256 signature made under its embedded public key and
// returns that key.
func VerifyBN(msg, sig []byte) ([]byte, error) {
	pub, point, err := unmarshalBNSignature(sig)
	if err != nil {
		return nil, err
	}
	pubBytes := pub.Marshal()
	if err := verifyBLS(concat(pubBytes, msg), point, pub); err != nil {
		return nil, err
	}
	return pubBytes, nil
}

// BNAddress derives the address of a marshalled G2 public key.
func BNAddress(pub []byte) (tx.Address, error) {
	if len(pub) != G2Len {
		return tx.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, G2Len, len(pub))
	}
	if _, err := new(bn256.G2).Unmarshal(pub); err != nil {
		return tx.Address{}, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	return addressFromKey(pub), nil
}

func verifyBLS(msg []byte, sig *bn256.G1, pub *bn256.G2) error {
	h, err := hashToG1(msg)
	if err != nil {
		return err
	}
	// e(sig, g2) == e(H(m), pub)
	g2 := new(bn256.G2).ScalarBaseMult(big.NewInt(1))
	negH := new(bn256.G1).Neg(h)
	if !bn256.PairingCheck([]*bn256.G1{sig, negH}, []*bn256.G2{g2, pub}) {
		return fmt.Errorf("%w: pairing check failed", ErrInvalidSignature)
	}
	return nil
}

// hashToG1 maps msg to a curve point by try-and-increment over
// y^2 = x^3 + 3.
func hashToG1(msg []byte) (*bn256.G1, error) {
	three := big.NewInt(3)
	var ctr [4]byte
	for i := uint32(0); i < 256; i++ {
		binary.BigEndian.PutUint32(ctr[:], i)
		x := new(big.Int).SetBytes(Keccak256(ctr[:], msg))
		x.Mod(x, bn256.P)
		rhs := new(big.Int).Exp(x, three, bn256.P)
		rhs.Add(rhs, three).Mod(rhs, bn256.P)
		y := new(big.Int).ModSqrt(rhs, bn256.P)
		if y == nil {
			continue
		}
		buf := make([]byte, G1Len)
		x.FillBytes(buf[:32])
		y.FillBytes(buf[32:])
		p := new(bn256.G1)
		if _, err := p.Unmarshal(buf); err != nil {
			return nil, fmt.Errorf("hash to curve: %w", err)
		}
		return p, nil
	}
	return nil, fmt.Errorf("hash to curve: no point found")
}

func marshalBNSignature(pub *bn256.G2, sig *bn256.G1) []byte {
	return concat(pub.Marshal(), sig.Marshal())
}

func unmarshalBNSignature(b []byte) (*bn256.G2, *bn256.G1, error) {
	if len(b) != BNSignatureLen {
		return nil, nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, BNSignatureLen, len(b))
	}
	pub := new(bn256.G2)
	if _, err := pub.Unmarshal(b[:G2Len]); err != nil {
		return nil, nil, fmt.Errorf("%w: public key: %w", ErrInvalidSignature, err)
	}
	sig := new(bn256.G1)
	if _, err := sig.Unmarshal(b[G2Len:]); err != nil {
		return nil, nil, fmt.Errorf("%w: point: %w", ErrInvalidSignature, err)
	}
	return pub, sig, nil
}

func concat(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}
