package signer

import (
	"fmt"

	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"

	"github.com/alicenetorg/libwallet-go/tx"
)

// MultiSig is a BN256 group account. Member public keys are accumulated and
// aggregated on demand; if a member key is attached, the group can also
// produce this member's partial signatures.
type MultiSig struct {
	pubKeys [][]byte
	member  *BN
}

var (
	_ Signer     = (*MultiSig)(nil)
	_ Aggregator = (*MultiSig)(nil)
)

// NewMultiSig creates a group. member may be nil for a verify-only group.
func NewMultiSig(member *BN) *MultiSig {
	return &MultiSig{member: member}
}

// Curve implements Signer. Groups always use BN256.
func (m *MultiSig) Curve() tx.Curve { return tx.CurveBN256 }

// AddPublicKeys appends member keys and returns the new group key.
func (m *MultiSig) AddPublicKeys(keys ...[]byte) ([]byte, error) {
	for _, k := range keys {
		if len(k) != G2Len {
			return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidPublicKey, G2Len, len(k))
		}
		if _, err := new(bn256.G2).Unmarshal(k); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}
		m.pubKeys = append(m.pubKeys, append([]byte(nil), k...))
	}
	return m.PublicKey()
}

// PublicKeys returns the member keys in insertion order.
func (m *MultiSig) PublicKeys() [][]byte {
	return append([][]byte(nil), m.pubKeys...)
}

// PublicKey returns the aggregate of all member keys.
func (m *MultiSig) PublicKey() ([]byte, error) {
	return AggregatePublicKeys(m.pubKeys)
}

// Address returns the address of the aggregate key.
func (m *MultiSig) Address() (tx.Address, error) {
	pub, err := m.PublicKey()
	if err != nil {
		return tx.Address{}, err
	}
	return addressFromKey(pub), nil
}

// Sign returns this member's partial signature over groupPub || msg.
func (m *MultiSig) Sign(msg []byte) ([]byte, error) {
	if m.member == nil {
		return nil, ErrNoPrivateKey
	}
	groupPub, err := m.PublicKey()
	if err != nil {
		return nil, err
	}
	return m.member.SignGroup(groupPub, msg)
}

// Verify checks a partial or aggregate signature made under the group key
// and returns the public key embedded in it.
func (m *MultiSig) Verify(msg, sig []byte) ([]byte, error) {
	groupPub, err := m.PublicKey()
	if err != nil {
		return nil, err
	}
	pub, point, err := unmarshalBNSignature(sig)
	if err != nil {
		return nil, err
	}
	if err := verifyBLS(concat(groupPub, msg), point, pub); err != nil {
		return nil, err
	}
	return pub.Marshal(), nil
}

// AggregateSignatures implements Aggregator.
func (m *MultiSig) AggregateSignatures(sigs [][]byte) ([]byte, error) {
	return AggregateSignatures(sigs)
}

// VerifyAggregate implements Aggregator. The aggregate must carry groupPub.
func (m *MultiSig) VerifyAggregate(groupPub, msg, sig []byte) (bool, error) {
	return VerifyAggregate(groupPub, msg, sig)
}

// AggregatePublicKeys sums G2 public keys.
func AggregatePublicKeys(keys [][]byte) ([]byte, error) {
	if len(keys) == 0 {
		return nil, ErrNeedPublicKeys
	}
	agg := new(bn256.G2)
	for _, k := range keys {
		p := new(bn256.G2)
		if _, err := p.Unmarshal(k); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
		}
		agg.Add(agg, p)
	}
	return agg.Marshal(), nil
}

// AggregateSignatures sums partial signatures and their public keys into a
// single signature carrying the group key.
func AggregateSignatures(sigs [][]byte) ([]byte, error) {
	if len(sigs) == 0 {
		return nil, ErrNoSignatures
	}
	aggSig := new(bn256.G1)
	aggPub := new(bn256.G2)
	for i, s := range sigs {
		pub, point, err := unmarshalBNSignature(s)
		if err != nil {
			return nil, fmt.Errorf("aggregate signature %d: %w", i, err)
		}
		aggSig.Add(aggSig, point)
		aggPub.Add(aggPub, pub)
	}
	return marshalBNSignature(aggPub, aggSig), nil
}

// VerifyAggregate checks an aggregate signature over groupPub || msg.
func VerifyAggregate(groupPub, msg, sig []byte) (bool, error) {
	pub, point, err := unmarshalBNSignature(sig)
	if err != nil {
		return false, err
	}
	if string(pub.Marshal()) != string(groupPub) {
		return false, nil
	}
	if err := verifyBLS(concat(groupPub, msg), point, pub); err != nil {
		return false, nil
	}
	return true, nil
}
