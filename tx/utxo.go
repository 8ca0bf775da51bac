package tx

import (
	"fmt"

	"github.com/holiman/uint256"
)

const (
	// AddressLen is the length of an account address (public key hash).
	AddressLen = 20
	// HashLen is the length of transaction hashes and unit identifiers.
	HashLen = 32
	// IndexLen is the length of a storage index key.
	IndexLen = 32
	// OwnerLen is the length of an encoded owner prefix.
	OwnerLen = 2 + AddressLen
)

// Curve identifies the signature scheme securing an output.
type Curve uint8

const (
	// CurveSecp256k1 is the single-signer ECDSA curve.
	CurveSecp256k1 Curve = 1
	// CurveBN256 is the pairing curve used for BLS and group signatures.
	CurveBN256 Curve = 2
)

// Valid reports whether c is a supported curve.
func (c Curve) Valid() bool {
	return c == CurveSecp256k1 || c == CurveBN256
}

func (c Curve) String() string {
	switch c {
	case CurveSecp256k1:
		return "secp256k1"
	case CurveBN256:
		return "bn256"
	default:
		return fmt.Sprintf("curve(%d)", uint8(c))
	}
}

// Address is a 20-byte account identifier derived from a public key.
type Address [AddressLen]byte

func (a Address) String() string { return EncodeHex(a[:]) }

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool { return a == Address{} }

// Hash is a 32-byte transaction hash or unit identifier.
type Hash [HashLen]byte

func (h Hash) String() string { return EncodeHex(h[:]) }

// Index is a 32-byte storage index key.
type Index [IndexLen]byte

func (i Index) String() string { return EncodeHex(i[:]) }

// Outpoint identifies an output by origin transaction hash and output index.
type Outpoint struct {
	TxHash Hash
	OutIdx uint32
}

func (o Outpoint) String() string { return fmt.Sprintf("%s:%d", o.TxHash, o.OutIdx) }

// ValueUnit is an unspent output carrying native value.
type ValueUnit struct {
	ChainID uint32
	TxHash  Hash
	OutIdx  uint32
	Value   *uint256.Int
	Owner   []byte // 22-byte owner prefix
	Fee     *uint256.Int
}

// Outpoint returns the identity of the unit.
func (u *ValueUnit) Outpoint() Outpoint { return Outpoint{TxHash: u.TxHash, OutIdx: u.OutIdx} }

// StorageUnit is an unspent leased key/value record.
type StorageUnit struct {
	ChainID   uint32
	TxHash    Hash
	OutIdx    uint32
	Index     Index
	IssuedAt  uint32
	Deposit   *uint256.Int
	RawData   []byte
	Owner     []byte // 22-byte owner prefix
	Fee       *uint256.Int
	Signature []byte
}

// Outpoint returns the identity of the unit.
func (u *StorageUnit) Outpoint() Outpoint { return Outpoint{TxHash: u.TxHash, OutIdx: u.OutIdx} }

// FeeSchedule holds the ledger's current fees. It is fetched per draft and
// passed explicitly; nothing caches it globally.
type FeeSchedule struct {
	MinTxFee      *uint256.Int
	ValueStoreFee *uint256.Int
	DataStoreFee  *uint256.Int
}

// Clone returns a deep copy of fs.
func (fs *FeeSchedule) Clone() *FeeSchedule {
	if fs == nil {
		return nil
	}
	return &FeeSchedule{
		MinTxFee:      cloneValue(fs.MinTxFee),
		ValueStoreFee: cloneValue(fs.ValueStoreFee),
		DataStoreFee:  cloneValue(fs.DataStoreFee),
	}
}

func cloneValue(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v.Clone()
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
