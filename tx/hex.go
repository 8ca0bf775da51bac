package tx

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// DecodeHex decodes a hexadecimal byte string. An optional 0x prefix is
// stripped, case is ignored and an odd-length string is padded with a single
// leading zero.
func DecodeHex(s string) ([]byte, error) {
	s = normalizeHex(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
	return b, nil
}

// EncodeHex returns the lower-case, unprefixed hex form of b.
func EncodeHex(b []byte) string {
	return hex.EncodeToString(b)
}

// NormalizeHex returns the canonical form of a hex string: lower-case,
// even-length, without 0x prefix. Invalid input is rejected.
func NormalizeHex(s string) (string, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	return EncodeHex(b), nil
}

func normalizeHex(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	s = strings.ToLower(s)
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return s
}

// ParseValue decodes a big-endian hex value. An empty string is zero.
func ParseValue(s string) (*uint256.Int, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return nil, err
	}
	for len(b) > 32 {
		if b[0] != 0 {
			return nil, fmt.Errorf("%w: %q", ErrValueOverflow, s)
		}
		b = b[1:]
	}
	return new(uint256.Int).SetBytes(b), nil
}

// FormatValue encodes v as a minimal even-length big-endian hex string.
// Zero encodes as "00".
func FormatValue(v *uint256.Int) string {
	if v == nil || v.IsZero() {
		return "00"
	}
	return EncodeHex(v.Bytes())
}

// ParseAddress decodes a 20-byte address from hex.
func ParseAddress(s string) (Address, error) {
	var a Address
	b, err := DecodeHex(s)
	if err != nil {
		return a, err
	}
	if len(b) != AddressLen {
		return a, fmt.Errorf("%w: got %d bytes", ErrInvalidAddress, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// ParseHash decodes a 32-byte hash from hex.
func ParseHash(s string) (Hash, error) {
	var h Hash
	b, err := DecodeHex(s)
	if err != nil {
		return h, err
	}
	if len(b) != HashLen {
		return h, fmt.Errorf("%w: hash must be %d bytes, got %d", ErrValidation, HashLen, len(b))
	}
	copy(h[:], b)
	return h, nil
}
