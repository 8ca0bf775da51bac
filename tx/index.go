package tx

import (
	"fmt"
	"strings"
)

// ParseIndex converts a storage index into a 32-byte key, left-padded with
// zeros. Only a 0x-prefixed string is read as hex; anything else is taken as
// UTF-8 text, so "cafe" is the four bytes 63 61 66 65.
func ParseIndex(s string) (Index, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		b, err := DecodeHex(s)
		if err != nil {
			return Index{}, fmt.Errorf("parse index: %w", err)
		}
		return IndexFromBytes(b)
	}
	return IndexFromBytes([]byte(s))
}

// IndexFromBytes left-pads b to 32 bytes.
func IndexFromBytes(b []byte) (Index, error) {
	var idx Index
	if len(b) == 0 {
		return idx, fmt.Errorf("%w: empty index", ErrValidation)
	}
	if len(b) > IndexLen {
		return idx, fmt.Errorf("%w: %d bytes", ErrIndexTooLarge, len(b))
	}
	copy(idx[IndexLen-len(b):], b)
	return idx, nil
}
