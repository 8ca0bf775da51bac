package tx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress(b byte) Address {
	var a Address
	copy(a[:], bytes.Repeat([]byte{b}, AddressLen))
	return a
}

func TestOwnerRoundTrip(t *testing.T) {
	addr := testAddress(0x5a)
	for _, v := range []byte{ValidationValue, ValidationStorage} {
		for _, c := range []Curve{CurveSecp256k1, CurveBN256} {
			raw, err := NewOwner(v, c, addr)
			require.NoError(t, err)
			require.Len(t, raw, OwnerLen)
			assert.Equal(t, v, raw[0])
			assert.Equal(t, byte(c), raw[1])

			o, err := ExtractOwner(raw)
			require.NoError(t, err)
			assert.Equal(t, Owner{Validation: v, Curve: c, Address: addr}, o)
		}
	}
}

func TestExtractOwner_InvalidLength(t *testing.T) {
	for _, n := range []int{0, 1, 21, 23, 64} {
		_, err := ExtractOwner(make([]byte, n))
		assert.ErrorIs(t, err, ErrInvalidOwner, "len %d", n)
	}
}

func TestNewOwner_Invalid(t *testing.T) {
	_, err := NewOwner(2, CurveSecp256k1, testAddress(1))
	assert.ErrorIs(t, err, ErrInvalidValidation)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewOwner(ValidationValue, Curve(9), testAddress(1))
	assert.ErrorIs(t, err, ErrInvalidCurve)
}

func TestPrefixSignature(t *testing.T) {
	sig := []byte{0xaa, 0xbb}
	assert.Equal(t, []byte{3, 2, 0xaa, 0xbb}, Prefix(ValidationStorage, CurveBN256, sig))
}
