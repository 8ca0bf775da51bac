package wallet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alicenetorg/libwallet-go/signer"
)

func testSeed(t *testing.T) []byte {
	t.Helper()
	seed, err := SeedFromMnemonic(abandonMnemonic, "")
	require.NoError(t, err)
	return seed
}

func TestDerivationPath(t *testing.T) {
	assert.Equal(t, "m/44'/1'/0'/0/7", DerivationPath(0, 7))
	assert.Equal(t, "m/44'/1'/3'/0/0", DerivationPath(3, 0))
}

func TestDeriveAccountKey(t *testing.T) {
	seed := testSeed(t)

	k0, err := DeriveAccountKey(seed, 0, 0)
	require.NoError(t, err)
	assert.Len(t, k0, 32)

	again, err := DeriveAccountKey(seed, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, k0, again, "derivation must be deterministic")

	k1, err := DeriveAccountKey(seed, 0, 1)
	require.NoError(t, err)
	assert.NotEqual(t, k0, k1)

	other, err := DeriveAccountKey(seed, 1, 0)
	require.NoError(t, err)
	assert.NotEqual(t, k0, other)

	// Derived keys are usable curve-1 signing keys.
	s, err := signer.NewSecp(k0)
	require.NoError(t, err)
	sig, err := s.Sign([]byte("msg"))
	require.NoError(t, err)
	_, err = s.Verify([]byte("msg"), sig)
	assert.NoError(t, err)
}

func TestDeriveAccountKeyErrors(t *testing.T) {
	seed := testSeed(t)

	_, err := DeriveAccountKey(nil, 0, 0)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = DeriveAccountKey(seed, 0, Hardened)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = DeriveAccountKey(seed, Hardened, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	_, err = DeriveAccountKey(seed, 0, MaxIndex)
	assert.NoError(t, err)
}
