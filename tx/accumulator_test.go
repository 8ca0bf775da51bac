package tx

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccumulator_Add(t *testing.T) {
	a := NewAccumulator()
	alice, bob := testAddress(1), testAddress(2)

	a.AddValue(uint256.NewInt(100), alice, nil)
	a.AddValue(uint256.NewInt(7), bob, nil)
	ref := &StorageRef{Index: Index{31: 1}, IssuedAt: 4}
	a.Add(big.NewInt(-30), alice, ref)

	require.Equal(t, 2, a.Len())
	obs := a.Obligations()
	assert.Equal(t, alice, obs[0].Payer)
	assert.Equal(t, int64(70), obs[0].Total.Int64())
	assert.Equal(t, []StorageRef{*ref}, obs[0].StorageRefs)
	assert.Equal(t, bob, obs[1].Payer)
	assert.Empty(t, obs[1].StorageRefs)
}

func TestAccumulator_NegativeTotal(t *testing.T) {
	a := NewAccumulator()
	a.Add(big.NewInt(-5), testAddress(1), nil)
	assert.Equal(t, -1, a.Get(testAddress(1)).Total.Sign())
	assert.Nil(t, a.Get(testAddress(2)))
}

func TestAccumulator_CloneIsolated(t *testing.T) {
	a := NewAccumulator()
	a.AddValue(uint256.NewInt(10), testAddress(1), &StorageRef{IssuedAt: 1})
	snap := a.Clone()

	a.AddValue(uint256.NewInt(5), testAddress(1), &StorageRef{IssuedAt: 2})
	a.AddValue(uint256.NewInt(5), testAddress(3), nil)

	assert.Equal(t, 1, snap.Len())
	ob := snap.Get(testAddress(1))
	assert.Equal(t, int64(10), ob.Total.Int64())
	assert.Len(t, ob.StorageRefs, 1)

	a.Reset()
	assert.Equal(t, 0, a.Len())
}
