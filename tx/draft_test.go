package tx

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraft_InputsAndOwners(t *testing.T) {
	d := NewDraft()
	op1 := Outpoint{TxHash: Hash{1}, OutIdx: 0}
	op2 := Outpoint{TxHash: Hash{2}, OutIdx: 3}

	in := d.AddInput(42, testAddress(1), op1, false)
	assert.Equal(t, SignaturePlaceholder, in.Signature)
	d.AddInput(42, testAddress(2), op2, true)

	assert.True(t, d.Spends(op1))
	assert.False(t, d.Spends(Outpoint{TxHash: Hash{1}, OutIdx: 1}))

	owner, ok := d.FindOwner(op2)
	require.True(t, ok)
	assert.Equal(t, testAddress(2), owner.Address)
	assert.True(t, owner.Storage)

	_, ok = d.FindOwner(Outpoint{TxHash: Hash{9}})
	assert.False(t, ok)
}

func TestDraft_CloneIsDeep(t *testing.T) {
	d := NewDraft()
	d.AddInput(1, testAddress(1), Outpoint{TxHash: Hash{1}}, false)
	d.Outputs = append(d.Outputs,
		Output{Value: &ValueOutput{Value: uint256.NewInt(5), Fee: uint256.NewInt(1), Owner: []byte{1}}},
		Output{Storage: &StorageOutput{OutIdx: 1, Deposit: uint256.NewInt(9), RawData: []byte("a")}},
	)

	c := d.Clone()
	c.Inputs[0].Signature[0] = 0
	c.Outputs[0].Value.Value.SetUint64(99)
	c.Outputs[1].Storage.RawData[0] = 'b'
	c.Fee.SetUint64(7)

	assert.Equal(t, SignaturePlaceholder, d.Inputs[0].Signature)
	assert.Equal(t, uint64(5), d.Outputs[0].Value.Value.Uint64())
	assert.Equal(t, []byte("a"), d.Outputs[1].Storage.RawData)
	assert.True(t, d.Fee.IsZero())
	assert.Len(t, c.StorageOutputs(), 1)
	assert.Equal(t, uint32(1), c.Outputs[1].OutIdx())
}
