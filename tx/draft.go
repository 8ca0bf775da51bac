package tx

import "github.com/holiman/uint256"

// SignaturePlaceholder marks an unsigned signature field before the encoder
// replaces it with the message to be signed.
var SignaturePlaceholder = []byte{0xc0, 0xff, 0xee}

// Input spends a previously created output.
type Input struct {
	ChainID   uint32
	Consumed  Outpoint
	Signature []byte
	TxHash    Hash // filled by the canonical encoder
}

// InputOwner records which account must sign an input.
type InputOwner struct {
	Address  Address
	Consumed Outpoint
	Storage  bool
}

// ValueOutput transfers native value to an owner.
type ValueOutput struct {
	ChainID uint32
	Value   *uint256.Int
	OutIdx  uint32
	Owner   []byte
	Fee     *uint256.Int
	TxHash  Hash
}

// StorageOutput creates a leased key/value record.
type StorageOutput struct {
	ChainID   uint32
	Index     Index
	IssuedAt  uint32
	Deposit   *uint256.Int
	RawData   []byte
	OutIdx    uint32
	Owner     []byte
	Fee       *uint256.Int
	Signature []byte
	TxHash    Hash
}

// Output is a tagged union: exactly one of Value or Storage is set.
type Output struct {
	Value   *ValueOutput
	Storage *StorageOutput
}

// OutIdx returns the output's index within the transaction.
func (o Output) OutIdx() uint32 {
	if o.Storage != nil {
		return o.Storage.OutIdx
	}
	if o.Value != nil {
		return o.Value.OutIdx
	}
	return 0
}

// Draft is a transaction under construction.
//
// Inputs and Owners are appended in lock-step, but owners are matched to
// inputs by outpoint because the encoder may reorder fields. Output order is
// preserved: an output's OutIdx equals its position.
type Draft struct {
	Inputs  []*Input
	Outputs []Output
	Fee     *uint256.Int
	Owners  []InputOwner
}

// NewDraft returns an empty draft with a zero fee.
func NewDraft() *Draft {
	return &Draft{Fee: new(uint256.Int)}
}

// AddInput appends an input spending op and records its owner.
func (d *Draft) AddInput(chainID uint32, owner Address, op Outpoint, storage bool) *Input {
	in := &Input{
		ChainID:   chainID,
		Consumed:  op,
		Signature: cloneBytes(SignaturePlaceholder),
	}
	d.Inputs = append(d.Inputs, in)
	d.Owners = append(d.Owners, InputOwner{Address: owner, Consumed: op, Storage: storage})
	return in
}

// Spends reports whether op is already consumed by an input of d.
func (d *Draft) Spends(op Outpoint) bool {
	for _, in := range d.Inputs {
		if in.Consumed == op {
			return true
		}
	}
	return false
}

// FindOwner returns the owner record for the input consuming op.
func (d *Draft) FindOwner(op Outpoint) (InputOwner, bool) {
	for _, o := range d.Owners {
		if o.Consumed == op {
			return o, true
		}
	}
	return InputOwner{}, false
}

// NextOutIdx returns the index the next appended output will receive.
func (d *Draft) NextOutIdx() uint32 {
	return uint32(len(d.Outputs))
}

// StorageOutputs returns the storage outputs in transaction order.
func (d *Draft) StorageOutputs() []*StorageOutput {
	var out []*StorageOutput
	for _, o := range d.Outputs {
		if o.Storage != nil {
			out = append(out, o.Storage)
		}
	}
	return out
}

// Clone returns a deep copy of d.
func (d *Draft) Clone() *Draft {
	c := &Draft{
		Fee:    cloneValue(d.Fee),
		Owners: append([]InputOwner(nil), d.Owners...),
	}
	for _, in := range d.Inputs {
		cp := *in
		cp.Signature = cloneBytes(in.Signature)
		c.Inputs = append(c.Inputs, &cp)
	}
	for _, o := range d.Outputs {
		var co Output
		if o.Value != nil {
			v := *o.Value
			v.Value = cloneValue(o.Value.Value)
			v.Fee = cloneValue(o.Value.Fee)
			v.Owner = cloneBytes(o.Value.Owner)
			co.Value = &v
		}
		if o.Storage != nil {
			s := *o.Storage
			s.Deposit = cloneValue(o.Storage.Deposit)
			s.Fee = cloneValue(o.Storage.Fee)
			s.Owner = cloneBytes(o.Storage.Owner)
			s.RawData = cloneBytes(o.Storage.RawData)
			s.Signature = cloneBytes(o.Storage.Signature)
			co.Storage = &s
		}
		c.Outputs = append(c.Outputs, co)
	}
	return c
}
