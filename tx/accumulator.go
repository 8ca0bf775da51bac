package tx

import (
	"math/big"

	"github.com/holiman/uint256"
)

// StorageRef names a storage record whose reward may offset an obligation.
type StorageRef struct {
	Index    Index
	IssuedAt uint32
}

// Obligation is the net value a payer owes across the outputs of a draft.
// Total is signed: reclaimed storage rewards can drive it below zero.
type Obligation struct {
	Payer       Address
	Total       *big.Int
	StorageRefs []StorageRef
}

// Accumulator tracks obligations per payer in first-seen order.
type Accumulator struct {
	entries []*Obligation
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add adds value to payer's obligation, creating it if needed, and records
// ref when it is non-nil.
func (a *Accumulator) Add(value *big.Int, payer Address, ref *StorageRef) {
	ob := a.Get(payer)
	if ob == nil {
		ob = &Obligation{Payer: payer, Total: new(big.Int)}
		a.entries = append(a.entries, ob)
	}
	ob.Total.Add(ob.Total, value)
	if ref != nil {
		ob.StorageRefs = append(ob.StorageRefs, *ref)
	}
}

// AddValue is Add for an unsigned value.
func (a *Accumulator) AddValue(value *uint256.Int, payer Address, ref *StorageRef) {
	a.Add(value.ToBig(), payer, ref)
}

// Get returns payer's obligation or nil.
func (a *Accumulator) Get(payer Address) *Obligation {
	for _, ob := range a.entries {
		if ob.Payer == payer {
			return ob
		}
	}
	return nil
}

// Obligations returns the entries in first-seen order. The slice is a copy;
// the entries are shared.
func (a *Accumulator) Obligations() []*Obligation {
	return append([]*Obligation(nil), a.entries...)
}

// Len returns the number of payers.
func (a *Accumulator) Len() int { return len(a.entries) }

// Reset drops all obligations.
func (a *Accumulator) Reset() { a.entries = nil }

// Clone returns a deep copy used to snapshot state around fee estimation.
func (a *Accumulator) Clone() *Accumulator {
	c := &Accumulator{entries: make([]*Obligation, 0, len(a.entries))}
	for _, ob := range a.entries {
		c.entries = append(c.entries, &Obligation{
			Payer:       ob.Payer,
			Total:       new(big.Int).Set(ob.Total),
			StorageRefs: append([]StorageRef(nil), ob.StorageRefs...),
		})
	}
	return c
}
