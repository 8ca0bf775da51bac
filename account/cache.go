package account

import (
	"github.com/holiman/uint256"

	"github.com/alicenetorg/libwallet-go/tx"
)

// UnitCache holds the unspent units last fetched for an account. Coin
// selection takes units out of it as they are spent, so after a failed
// attempt it is stale and must be refilled from the ledger.
type UnitCache struct {
	valueUnits   []*tx.ValueUnit
	storageUnits []*tx.StorageUnit
	total        *uint256.Int
}

func newUnitCache() *UnitCache {
	return &UnitCache{total: new(uint256.Int)}
}

// SetValueUnits replaces the cached value units and the total the ledger
// reported for them.
func (c *UnitCache) SetValueUnits(units []*tx.ValueUnit, total *uint256.Int) {
	c.valueUnits = append([]*tx.ValueUnit(nil), units...)
	if total == nil {
		total = SumValue(units)
	}
	c.total = total.Clone()
}

// SetStorageUnits replaces the cached storage units.
func (c *UnitCache) SetStorageUnits(units []*tx.StorageUnit) {
	c.storageUnits = append([]*tx.StorageUnit(nil), units...)
}

// ValueUnits returns the cached value units.
func (c *UnitCache) ValueUnits() []*tx.ValueUnit {
	return append([]*tx.ValueUnit(nil), c.valueUnits...)
}

// StorageUnits returns the cached storage units.
func (c *UnitCache) StorageUnits() []*tx.StorageUnit {
	return append([]*tx.StorageUnit(nil), c.storageUnits...)
}

// Total returns the value total reported when the cache was filled.
func (c *UnitCache) Total() *uint256.Int {
	return c.total.Clone()
}

// TakeHighest removes and returns the value unit with the largest value.
// Ties go to the unit cached first. It returns nil when the cache is empty.
func (c *UnitCache) TakeHighest() *tx.ValueUnit {
	best := -1
	for i, u := range c.valueUnits {
		if best < 0 || u.Value.Gt(c.valueUnits[best].Value) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	u := c.valueUnits[best]
	c.valueUnits = append(c.valueUnits[:best], c.valueUnits[best+1:]...)
	return u
}

// Clear empties the cache.
func (c *UnitCache) Clear() {
	c.valueUnits = nil
	c.storageUnits = nil
	c.total = new(uint256.Int)
}

// SumValue adds up the values of units.
func SumValue(units []*tx.ValueUnit) *uint256.Int {
	sum := new(uint256.Int)
	for _, u := range units {
		if u.Value != nil {
			sum.Add(sum, u.Value)
		}
	}
	return sum
}
