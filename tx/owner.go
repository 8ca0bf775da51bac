package tx

import "fmt"

// Validation bytes select the rule set that unlocks an output.
const (
	ValidationValue   byte = 1
	ValidationStorage byte = 3
)

// Owner is a decoded owner prefix.
type Owner struct {
	Validation byte
	Curve      Curve
	Address    Address
}

// Bytes returns the 22-byte encoding validation || curve || address.
func (o Owner) Bytes() []byte {
	return Prefix(o.Validation, o.Curve, o.Address[:])
}

// Prefix prepends the validation and curve bytes to base. It is used both
// for owner prefixes (base is an address) and for signatures.
func Prefix(validation byte, curve Curve, base []byte) []byte {
	out := make([]byte, 0, 2+len(base))
	out = append(out, validation, byte(curve))
	return append(out, base...)
}

// NewOwner validates its arguments and returns the owner prefix bytes.
func NewOwner(validation byte, curve Curve, addr Address) ([]byte, error) {
	if validation != ValidationValue && validation != ValidationStorage {
		return nil, fmt.Errorf("%w: %d", ErrInvalidValidation, validation)
	}
	if !curve.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCurve, curve)
	}
	return Owner{Validation: validation, Curve: curve, Address: addr}.Bytes(), nil
}

// ExtractOwner decodes a 22-byte owner prefix.
func ExtractOwner(b []byte) (Owner, error) {
	var o Owner
	if len(b) != OwnerLen {
		return o, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidOwner, OwnerLen, len(b))
	}
	o.Validation = b[0]
	o.Curve = Curve(b[1])
	copy(o.Address[:], b[2:])
	return o, nil
}
