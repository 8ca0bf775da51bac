// Package account keeps the accounts a wallet can sign for, keyed by
// address, together with their cached unspent units.
package account

import (
	"fmt"
	"sync"

	"github.com/alicenetorg/libwallet-go/signer"
	"github.com/alicenetorg/libwallet-go/tx"
)

// Account is a signing identity on one curve.
type Account struct {
	Address tx.Address
	Curve   tx.Curve
	Signer  signer.Signer
	Units   *UnitCache
}

// Owner returns the owner prefix for outputs locked to this account.
func (a *Account) Owner(validation byte) []byte {
	return tx.Owner{Validation: validation, Curve: a.Curve, Address: a.Address}.Bytes()
}

// Registry holds accounts in insertion order.
type Registry struct {
	mu       sync.RWMutex
	accounts []*Account
	byAddr   map[tx.Address]*Account
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byAddr: make(map[tx.Address]*Account)}
}

// AddAccount registers the account controlled by privKey on curve.
func (r *Registry) AddAccount(privKey []byte, curve tx.Curve) (*Account, error) {
	s, err := signer.New(curve, privKey)
	if err != nil {
		return nil, fmt.Errorf("add account: %w", err)
	}
	return r.AddSigner(s)
}

// AddMultiSig registers a BN256 group account over pubKeys. member, when
// non-nil, is this wallet's own share of the group.
func (r *Registry) AddMultiSig(member *signer.BN, pubKeys ...[]byte) (*Account, *signer.MultiSig, error) {
	ms := signer.NewMultiSig(member)
	if _, err := ms.AddPublicKeys(pubKeys...); err != nil {
		return nil, nil, fmt.Errorf("add multisig: %w", err)
	}
	acct, err := r.AddSigner(ms)
	if err != nil {
		return nil, nil, err
	}
	return acct, ms, nil
}

// AddSigner registers an account for an existing signer.
func (r *Registry) AddSigner(s signer.Signer) (*Account, error) {
	if s == nil {
		return nil, ErrNilSigner
	}
	addr, err := s.Address()
	if err != nil {
		return nil, fmt.Errorf("add account: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byAddr[addr]; ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	acct := &Account{
		Address: addr,
		Curve:   s.Curve(),
		Signer:  s,
		Units:   newUnitCache(),
	}
	r.accounts = append(r.accounts, acct)
	r.byAddr[addr] = acct
	return acct, nil
}

// Account returns the account registered for addr.
func (r *Registry) Account(addr tx.Address) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acct, ok := r.byAddr[addr]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return acct, nil
}

// Remove unregisters addr.
func (r *Registry) Remove(addr tx.Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byAddr[addr]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	delete(r.byAddr, addr)
	for i, a := range r.accounts {
		if a.Address == addr {
			r.accounts = append(r.accounts[:i], r.accounts[i+1:]...)
			break
		}
	}
	return nil
}

// Accounts returns all accounts in insertion order.
func (r *Registry) Accounts() []*Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Account(nil), r.accounts...)
}
