package account

import "errors"

var (
	// ErrAccountExists indicates an account with the same address is already registered.
	ErrAccountExists = errors.New("account: account already added")

	// ErrAccountNotFound indicates no account is registered for an address.
	ErrAccountNotFound = errors.New("account: could not find account")

	// ErrNilSigner indicates a nil signer was supplied.
	ErrNilSigner = errors.New("account: signer is nil")
)
