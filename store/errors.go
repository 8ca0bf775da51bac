package store

import "errors"

var (
	// ErrTxNotFound indicates the transaction is not in the journal.
	ErrTxNotFound = errors.New("store: transaction not found")

	// ErrDuplicateTx indicates a transaction with this hash is already journaled.
	ErrDuplicateTx = errors.New("store: duplicate transaction")

	// ErrStoreClosed indicates the journal has been closed.
	ErrStoreClosed = errors.New("store: journal closed")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("store: required parameter is nil")
)
