package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not reach the ledger node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrRPCError indicates the node answered with an error body.
	ErrRPCError = errors.New("network: rpc error")

	// ErrTxNotFound indicates the requested transaction does not exist.
	ErrTxNotFound = errors.New("network: transaction not found")

	// ErrBroadcastRejected indicates the node did not return a hash for a broadcast.
	ErrBroadcastRejected = errors.New("network: broadcast rejected")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")

	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("network: not found")
)
