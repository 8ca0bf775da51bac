package canon

import "errors"

var (
	// ErrNilDraft indicates that no draft was supplied.
	ErrNilDraft = errors.New("canon: nil draft")

	// ErrEmptyOutput indicates an output with neither a value nor a storage body.
	ErrEmptyOutput = errors.New("canon: output has no body")

	// ErrEncode indicates that a preimage could not be encoded.
	ErrEncode = errors.New("canon: encode preimage")
)
