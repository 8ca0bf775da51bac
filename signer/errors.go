package signer

import "errors"

var (
	// ErrInvalidPrivateKey indicates a private key of the wrong length or zero scalar.
	ErrInvalidPrivateKey = errors.New("signer: invalid private key")

	// ErrInvalidPublicKey indicates a public key that does not decode to a curve point.
	ErrInvalidPublicKey = errors.New("signer: invalid public key")

	// ErrInvalidSignature indicates a malformed signature or a failed verification.
	ErrInvalidSignature = errors.New("signer: invalid signature")

	// ErrNeedPublicKeys indicates a group operation on an empty public key set.
	ErrNeedPublicKeys = errors.New("signer: need public keys")

	// ErrNoSignatures indicates aggregation of an empty signature list.
	ErrNoSignatures = errors.New("signer: no signatures to aggregate")

	// ErrNoPrivateKey indicates a signing request on a verify-only signer.
	ErrNoPrivateKey = errors.New("signer: signer has no private key")
)
