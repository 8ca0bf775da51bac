package wallet

import (
	"fmt"

	bip32 "github.com/bsv-blockchain/go-sdk/compat/bip32"
	chaincfg "github.com/bsv-blockchain/go-sdk/transaction/chaincfg"
)

const (
	// PurposeBIP44 is the BIP44 purpose level.
	PurposeBIP44 = 44
	// CoinType is the SLIP-44 coin type used for account keys.
	CoinType = 1
	// ExternalChain is the receive chain.
	ExternalChain = 0

	// Hardened is the BIP32 hardened offset.
	Hardened = 0x80000000
	// MaxIndex is the largest non-hardened index.
	MaxIndex = Hardened - 1
)

// DerivationPath returns the path DeriveAccountKey uses for account and index.
func DerivationPath(account, index uint32) string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", PurposeBIP44, CoinType, account, ExternalChain, index)
}

// DeriveAccountKey derives the secp256k1 private key at
// m/44'/1'/account'/0/index from a BIP39 seed.
func DeriveAccountKey(seed []byte, account, index uint32) ([]byte, error) {
	if len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	if account > MaxIndex || index > MaxIndex {
		return nil, fmt.Errorf("%w: account %d index %d", ErrIndexOutOfRange, account, index)
	}

	// The network params only select the extended key serialization
	// prefix; derived key bytes are identical on every network.
	key, err := bip32.NewMaster(seed, &chaincfg.MainNet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDerivationFailed, err)
	}
	for depth, child := range []uint32{
		PurposeBIP44 + Hardened,
		CoinType + Hardened,
		account + Hardened,
		ExternalChain,
		index,
	} {
		key, err = key.Child(child)
		if err != nil {
			return nil, fmt.Errorf("%w: depth %d: %w", ErrDerivationFailed, depth+1, err)
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, fmt.Errorf("%w: extract private key: %w", ErrDerivationFailed, err)
	}
	return priv.Serialize(), nil
}
