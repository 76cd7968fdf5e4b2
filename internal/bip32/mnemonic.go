package bip32

import (
	"github.com/tyler-smith/go-bip39"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// SeedFromMnemonic validates a BIP39 mnemonic and stretches it into a
// 64-byte seed.
func SeedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, passphrase)
	if err != nil {
		return nil, keys.Error{Err: keys.ErrInvalidFormat, Description: err.Error()}
	}
	return seed, nil
}

// NewMnemonic returns a fresh mnemonic for bitSize bits of entropy
// (128..256, a multiple of 32).
func NewMnemonic(bitSize int) (string, error) {
	entropy, err := bip39.NewEntropy(bitSize)
	if err != nil {
		return "", keys.Error{Err: keys.ErrLengthMismatch, Description: err.Error()}
	}
	return bip39.NewMnemonic(entropy)
}
