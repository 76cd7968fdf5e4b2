package hashes

import (
	"hash"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// NewXCrypto returns the provider backed by golang.org/x/crypto.
func NewXCrypto() *Provider {
	return &Provider{name: XCrypto, keccak: sha3.NewLegacyKeccak256}
}

// NewEthereum returns the provider whose Keccak-256 comes from go-ethereum.
func NewEthereum() *Provider {
	return &Provider{
		name:   Ethereum,
		keccak: func() hash.Hash { return crypto.NewKeccakState() },
		sum:    func(data []byte) []byte { return crypto.Keccak256(data) },
	}
}
