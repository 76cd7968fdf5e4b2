// Package hashes provides the digest and MAC backends used for address
// derivation and fingerprints. Algorithms are addressed by name so that a
// backend can be swapped without touching callers.
package hashes

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for BIP32 key fingerprints
	"golang.org/x/crypto/sha3"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// Digest algorithm names.
const (
	Keccak256  = "Keccak-1600(256)"
	SHA3_256   = "SHA-3(256)"
	SHA512     = "SHA-512"
	SHA256     = "SHA-256"
	RIPEMD160  = "RIPEMD-160"
	BLAKE2b512 = "BLAKE2b(512)"
)

// MAC algorithm names.
const (
	HMACSHA512 = "HMAC(SHA-512)"
	HMACSHA256 = "HMAC(SHA-256)"
)

// Backend names accepted by Lookup.
const (
	XCrypto  = "xcrypto"
	Ethereum = "ethereum"

	DefaultBackend = XCrypto
)

// SHA-512 and HMAC(SHA-512) come from the standard library. The in-house
// engines are checked against these entries and must never be registered here.
var digests = map[string]func() hash.Hash{
	Keccak256: sha3.NewLegacyKeccak256,
	SHA3_256:  sha3.New256,
	SHA512:    sha512.New,
	SHA256:    sha256.New,
	RIPEMD160: ripemd160.New,
	BLAKE2b512: func() hash.Hash {
		h, _ := blake2b.New512(nil) // only fails for keys longer than 64 bytes
		return h
	},
}

var macs = map[string]func(key []byte) hash.Hash{
	HMACSHA512: func(key []byte) hash.Hash { return hmac.New(sha512.New, key) },
	HMACSHA256: func(key []byte) hash.Hash { return hmac.New(sha256.New, key) },
}

var registry = map[string]func() keys.HashProvider{
	XCrypto:  func() keys.HashProvider { return NewXCrypto() },
	Ethereum: func() keys.HashProvider { return NewEthereum() },
}

// Lookup returns the provider registered under name.
func Lookup(name string) (keys.HashProvider, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("unknown hash backend %q", name))
	}
	return ctor(), nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	return sortedKeys(registry)
}

// Algorithms lists the digest algorithm names in sorted order.
func Algorithms() []string {
	return sortedKeys(digests)
}

// MACs lists the MAC algorithm names in sorted order.
func MACs() []string {
	return sortedKeys(macs)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Provider is a HashProvider. Backends differ only in their Keccak-256
// implementation; every other algorithm is shared.
type Provider struct {
	name   string
	keccak func() hash.Hash
	sum    func(data []byte) []byte
}

var _ keys.HashProvider = (*Provider)(nil)

func (p *Provider) Name() string { return p.name }

// Keccak256 returns the legacy Keccak-256 digest of data.
func (p *Provider) Keccak256(data []byte) []byte {
	if p.sum != nil {
		return p.sum(data)
	}
	h := p.keccak()
	h.Write(data)
	return h.Sum(nil)
}

func (p *Provider) New(algorithm string) (hash.Hash, error) {
	if algorithm == Keccak256 {
		return p.keccak(), nil
	}
	ctor, ok := digests[algorithm]
	if !ok {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("%s: unknown hash algorithm %q", p.name, algorithm))
	}
	return ctor(), nil
}

func (p *Provider) NewMAC(algorithm string, key []byte) (hash.Hash, error) {
	ctor, ok := macs[algorithm]
	if !ok {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("%s: unknown MAC algorithm %q", p.name, algorithm))
	}
	return ctor(key), nil
}

// Sum hashes data with the named algorithm.
func Sum(p keys.HashProvider, algorithm string, data []byte) ([]byte, error) {
	h, err := p.New(algorithm)
	if err != nil {
		return nil, err
	}
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// Hash160 returns RIPEMD-160(SHA-256(data)).
func Hash160(p keys.HashProvider, data []byte) ([]byte, error) {
	inner, err := Sum(p, SHA256, data)
	if err != nil {
		return nil, err
	}
	return Sum(p, RIPEMD160, inner)
}
