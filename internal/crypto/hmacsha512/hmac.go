// Package hmacsha512 implements HMAC (RFC 2104) over the in-house SHA-512
// engine.
package hmacsha512

import (
	"crypto/subtle"
	"hash"

	"github.com/smallyu/go-nativekeys/internal/crypto/sha512"
)

const (
	// Size is the MAC length in bytes.
	Size = sha512.Size

	// BlockSize is the padded key length in bytes.
	BlockSize = sha512.BlockSize

	ipad = 0x36
	opad = 0x5c
)

var _ hash.Hash = (*MAC)(nil)

// MAC is a streaming HMAC-SHA512. Key lengths are not treated as secret; key
// and data values are only combined with data-independent XOR and hashing.
type MAC struct {
	ipad  [BlockSize]byte
	opad  [BlockSize]byte
	inner *sha512.Digest
}

// New returns a MAC keyed with key. Keys longer than BlockSize are replaced
// by their SHA-512 digest; an empty key is valid and acts as all-zero padding.
func New(key []byte) *MAC {
	m := &MAC{inner: sha512.New()}

	var k [BlockSize]byte
	if len(key) > BlockSize {
		sum := sha512.Sum512(key)
		copy(k[:], sum[:])
	} else {
		copy(k[:], key)
	}
	for i := range k {
		m.ipad[i] = k[i] ^ ipad
		m.opad[i] = k[i] ^ opad
	}
	clear(k[:])

	m.inner.Write(m.ipad[:])
	return m
}

// Write absorbs message data.
func (m *MAC) Write(p []byte) (int, error) {
	return m.inner.Write(p)
}

// Sum appends the MAC of the data written so far to b. It does not change
// the underlying state.
func (m *MAC) Sum(b []byte) []byte {
	in := m.inner.Sum(nil)

	outer := sha512.New()
	outer.Write(m.opad[:])
	outer.Write(in)
	sum, _ := outer.Final()
	return append(b, sum[:]...)
}

// Reset restores the MAC to its freshly keyed state.
func (m *MAC) Reset() {
	m.inner.Reset()
	m.inner.Write(m.ipad[:])
}

// Clear wipes the padded key material. The MAC is unusable afterwards.
func (m *MAC) Clear() {
	clear(m.ipad[:])
	clear(m.opad[:])
	m.inner.Reset()
}

func (m *MAC) Size() int { return Size }

func (m *MAC) BlockSize() int { return BlockSize }

// Sum computes HMAC-SHA512(key, data) in one pass.
//
//	inner  = SHA512(k_ipad || data)
//	output = SHA512(k_opad || inner)
func Sum(key, data []byte) [Size]byte {
	m := New(key)
	defer m.Clear()

	m.inner.Write(data)
	in, _ := m.inner.Final()

	outer := sha512.New()
	outer.Write(m.opad[:])
	outer.Write(in[:])
	out, _ := outer.Final()
	return out
}

// Equal compares two MACs without leaking timing information.
func Equal(mac1, mac2 []byte) bool {
	return subtle.ConstantTimeCompare(mac1, mac2) == 1
}
