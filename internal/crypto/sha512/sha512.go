// Package sha512 implements the SHA-512 hash algorithm as defined in FIPS 180-4.
//
// The engine is self-contained so that HMAC-SHA512 and the chain-code
// expansion built on it do not depend on a platform crypto backend. A Digest
// is single-use: once Final has been called it rejects further input until
// Reset re-initializes it.
package sha512

import (
	"encoding/binary"
	"hash"
	"math/bits"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

const (
	// Size is the size of a SHA-512 checksum in bytes.
	Size = 64

	// BlockSize is the block size of SHA-512 in bytes.
	BlockSize = 128

	// lengthSize is the trailing 128-bit message length field.
	lengthSize = 16
)

var iv = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b, 0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f, 0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

var _K = [80]uint64{
	0x428a2f98d728ae22, 0x7137449123ef65cd, 0xb5c0fbcfec4d3b2f, 0xe9b5dba58189dbbc,
	0x3956c25bf348b538, 0x59f111f1b605d019, 0x923f82a4af194f9b, 0xab1c5ed5da6d8118,
	0xd807aa98a3030242, 0x12835b0145706fbe, 0x243185be4ee4b28c, 0x550c7dc3d5ffb4e2,
	0x72be5d74f27b896f, 0x80deb1fe3b1696b1, 0x9bdc06a725c71235, 0xc19bf174cf692694,
	0xe49b69c19ef14ad2, 0xefbe4786384f25e3, 0x0fc19dc68b8cd5b5, 0x240ca1cc77ac9c65,
	0x2de92c6f592b0275, 0x4a7484aa6ea6e483, 0x5cb0a9dcbd41fbd4, 0x76f988da831153b5,
	0x983e5152ee66dfab, 0xa831c66d2db43210, 0xb00327c898fb213f, 0xbf597fc7beef0ee4,
	0xc6e00bf33da88fc2, 0xd5a79147930aa725, 0x06ca6351e003826f, 0x142929670a0e6e70,
	0x27b70a8546d22ffc, 0x2e1b21385c26c926, 0x4d2c6dfc5ac42aed, 0x53380d139d95b3df,
	0x650a73548baf63de, 0x766a0abb3c77b2a8, 0x81c2c92e47edaee6, 0x92722c851482353b,
	0xa2bfe8a14cf10364, 0xa81a664bbc423001, 0xc24b8b70d0f89791, 0xc76c51a30654be30,
	0xd192e819d6ef5218, 0xd69906245565a910, 0xf40e35855771202a, 0x106aa07032bbd1b8,
	0x19a4c116b8d2d0c8, 0x1e376c085141ab53, 0x2748774cdf8eeb99, 0x34b0bcb5e19b48a8,
	0x391c0cb3c5c95a63, 0x4ed8aa4ae3418acb, 0x5b9cca4f7763e373, 0x682e6ff3d6b2b8a3,
	0x748f82ee5defb2fc, 0x78a5636f43172f60, 0x84c87814a1f0ab72, 0x8cc702081a6439ec,
	0x90befffa23631e28, 0xa4506cebde82bde9, 0xbef9a3f7b2c67915, 0xc67178f2e372532b,
	0xca273eceea26619c, 0xd186b8c721c0c207, 0xeada7dd6cde0eb1e, 0xf57d4f7fee6ed178,
	0x06f067aa72176fba, 0x0a637dc5a2c898a6, 0x113f9804bef90dae, 0x1b710b35131c471b,
	0x28db77f523047d84, 0x32caab7b40c72493, 0x3c9ebe0a15c9bebc, 0x431d67c49c100d4c,
	0x4cc5d4becb3e42b6, 0x597f299cfc657e2a, 0x5fcb6fab3ad6faec, 0x6c44198c4a475817,
}

var _ hash.Hash = (*Digest)(nil)

// Digest is the streaming SHA-512 state.
//
// Digest satisfies hash.Hash with one exception: after Final, Write returns
// ErrFinalized instead of absorbing data, and Sum keeps returning the final
// digest. Reset makes the Digest writable again. Callers holding a Digest as
// a hash.Hash must check Write's error or never call Final on it.
type Digest struct {
	h    [8]uint64
	x    [BlockSize]byte
	nx   int    // bytes buffered in x
	len  uint64 // bits compressed so far, full blocks only
	done bool
	sum  [Size]byte
}

// New returns an initialized Digest.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset re-initializes the state, making the Digest usable again after Final.
func (d *Digest) Reset() {
	d.h = iv
	clear(d.x[:])
	d.nx = 0
	d.len = 0
	d.done = false
	clear(d.sum[:])
}

func (d *Digest) Size() int { return Size }

func (d *Digest) BlockSize() int { return BlockSize }

// Write absorbs p. It fails with ErrFinalized once Final has been called.
func (d *Digest) Write(p []byte) (int, error) {
	if d.done {
		return 0, keys.MakeError(keys.ErrFinalized, "sha512: write after final")
	}
	n := len(p)
	for len(p) > 0 {
		if d.nx == 0 && len(p) >= BlockSize {
			block(d, p[:BlockSize])
			d.len += BlockSize * 8
			p = p[BlockSize:]
			continue
		}
		c := copy(d.x[d.nx:], p)
		d.nx += c
		p = p[c:]
		if d.nx == BlockSize {
			block(d, d.x[:])
			d.len += BlockSize * 8
			d.nx = 0
		}
	}
	return n, nil
}

// Final pads the message, runs the last compression and returns the digest.
// It may be called once; later calls fail with ErrFinalized.
func (d *Digest) Final() ([Size]byte, error) {
	if d.done {
		return [Size]byte{}, keys.MakeError(keys.ErrFinalized, "sha512: final called twice")
	}
	d.sum = d.checkSum()
	d.done = true
	return d.sum, nil
}

// Sum appends the current digest to b without finalizing d. On a finalized
// Digest it appends the result Final returned.
func (d *Digest) Sum(b []byte) []byte {
	if d.done {
		return append(b, d.sum[:]...)
	}
	d0 := *d
	sum := d0.checkSum()
	return append(b, sum[:]...)
}

func (d *Digest) checkSum() [Size]byte {
	length := d.len + uint64(d.nx)*8

	d.x[d.nx] = 0x80
	d.nx++

	// No room left for the length field: flush and start a fresh block.
	if d.nx > BlockSize-lengthSize {
		clear(d.x[d.nx:])
		block(d, d.x[:])
		d.nx = 0
	}
	clear(d.x[d.nx : BlockSize-8])
	binary.BigEndian.PutUint64(d.x[BlockSize-8:], length)
	block(d, d.x[:])

	var out [Size]byte
	for i, v := range d.h {
		binary.BigEndian.PutUint64(out[i*8:], v)
	}
	return out
}

// Sum512 returns the SHA-512 checksum of data.
func Sum512(data []byte) [Size]byte {
	d := New()
	d.Write(data)
	sum, _ := d.Final()
	return sum
}

func block(dig *Digest, p []byte) {
	var w [80]uint64
	for i := 0; i < 16; i++ {
		w[i] = binary.BigEndian.Uint64(p[i*8:])
	}
	for i := 16; i < 80; i++ {
		w[i] = sigma1(w[i-2]) + w[i-7] + sigma0(w[i-15]) + w[i-16]
	}

	a, b, c, d := dig.h[0], dig.h[1], dig.h[2], dig.h[3]
	e, f, g, h := dig.h[4], dig.h[5], dig.h[6], dig.h[7]

	for i := 0; i < 80; i++ {
		t1 := h + bigSigma1(e) + ch(e, f, g) + _K[i] + w[i]
		t2 := bigSigma0(a) + maj(a, b, c)
		h = g
		g = f
		f = e
		e = d + t1
		d = c
		c = b
		b = a
		a = t1 + t2
	}

	dig.h[0] += a
	dig.h[1] += b
	dig.h[2] += c
	dig.h[3] += d
	dig.h[4] += e
	dig.h[5] += f
	dig.h[6] += g
	dig.h[7] += h
}

func ch(x, y, z uint64) uint64  { return (x & y) ^ (^x & z) }
func maj(x, y, z uint64) uint64 { return (x & y) ^ (x & z) ^ (y & z) }

func bigSigma0(x uint64) uint64 {
	return bits.RotateLeft64(x, -28) ^ bits.RotateLeft64(x, -34) ^ bits.RotateLeft64(x, -39)
}

func bigSigma1(x uint64) uint64 {
	return bits.RotateLeft64(x, -14) ^ bits.RotateLeft64(x, -18) ^ bits.RotateLeft64(x, -41)
}

func sigma0(x uint64) uint64 {
	return bits.RotateLeft64(x, -1) ^ bits.RotateLeft64(x, -8) ^ (x >> 7)
}

func sigma1(x uint64) uint64 {
	return bits.RotateLeft64(x, -19) ^ bits.RotateLeft64(x, -61) ^ (x >> 6)
}
