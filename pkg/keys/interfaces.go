package keys

import "hash"

// Sizes of the fixed-length buffers handled by this module.
const (
	ScalarSize           = 32
	CompressedKeySize    = 33
	UncompressedKeySize  = 65
	RawKeySize           = 64
	AddressSize          = 20
	Keccak256Size        = 32
	HmacSha512Size       = 64
	Ed25519SeedSize      = 32
	Ed25519PublicKeySize = 32
)

// Form selects one of the canonical public key encodings.
type Form uint8

const (
	// FormCompressed is the 33-byte SEC1 encoding with a 0x02/0x03 prefix.
	FormCompressed Form = iota + 1

	// FormUncompressed is the 65-byte SEC1 encoding with a 0x04 prefix.
	FormUncompressed

	// FormRaw is the 64-byte X||Y encoding without prefix.
	FormRaw
)

// Size returns the exact serialized length of the form, or 0 for an unknown
// form.
func (f Form) Size() int {
	switch f {
	case FormCompressed:
		return CompressedKeySize
	case FormUncompressed:
		return UncompressedKeySize
	case FormRaw:
		return RawKeySize
	}
	return 0
}

func (f Form) String() string {
	switch f {
	case FormCompressed:
		return "compressed"
	case FormUncompressed:
		return "uncompressed"
	case FormRaw:
		return "raw"
	}
	return "unknown"
}

// Point is an opaque curve point produced by a CurveProvider. A point is owned
// by the operation that created it and must only be handed back to the
// provider that produced it.
type Point interface {
	// Provider returns the name of the provider that created the point.
	Provider() string
}

// CurveProvider abstracts the secp256k1 arithmetic backend. Implementations
// must be safe for concurrent use once constructed.
type CurveProvider interface {
	// Name returns the registry name of the backend.
	Name() string

	// ValidateScalar reports whether the 32-byte big-endian scalar is in
	// the range [1, N).
	ValidateScalar(scalar []byte) bool

	// DerivePoint computes scalar*G.
	DerivePoint(scalar []byte) (Point, error)

	// Serialize writes the point in the requested form into out and returns
	// the number of bytes written. out is expected to have exactly
	// form.Size() bytes of capacity.
	Serialize(p Point, form Form, out []byte) (int, error)

	// Parse decodes a SEC1 compressed or uncompressed public key.
	Parse(b []byte) (Point, error)
}

// HashProvider abstracts the digest and MAC backend.
type HashProvider interface {
	// Name returns the registry name of the backend.
	Name() string

	// Keccak256 returns the legacy Keccak-256 digest (0x01 padding) of data
	// in a freshly allocated 32-byte slice.
	Keccak256(data []byte) []byte

	// New returns a digest for the named algorithm.
	New(algorithm string) (hash.Hash, error)

	// NewMAC returns a keyed MAC for the named algorithm.
	NewMAC(algorithm string, key []byte) (hash.Hash, error)
}
