package curves

import (
	"fmt"

	"filippo.io/edwards25519"

	"github.com/smallyu/go-nativekeys/internal/crypto/sha512"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// Ed25519PublicKeyFromSeed returns the RFC 8032 public key for a 32-byte
// private seed. The seed is expanded with the in-house SHA-512 engine and
// the clamped lower half is used as the secret scalar.
func Ed25519PublicKeyFromSeed(seed []byte) ([]byte, error) {
	if len(seed) != keys.Ed25519SeedSize {
		return nil, keys.MakeError(keys.ErrLengthMismatch,
			fmt.Sprintf("ed25519 seed must be %d bytes, got %d", keys.Ed25519SeedSize, len(seed)))
	}

	h := sha512.Sum512(seed)
	defer clear(h[:])

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		return nil, keys.Error{Err: keys.ErrInvalidPrivateKey, Description: err.Error()}
	}

	A := new(edwards25519.Point).ScalarBaseMult(s)
	return A.Bytes(), nil
}

// Ed25519PointFromBytes checks that b encodes a point on the curve and
// returns its canonical encoding.
func Ed25519PointFromBytes(b []byte) ([]byte, error) {
	if len(b) != keys.Ed25519PublicKeySize {
		return nil, keys.MakeError(keys.ErrInvalidPublicKeyLength,
			fmt.Sprintf("ed25519 point must be %d bytes, got %d", keys.Ed25519PublicKeySize, len(b)))
	}
	p, err := edwards25519.NewIdentityPoint().SetBytes(b)
	if err != nil {
		return nil, keys.Error{Err: keys.ErrInvalidPublicKeyFormat, Description: err.Error()}
	}
	return p.Bytes(), nil
}
