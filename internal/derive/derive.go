// Package derive turns private key material into secp256k1 public keys and
// Ethereum style addresses.
//
// Every entry point validates its input completely before the curve backend
// is consulted: scalars are range checked against the group order, and all
// serialized output is length checked against the requested encoding.
package derive

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hexcodec"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// CurveOrder is N, the order of the secp256k1 base point, big-endian.
var CurveOrder = [keys.ScalarSize]byte{
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff,
	0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
	0xba, 0xae, 0xdc, 0xe6, 0xaf, 0x48, 0xa0, 0x3b,
	0xbf, 0xd2, 0x5e, 0x8c, 0xd0, 0x36, 0x41, 0x41,
}

// ValidateScalar checks that scalar is 32 bytes and lies in [1, N). The
// comparison runs in time independent of the scalar value.
func ValidateScalar(scalar []byte) error {
	if len(scalar) != keys.ScalarSize {
		return keys.MakeError(keys.ErrLengthMismatch,
			fmt.Sprintf("private key must be %d bytes, got %d", keys.ScalarSize, len(scalar)))
	}

	var acc byte
	for _, b := range scalar {
		acc |= b
	}
	isZero := subtle.ConstantTimeByteEq(acc, 0)

	// lt/gt latch on the first differing byte, most significant first.
	var lt, gt byte
	for i := 0; i < keys.ScalarSize; i++ {
		a, n := uint16(scalar[i]), uint16(CurveOrder[i])
		aLess := byte((a-n)>>8) & 1
		aMore := byte((n-a)>>8) & 1
		open := 1 ^ (lt | gt)
		lt |= open & aLess
		gt |= open & aMore
	}

	if isZero|int(lt^1) != 0 {
		return keys.MakeError(keys.ErrInvalidPrivateKey, "private key is zero or not below the curve order")
	}
	return nil
}

// PublicKey derives scalar*G and serializes it as a 33-byte compressed or a
// 65-byte uncompressed SEC1 key.
func PublicKey(ctx *curves.Context, scalar []byte, compressed bool) ([]byte, error) {
	if err := ValidateScalar(scalar); err != nil {
		return nil, err
	}

	pt, err := ctx.DerivePoint(scalar)
	if err != nil {
		if errors.Is(err, keys.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, keys.Error{Err: keys.ErrInvalidPrivateKey, Description: err.Error()}
	}

	form := keys.FormUncompressed
	if compressed {
		form = keys.FormCompressed
	}
	return Serialize(ctx, pt, form)
}

// PublicKeyFromHex decodes a 64 character hex scalar and derives its public
// key. Malformed hex is reported before a wrong length.
func PublicKeyFromHex(ctx *curves.Context, s string, compressed bool) ([]byte, error) {
	scalar, err := hexcodec.Decode(s, keys.ScalarSize)
	if err != nil {
		return nil, err
	}
	defer clear(scalar)
	return PublicKey(ctx, scalar, compressed)
}

// Serialize writes p in the requested form into a fresh buffer and fails with
// ErrSerializationInconsistency unless the backend wrote exactly form.Size()
// bytes.
func Serialize(ctx *curves.Context, p keys.Point, form keys.Form) ([]byte, error) {
	size := form.Size()
	if size == 0 {
		return nil, keys.MakeError(keys.ErrSerializationInconsistency,
			fmt.Sprintf("unknown public key form %d", form))
	}

	out := make([]byte, size)
	n, err := ctx.Serialize(p, form, out)
	if err != nil {
		return nil, err
	}
	if n != size {
		return nil, keys.MakeError(keys.ErrSerializationInconsistency,
			fmt.Sprintf("%s serialization wrote %d bytes, want %d", form, n, size))
	}
	return out, nil
}
