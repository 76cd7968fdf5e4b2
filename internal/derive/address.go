package derive

import (
	"errors"
	"fmt"

	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hexcodec"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// RawPublicKey parses a SEC1 compressed or uncompressed key and returns the
// 64-byte X||Y form.
func RawPublicKey(ctx *curves.Context, pub []byte) ([]byte, error) {
	pt, err := ctx.Parse(pub)
	if err != nil {
		if errors.Is(err, keys.ErrInvalidPublicKeyFormat) || errors.Is(err, keys.ErrProviderUnavailable) {
			return nil, err
		}
		return nil, keys.Error{Err: keys.ErrInvalidPublicKeyFormat, Description: err.Error()}
	}

	full, err := Serialize(ctx, pt, keys.FormUncompressed)
	if err != nil {
		return nil, err
	}
	return full[1:], nil
}

// Address returns the last 20 bytes of Keccak-256 over the raw X||Y public
// key. With sanitize set, any SEC1 encoding is accepted and normalized
// first; otherwise pub must already be the 64-byte raw form.
func Address(ctx *curves.Context, hp keys.HashProvider, pub []byte, sanitize bool) ([keys.AddressSize]byte, error) {
	var addr [keys.AddressSize]byte

	raw := pub
	switch {
	case len(pub) == keys.RawKeySize:
	case sanitize:
		var err error
		if raw, err = RawPublicKey(ctx, pub); err != nil {
			return addr, err
		}
	default:
		return addr, keys.MakeError(keys.ErrInvalidPublicKeyLength,
			fmt.Sprintf("raw public key must be %d bytes, got %d", keys.RawKeySize, len(pub)))
	}

	digest := hp.Keccak256(raw)
	if len(digest) != keys.Keccak256Size {
		return addr, keys.MakeError(keys.ErrSerializationInconsistency,
			fmt.Sprintf("%s keccak wrote %d bytes", hp.Name(), len(digest)))
	}
	copy(addr[:], digest[keys.Keccak256Size-keys.AddressSize:])
	return addr, nil
}

// AddressHex renders addr as lowercase 0x-prefixed hex.
func AddressHex(addr [keys.AddressSize]byte) string {
	return "0x" + hexcodec.Encode(addr[:])
}

// ChecksumHex renders addr with the EIP-55 mixed-case checksum.
func ChecksumHex(addr [keys.AddressSize]byte, hp keys.HashProvider) string {
	lower := []byte(hexcodec.Encode(addr[:]))
	h := hp.Keccak256(lower)

	for i, c := range lower {
		if c < 'a' {
			continue
		}
		nibble := h[i/2] >> 4
		if i%2 == 1 {
			nibble = h[i/2] & 0x0f
		}
		if nibble >= 8 {
			lower[i] = c - 'a' + 'A'
		}
	}
	return "0x" + string(lower)
}

// Keccak256 returns the legacy Keccak-256 digest of data.
func Keccak256(hp keys.HashProvider, data []byte) []byte {
	return hp.Keccak256(data)
}

// Keccak256Hex decodes s and returns the Keccak-256 digest of the bytes.
// The empty string hashes the empty input.
func Keccak256Hex(hp keys.HashProvider, s string) ([]byte, error) {
	data, err := hexcodec.DecodeAny(s)
	if err != nil {
		return nil, err
	}
	return hp.Keccak256(data), nil
}
