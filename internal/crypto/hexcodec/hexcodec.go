// Package hexcodec implements strict hex string <-> byte conversion.
//
// Unlike encoding/hex it reports every malformed input with the module's
// error kinds and lets callers pin the decoded length.
package hexcodec

import (
	"fmt"
	"strings"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

const hextable = "0123456789abcdef"

// Validate checks that s has an even length and only contains [0-9A-Fa-f].
func Validate(s string) error {
	if len(s)%2 != 0 {
		return keys.MakeError(keys.ErrInvalidFormat,
			fmt.Sprintf("hex string has odd length %d", len(s)))
	}
	for i := 0; i < len(s); i++ {
		if _, ok := fromHexChar(s[i]); !ok {
			return keys.MakeError(keys.ErrInvalidFormat,
				fmt.Sprintf("invalid hex character %q at offset %d", s[i], i))
		}
	}
	return nil
}

// Decode converts s into exactly expectedLen bytes.
func Decode(s string, expectedLen int) ([]byte, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	if len(s) != expectedLen*2 {
		return nil, keys.MakeError(keys.ErrLengthMismatch,
			fmt.Sprintf("expected %d hex characters, got %d", expectedLen*2, len(s)))
	}
	return decode(s), nil
}

// DecodeAny converts a well-formed hex string of any even length.
func DecodeAny(s string) ([]byte, error) {
	if err := Validate(s); err != nil {
		return nil, err
	}
	return decode(s), nil
}

// Encode returns the lowercase hex encoding of b.
func Encode(b []byte) string {
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}

// TrimPrefix removes a single leading "0x" or "0X".
func TrimPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}

// decode assumes s was validated.
func decode(s string) []byte {
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, _ := fromHexChar(s[i*2])
		lo, _ := fromHexChar(s[i*2+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func fromHexChar(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
