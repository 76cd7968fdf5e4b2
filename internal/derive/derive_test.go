package derive

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

func contexts(t *testing.T) []*curves.Context {
	t.Helper()
	var out []*curves.Context
	for _, name := range curves.Backends() {
		ctx, err := curves.ForBackend(name)
		require.NoError(t, err)
		out = append(out, ctx)
	}
	return out
}

func scalarOf(v byte) []byte {
	s := make([]byte, keys.ScalarSize)
	s[keys.ScalarSize-1] = v
	return s
}

func offsetFromOrder(delta int) []byte {
	s := CurveOrder
	// Only small deltas are used; the low byte of N is 0x41.
	s[keys.ScalarSize-1] = byte(int(s[keys.ScalarSize-1]) + delta)
	return s[:]
}

func randomScalar(t *testing.T) []byte {
	t.Helper()
	for {
		s := make([]byte, keys.ScalarSize)
		_, err := rand.Read(s)
		require.NoError(t, err)
		if ValidateScalar(s) == nil {
			return s
		}
	}
}

func TestValidateScalar(t *testing.T) {
	tests := []struct {
		name    string
		scalar  []byte
		wantErr error
	}{
		{"one", scalarOf(1), nil},
		{"order minus one", offsetFromOrder(-1), nil},
		{"order minus 0x41", offsetFromOrder(-0x41), nil},
		{"high byte below order", append([]byte{0xfe}, bytes.Repeat([]byte{0xff}, 31)...), nil},
		{"zero", make([]byte, keys.ScalarSize), keys.ErrInvalidPrivateKey},
		{"order", offsetFromOrder(0), keys.ErrInvalidPrivateKey},
		{"order plus one", offsetFromOrder(1), keys.ErrInvalidPrivateKey},
		{"all ones", bytes.Repeat([]byte{0xff}, keys.ScalarSize), keys.ErrInvalidPrivateKey},
		{"empty", nil, keys.ErrLengthMismatch},
		{"short", make([]byte, 31), keys.ErrLengthMismatch},
		{"long", make([]byte, 33), keys.ErrLengthMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateScalar(tc.scalar)
			if tc.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.wantErr)
			}
		})
	}
}

func TestPublicKeyShape(t *testing.T) {
	for _, ctx := range contexts(t) {
		t.Run(ctx.Name(), func(t *testing.T) {
			for i := 0; i < 16; i++ {
				s := randomScalar(t)

				c, err := PublicKey(ctx, s, true)
				require.NoError(t, err)
				require.Len(t, c, keys.CompressedKeySize)
				assert.Contains(t, []byte{0x02, 0x03}, c[0])

				u, err := PublicKey(ctx, s, false)
				require.NoError(t, err)
				require.Len(t, u, keys.UncompressedKeySize)
				assert.Equal(t, byte(0x04), u[0])
				assert.Equal(t, c[1:], u[1:33])
			}
		})
	}
}

func TestPublicKeyBoundaries(t *testing.T) {
	for _, ctx := range contexts(t) {
		t.Run(ctx.Name(), func(t *testing.T) {
			_, err := PublicKey(ctx, make([]byte, keys.ScalarSize), true)
			assert.ErrorIs(t, err, keys.ErrInvalidPrivateKey)

			_, err = PublicKey(ctx, offsetFromOrder(0), true)
			assert.ErrorIs(t, err, keys.ErrInvalidPrivateKey)

			pub, err := PublicKey(ctx, offsetFromOrder(-1), true)
			require.NoError(t, err)
			assert.Equal(t, "0379be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(pub))
		})
	}
}

func TestPublicKeyLength(t *testing.T) {
	ctx, err := curves.Default()
	require.NoError(t, err)

	for _, n := range []int{0, 1, 31, 33, 64} {
		_, err := PublicKey(ctx, make([]byte, n), true)
		assert.ErrorIs(t, err, keys.ErrLengthMismatch, "length %d", n)
	}
}

func TestPublicKeyFromHex(t *testing.T) {
	ctx, err := curves.Default()
	require.NoError(t, err)

	one := strings.Repeat("0", 63) + "1"
	pub, err := PublicKeyFromHex(ctx, one, true)
	require.NoError(t, err)
	assert.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(pub))

	pubU, err := PublicKeyFromHex(ctx, strings.ToUpper(one), false)
	require.NoError(t, err)
	assert.Equal(t, pub[1:], pubU[1:33])

	tests := []struct {
		name string
		in   string
		want error
	}{
		{"odd length", one[1:], keys.ErrInvalidFormat},
		{"bad char", one[:63] + "g", keys.ErrInvalidFormat},
		{"prefixed", "0x" + one, keys.ErrInvalidFormat},
		{"short", one[2:], keys.ErrLengthMismatch},
		{"long", "00" + one, keys.ErrLengthMismatch},
		{"zero", strings.Repeat("0", 64), keys.ErrInvalidPrivateKey},
		{"order", hex.EncodeToString(CurveOrder[:]), keys.ErrInvalidPrivateKey},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PublicKeyFromHex(ctx, tc.in, true)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// parse(serialize(P, uncompressed)) re-serializes to the compressed form of P.
func TestRoundTrip(t *testing.T) {
	for _, ctx := range contexts(t) {
		t.Run(ctx.Name(), func(t *testing.T) {
			for i := 0; i < 16; i++ {
				s := randomScalar(t)
				pt, err := ctx.DerivePoint(s)
				require.NoError(t, err)

				u, err := Serialize(ctx, pt, keys.FormUncompressed)
				require.NoError(t, err)
				c, err := Serialize(ctx, pt, keys.FormCompressed)
				require.NoError(t, err)

				parsed, err := ctx.Parse(u)
				require.NoError(t, err)
				again, err := Serialize(ctx, parsed, keys.FormCompressed)
				require.NoError(t, err)
				assert.Equal(t, c, again)
			}
		})
	}
}

// shortWriter reports one byte fewer than requested.
type shortWriter struct{ curves.Secp256k1 }

func (s *shortWriter) Serialize(p keys.Point, form keys.Form, out []byte) (int, error) {
	n, err := s.Secp256k1.Serialize(p, form, out)
	if form != keys.FormCompressed {
		n--
	}
	return n, err
}

func TestSerializationInconsistency(t *testing.T) {
	ctx, err := curves.NewContext(&shortWriter{}, curves.FlagAll)
	require.NoError(t, err)

	_, err = PublicKey(ctx, scalarOf(1), false)
	assert.ErrorIs(t, err, keys.ErrSerializationInconsistency)

	_, err = Serialize(ctx, nil, keys.Form(9))
	assert.ErrorIs(t, err, keys.ErrSerializationInconsistency)

	pub, err := PublicKey(ctx, scalarOf(1), true)
	require.NoError(t, err)
	_, err = RawPublicKey(ctx, pub)
	assert.ErrorIs(t, err, keys.ErrSerializationInconsistency)
}
