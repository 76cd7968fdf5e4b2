package sha512

import (
	stdsha512 "crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

func TestKnownVectors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "empty",
			in:   "",
			want: "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce" +
				"47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e",
		},
		{
			name: "abc",
			in:   "abc",
			want: "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a" +
				"2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f",
		},
		{
			name: "two blocks",
			in: "abcdefghbcdefghicdefghijdefghijkefghijklfghijklmghijklmn" +
				"hijklmnoijklmnopjklmnopqklmnopqrlmnopqrsmnopqrstnopqrstu",
			want: "8e959b75dae313da8cf4f72814fc143f8f7779c6eb9f7fa17299aeadb6889018" +
				"501d289e4900f7e4331b99dec4b5433ac7d329eeb6dd26545e96e55b874be909",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sum := Sum512([]byte(tc.in))
			assert.Equal(t, tc.want, hex.EncodeToString(sum[:]))
		})
	}
}

// Every length around the padding boundaries must agree with crypto/sha512.
func TestMatchesStdlib(t *testing.T) {
	data := make([]byte, 3*BlockSize+7)
	for i := range data {
		data[i] = byte(i*7 + 3)
	}

	for n := 0; n <= len(data); n++ {
		want := stdsha512.Sum512(data[:n])
		got := Sum512(data[:n])
		require.Equal(t, want, got, "length %d", n)
	}
}

func TestChunkedWrites(t *testing.T) {
	msg := []byte(strings.Repeat("The quick brown fox jumps over the lazy dog. ", 20))
	want := stdsha512.Sum512(msg)

	for _, chunk := range []int{1, 3, 17, 111, 112, 127, 128, 129, 500} {
		d := New()
		for i := 0; i < len(msg); i += chunk {
			end := min(i+chunk, len(msg))
			n, err := d.Write(msg[i:end])
			require.NoError(t, err)
			require.Equal(t, end-i, n)
		}
		got, err := d.Final()
		require.NoError(t, err)
		assert.Equal(t, want, got, "chunk size %d", chunk)
	}
}

func TestFinalIsTerminal(t *testing.T) {
	d := New()
	_, err := d.Write([]byte("abc"))
	require.NoError(t, err)

	first, err := d.Final()
	require.NoError(t, err)

	_, err = d.Write([]byte("more"))
	assert.ErrorIs(t, err, keys.ErrFinalized)

	_, err = d.Final()
	assert.ErrorIs(t, err, keys.ErrFinalized)

	// Sum keeps reporting the finalized digest.
	assert.Equal(t, first[:], d.Sum(nil))

	d.Reset()
	_, err = d.Write([]byte("abc"))
	require.NoError(t, err)
	again, err := d.Final()
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

// Through the hash.Hash view a finalized Digest refuses input rather than
// silently dropping it.
func TestFinalizedThroughHashInterface(t *testing.T) {
	d := New()
	d.Write([]byte("abc"))
	want, err := d.Final()
	require.NoError(t, err)

	var h hash.Hash = d
	n, err := h.Write([]byte("ignored"))
	assert.Zero(t, n)
	assert.ErrorIs(t, err, keys.ErrFinalized)

	_, err = io.WriteString(h, "ignored")
	assert.ErrorIs(t, err, keys.ErrFinalized)
	assert.Equal(t, want[:], h.Sum(nil))

	h.Reset()
	_, err = h.Write([]byte("abc"))
	require.NoError(t, err)
	assert.Equal(t, want[:], h.Sum(nil))
}

func TestSumDoesNotFinalize(t *testing.T) {
	d := New()
	d.Write([]byte("ab"))
	partial := d.Sum(nil)
	want := stdsha512.Sum512([]byte("ab"))
	assert.Equal(t, want[:], partial)

	_, err := d.Write([]byte("c"))
	require.NoError(t, err)
	got, err := d.Final()
	require.NoError(t, err)
	assert.Equal(t, stdsha512.Sum512([]byte("abc")), got)
}

func TestHashInterface(t *testing.T) {
	d := New()
	assert.Equal(t, Size, d.Size())
	assert.Equal(t, BlockSize, d.BlockSize())

	prefix := []byte{0xaa}
	out := d.Sum(prefix)
	assert.Len(t, out, Size+1)
	assert.Equal(t, byte(0xaa), out[0])
}

func BenchmarkSum512(b *testing.B) {
	buf := make([]byte, 1024)
	b.SetBytes(int64(len(buf)))
	for i := 0; i < b.N; i++ {
		Sum512(buf)
	}
}
