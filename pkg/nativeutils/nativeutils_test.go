package nativeutils

import (
	"bytes"
	stdhmac "crypto/hmac"
	stdsha512 "crypto/sha512"
	"encoding/hex"
	"hash"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/smallyu/go-nativekeys/internal/config"
	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hashes"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

const (
	privOne     = "0000000000000000000000000000000000000000000000000000000000000001"
	addrOne     = "7e5f4552091a69125d5dfcb7b8c2659029395bdf"
	emptyKeccak = "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"
)

func allUtils(t *testing.T) []*Utils {
	t.Helper()
	var out []*Utils
	for _, c := range curves.Backends() {
		for _, h := range hashes.Backends() {
			u, err := New(WithCurve(c), WithHash(h))
			require.NoError(t, err)
			out = append(out, u)
		}
	}
	return out
}

func name(u *Utils) string {
	return u.CurveContext().Name() + "/" + u.HashProvider().Name()
}

func TestNewDefaults(t *testing.T) {
	u, err := New()
	require.NoError(t, err)
	assert.Equal(t, curves.DefaultBackend, u.CurveContext().Name())
	assert.Equal(t, hashes.DefaultBackend, u.HashProvider().Name())

	def, err := curves.Default()
	require.NoError(t, err)
	assert.Same(t, def, u.CurveContext())

	_, err = New(WithCurve("missing"))
	assert.ErrorIs(t, err, keys.ErrProviderUnavailable)
	_, err = New(WithHash("missing"))
	assert.ErrorIs(t, err, keys.ErrProviderUnavailable)

	assert.NoError(t, u.Close())
}

func TestNewFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Curve = curves.Btcec
	cfg.Hash = hashes.Ethereum
	cfg.Log.Output = t.TempDir() + "/utils.log"
	cfg.Log.Format = "json"
	cfg.Log.Level = "debug"

	u, err := NewFromConfig(&cfg)
	require.NoError(t, err)
	assert.Equal(t, curves.Btcec, u.CurveContext().Name())
	assert.Equal(t, hashes.Ethereum, u.HashProvider().Name())

	_, err = u.ToPublicKey("00", true)
	require.Error(t, err)
	require.NoError(t, u.Close())
	require.NoError(t, u.Close())

	data, err := os.ReadFile(cfg.Log.Output)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"ErrLengthMismatch"`)

	cfg.Curve = "nope"
	_, err = NewFromConfig(&cfg)
	assert.Error(t, err)
}

func TestToPublicKey(t *testing.T) {
	for _, u := range allUtils(t) {
		t.Run(name(u), func(t *testing.T) {
			c, err := u.ToPublicKey(privOne, true)
			require.NoError(t, err)
			assert.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(c))

			raw, _ := hex.DecodeString(privOne)
			uc, err := u.ToPublicKeyFromBytes(raw, false)
			require.NoError(t, err)
			assert.Len(t, uc, keys.UncompressedKeySize)
			assert.Equal(t, c[1:], uc[1:33])

			_, err = u.ToPublicKey(privOne[1:], true)
			assert.ErrorIs(t, err, keys.ErrInvalidFormat)
			_, err = u.ToPublicKey(privOne[2:], true)
			assert.ErrorIs(t, err, keys.ErrLengthMismatch)
			_, err = u.ToPublicKey(strings.Repeat("0", 64), true)
			assert.ErrorIs(t, err, keys.ErrInvalidPrivateKey)
		})
	}
}

func TestToPublicKeyFromBytesLength(t *testing.T) {
	u, err := New()
	require.NoError(t, err)

	for _, n := range []int{0, 1, 31, 33, 64} {
		pub, err := u.ToPublicKeyFromBytes(bytes.Repeat([]byte{1}, n), true)
		assert.ErrorIs(t, err, keys.ErrLengthMismatch, "length %d", n)
		assert.Nil(t, pub)
	}
}

func TestPubToAddress(t *testing.T) {
	for _, u := range allUtils(t) {
		t.Run(name(u), func(t *testing.T) {
			c, err := u.ToPublicKey(privOne, true)
			require.NoError(t, err)
			uc, err := u.ToPublicKey(privOne, false)
			require.NoError(t, err)

			a1, err := u.PubToAddress(c, true)
			require.NoError(t, err)
			a2, err := u.PubToAddress(uc, true)
			require.NoError(t, err)
			a3, err := u.PubToAddress(uc[1:], false)
			require.NoError(t, err)

			assert.Equal(t, addrOne, hex.EncodeToString(a1))
			assert.Equal(t, a1, a2)
			assert.Equal(t, a1, a3)

			_, err = u.PubToAddress(c, false)
			assert.ErrorIs(t, err, keys.ErrInvalidPublicKeyLength)

			sum, err := u.ChecksumAddress(c, true)
			require.NoError(t, err)
			assert.Equal(t, "0x7E5F4552091A69125d5DfCb7b8C2659029395Bdf", sum)
		})
	}
}

func TestKeccak256(t *testing.T) {
	for _, u := range allUtils(t) {
		t.Run(name(u), func(t *testing.T) {
			sum, err := u.Keccak256("")
			require.NoError(t, err)
			assert.Equal(t, emptyKeccak, hex.EncodeToString(sum))
			assert.Equal(t, emptyKeccak, hex.EncodeToString(u.Keccak256FromBytes(nil)))

			_, err = u.Keccak256("0")
			assert.ErrorIs(t, err, keys.ErrInvalidFormat)
		})
	}
}

func TestHmacSha512(t *testing.T) {
	for _, u := range allUtils(t) {
		t.Run(name(u), func(t *testing.T) {
			for _, keyLen := range []int{0, 20, 127, 128, 129, 131, 300} {
				key := bytes.Repeat([]byte{0xaa}, keyLen)
				data := bytes.Repeat([]byte("Hi There"), keyLen%7+1)

				ref := stdhmac.New(stdsha512.New, key)
				ref.Write(data)
				want := ref.Sum(nil)

				assert.Equal(t, want, u.HmacSha512(key, data))
				checked, err := u.HmacSha512Checked(key, data)
				require.NoError(t, err, "key length %d", keyLen)
				assert.Equal(t, want, checked)
			}
		})
	}
}

// lyingHash returns a MAC that disagrees with HMAC-SHA512.
type lyingHash struct{ keys.HashProvider }

func (l lyingHash) NewMAC(string, []byte) (hash.Hash, error) {
	return stdhmac.New(stdsha512.New, []byte("other key")), nil
}

func TestHmacSha512CheckedDivergence(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	u, err := New(WithHashProvider(lyingHash{hashes.NewXCrypto()}), WithLogger(zap.New(core)))
	require.NoError(t, err)

	out, err := u.HmacSha512Checked([]byte("k"), []byte("d"))
	assert.ErrorIs(t, err, keys.ErrProviderUnavailable)
	assert.Nil(t, out)

	entries := logs.FilterMessage("hmacSha512Checked failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "ErrProviderUnavailable", entries[0].ContextMap()["kind"])
}

func TestEd25519(t *testing.T) {
	u, err := New()
	require.NoError(t, err)

	seed, _ := hex.DecodeString("9d61b19deffd5a60ba844af492ec2cc44449c5697b326919703bac031cae7f60")
	pub, err := u.Ed25519PublicKeyFromBytes(seed)
	require.NoError(t, err)
	assert.Equal(t, "d75a980182b10ab7d54bfed3c964073a0ee172f3daa62325af021a68f707511a", hex.EncodeToString(pub))

	for _, n := range []int{0, 1, 31, 33, 64} {
		_, err := u.Ed25519PublicKeyFromBytes(make([]byte, n))
		assert.ErrorIs(t, err, keys.ErrLengthMismatch)
	}
}

// Failures are logged by kind and length only.
func TestNoSecretsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	u, err := New(WithLogger(zap.New(core)))
	require.NoError(t, err)

	secret := strings.Repeat("ab", 31) + "zz"
	_, err = u.ToPublicKey(secret, true)
	require.ErrorIs(t, err, keys.ErrInvalidFormat)

	_, err = u.ToPublicKey(privOne, true)
	require.NoError(t, err)

	for _, e := range logs.All() {
		for k, v := range e.ContextMap() {
			s, _ := v.(string)
			assert.NotContains(t, s, "abab", "field %s", k)
			assert.NotContains(t, s, privOne, "field %s", k)
		}
	}
	assert.Equal(t, 1, logs.FilterMessage("toPublicKey failed").Len())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ErrLengthMismatch", Kind(keys.MakeError(keys.ErrLengthMismatch, "x")))
	assert.Equal(t, "", Kind(assert.AnError))
}

func TestConcurrentUse(t *testing.T) {
	u, err := New()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pub, err := u.ToPublicKey(privOne, true)
				if !assert.NoError(t, err) {
					return
				}
				addr, err := u.PubToAddress(pub, true)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, addrOne, hex.EncodeToString(addr))
			}
		}()
	}
	wg.Wait()
}
