//go:build js && wasm

package main

import (
	"encoding/hex"
	"strings"
	"syscall/js"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallyu/go-nativekeys/pkg/nativeutils"
)

func setupUtils(t *testing.T) {
	t.Helper()
	var err error
	utils, err = nativeutils.New()
	require.NoError(t, err)
}

func jsBytes(b []byte) js.Value {
	v := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(v, b)
	return v
}

func goBytes(t *testing.T, v interface{}) []byte {
	t.Helper()
	jv, ok := v.(js.Value)
	require.True(t, ok, "got %v", v)
	b, err := bytesArg(jv)
	require.NoError(t, err)
	return b
}

func TestToPublicKeyFromBytes(t *testing.T) {
	setupUtils(t)

	priv := make([]byte, 32)
	priv[31] = 1
	out := ToPublicKeyFromBytes(js.Undefined(), []js.Value{jsBytes(priv), js.ValueOf(true)})
	assert.Equal(t, "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798",
		hex.EncodeToString(goBytes(t, out)))

	hexOut := ToPublicKey(js.Undefined(), []js.Value{js.ValueOf(hex.EncodeToString(priv)), js.ValueOf(false)})
	assert.Equal(t, hexOut, hex.EncodeToString(goBytes(t,
		ToPublicKeyFromBytes(js.Undefined(), []js.Value{jsBytes(priv), js.ValueOf(false)}))))

	out = ToPublicKeyFromBytes(js.Undefined(), []js.Value{jsBytes(priv[:31]), js.ValueOf(true)})
	assert.True(t, strings.HasPrefix(out.(string), "error: ErrLengthMismatch"), out)

	out = ToPublicKeyFromBytes(js.Undefined(), []js.Value{js.ValueOf("00"), js.ValueOf(true)})
	assert.True(t, strings.HasPrefix(out.(string), "error: expected a Uint8Array"), out)

	out = ToPublicKeyFromBytes(js.Undefined(), []js.Value{jsBytes(priv)})
	assert.Equal(t, "error: expected 2 arguments (privateKey, compressed)", out)
}

func TestKeccak256FromBytes(t *testing.T) {
	setupUtils(t)

	out := Keccak256FromBytes(js.Undefined(), []js.Value{jsBytes(nil)})
	assert.Equal(t, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		hex.EncodeToString(goBytes(t, out)))

	data := []byte("hello")
	assert.Equal(t, Keccak256(js.Undefined(), []js.Value{js.ValueOf(hex.EncodeToString(data))}),
		hex.EncodeToString(goBytes(t, Keccak256FromBytes(js.Undefined(), []js.Value{jsBytes(data)}))))

	out = Keccak256FromBytes(js.Undefined(), nil)
	assert.Equal(t, "error: expected 1 argument (data)", out)
}
