//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/smallyu/go-nativekeys/internal/crypto/hexcodec"
	"github.com/smallyu/go-nativekeys/pkg/nativeutils"
)

var utils *nativeutils.Utils

func main() {
	c := make(chan struct{})

	var err error
	if utils, err = nativeutils.New(); err != nil {
		js.Global().Get("console").Call("error", "nativekeys: "+err.Error())
		return
	}

	fmt.Println("Go NativeKeys WASM Initialized")

	js.Global().Set("NativeKeys", map[string]interface{}{
		"toPublicKey":               js.FuncOf(ToPublicKey),
		"toPublicKeyFromBytes":      js.FuncOf(ToPublicKeyFromBytes),
		"keccak256":                 js.FuncOf(Keccak256),
		"keccak256FromBytes":        js.FuncOf(Keccak256FromBytes),
		"pubToAddress":              js.FuncOf(PubToAddress),
		"checksumAddress":           js.FuncOf(ChecksumAddress),
		"hmacSha512":                js.FuncOf(HmacSha512),
		"ed25519PublicKeyFromBytes": js.FuncOf(Ed25519PublicKey),
	})

	<-c
}

// ToPublicKey derives a secp256k1 public key.
// Arguments:
// 0: private key hex (string)
// 1: compressed (bool)
// Returns:
// public key hex or "error: ..."
func ToPublicKey(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (privateKeyHex, compressed)"
	}
	pub, err := utils.ToPublicKey(hexcodec.TrimPrefix(args[0].String()), args[1].Bool())
	if err != nil {
		return errString(err)
	}
	return hexcodec.Encode(pub)
}

// ToPublicKeyFromBytes derives a secp256k1 public key from raw bytes.
// Arguments:
// 0: private key (Uint8Array, 32 bytes)
// 1: compressed (bool)
// Returns:
// public key (Uint8Array) or "error: ..."
func ToPublicKeyFromBytes(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (privateKey, compressed)"
	}
	priv, err := bytesArg(args[0])
	if err != nil {
		return errString(err)
	}
	defer clear(priv)
	pub, err := utils.ToPublicKeyFromBytes(priv, args[1].Bool())
	if err != nil {
		return errString(err)
	}
	return toUint8Array(pub)
}

// Keccak256FromBytes hashes raw bytes.
// Arguments:
// 0: data (Uint8Array)
// Returns:
// digest (Uint8Array) or "error: ..."
func Keccak256FromBytes(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (data)"
	}
	data, err := bytesArg(args[0])
	if err != nil {
		return errString(err)
	}
	return toUint8Array(utils.Keccak256FromBytes(data))
}

// Keccak256 hashes hex encoded data.
// Arguments:
// 0: data hex (string)
func Keccak256(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (dataHex)"
	}
	sum, err := utils.Keccak256(hexcodec.TrimPrefix(args[0].String()))
	if err != nil {
		return errString(err)
	}
	return hexcodec.Encode(sum)
}

// PubToAddress derives the 20-byte address.
// Arguments:
// 0: public key hex (string)
// 1: sanitize (bool)
func PubToAddress(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (pubKeyHex, sanitize)"
	}
	pub, err := hexArg(args[0])
	if err != nil {
		return errString(err)
	}
	addr, err := utils.PubToAddress(pub, args[1].Bool())
	if err != nil {
		return errString(err)
	}
	return hexcodec.Encode(addr)
}

// ChecksumAddress derives the EIP-55 address string.
// Arguments:
// 0: public key hex (string)
func ChecksumAddress(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (pubKeyHex)"
	}
	pub, err := hexArg(args[0])
	if err != nil {
		return errString(err)
	}
	s, err := utils.ChecksumAddress(pub, true)
	if err != nil {
		return errString(err)
	}
	return s
}

// HmacSha512 computes HMAC-SHA512.
// Arguments:
// 0: key hex (string)
// 1: data hex (string)
func HmacSha512(this js.Value, args []js.Value) interface{} {
	if len(args) != 2 {
		return "error: expected 2 arguments (keyHex, dataHex)"
	}
	key, err := hexArg(args[0])
	if err != nil {
		return errString(err)
	}
	data, err := hexArg(args[1])
	if err != nil {
		return errString(err)
	}
	return hexcodec.Encode(utils.HmacSha512(key, data))
}

// Ed25519PublicKey derives an Ed25519 public key.
// Arguments:
// 0: seed hex (string, 32 bytes)
func Ed25519PublicKey(this js.Value, args []js.Value) interface{} {
	if len(args) != 1 {
		return "error: expected 1 argument (seedHex)"
	}
	seed, err := hexArg(args[0])
	if err != nil {
		return errString(err)
	}
	pub, err := utils.Ed25519PublicKeyFromBytes(seed)
	if err != nil {
		return errString(err)
	}
	return hexcodec.Encode(pub)
}

// Helpers

var uint8Array = js.Global().Get("Uint8Array")

func bytesArg(v js.Value) ([]byte, error) {
	if v.Type() != js.TypeObject || !v.InstanceOf(uint8Array) {
		return nil, fmt.Errorf("expected a Uint8Array, got %s", v.Type())
	}
	b := make([]byte, v.Length())
	js.CopyBytesToGo(b, v)
	return b, nil
}

func toUint8Array(b []byte) js.Value {
	out := uint8Array.New(len(b))
	js.CopyBytesToJS(out, b)
	return out
}

func hexArg(v js.Value) ([]byte, error) {
	return hexcodec.DecodeAny(hexcodec.TrimPrefix(v.String()))
}

func errString(err error) string {
	if kind := nativeutils.Kind(err); kind != "" {
		return fmt.Sprintf("error: %s: %v", kind, err)
	}
	return fmt.Sprintf("error: %v", err)
}
