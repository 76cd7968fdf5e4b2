// Package bip32 expands a seed into a tree of secp256k1 keys with
// HMAC-SHA512 chain codes.
package bip32

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/mr-tron/base58"

	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hashes"
	"github.com/smallyu/go-nativekeys/internal/crypto/hmacsha512"
	"github.com/smallyu/go-nativekeys/internal/derive"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

const (
	MinSeedSize = 16
	MaxSeedSize = 64

	// serializedKeyLen is version (4) || depth (1) || parent fingerprint (4) ||
	// child number (4) || chain code (32) || key data (33).
	serializedKeyLen = 78
	checksumLen      = 4
)

var masterSecret = []byte("Bitcoin seed")

// Keychain binds extended keys to the curve context and hash backend used to
// derive and serialize them.
type Keychain struct {
	ctx *curves.Context
	hp  keys.HashProvider
}

// NewKeychain returns a keychain over ctx and hp.
func NewKeychain(ctx *curves.Context, hp keys.HashProvider) *Keychain {
	return &Keychain{ctx: ctx, hp: hp}
}

// DefaultKeychain uses the process-wide curve context and the x/crypto hash
// backend.
func DefaultKeychain() (*Keychain, error) {
	ctx, err := curves.Default()
	if err != nil {
		return nil, err
	}
	return NewKeychain(ctx, hashes.NewXCrypto()), nil
}

// NewMaster returns the master node for seed on the default keychain.
func NewMaster(seed []byte) (*ExtendedKey, error) {
	kc, err := DefaultKeychain()
	if err != nil {
		return nil, err
	}
	return kc.NewMaster(seed)
}

// ParseExtendedKey decodes an xprv/xpub string on the default keychain.
func ParseExtendedKey(s string) (*ExtendedKey, error) {
	kc, err := DefaultKeychain()
	if err != nil {
		return nil, err
	}
	return kc.Parse(s)
}

// NewMaster computes HMAC-SHA512("Bitcoin seed", seed) and splits it into
// the master key and chain code.
func (kc *Keychain) NewMaster(seed []byte) (*ExtendedKey, error) {
	if len(seed) < MinSeedSize || len(seed) > MaxSeedSize {
		return nil, keys.MakeError(keys.ErrLengthMismatch,
			fmt.Sprintf("seed must be %d to %d bytes, got %d", MinSeedSize, MaxSeedSize, len(seed)))
	}

	key, chainCode, err := hmacCKD(seed, masterSecret)
	if err != nil {
		return nil, err
	}
	return &ExtendedKey{
		Version:   MainnetPrivate,
		ChainCode: chainCode,
		key:       key,
		kc:        kc,
	}, nil
}

// hmacCKD returns IL and IR of HMAC-SHA512(salt, data). IL must be a valid
// scalar.
func hmacCKD(data, salt []byte) (il, ir []byte, err error) {
	I := hmacsha512.Sum(salt, data)
	defer clear(I[:])

	il = bytes.Clone(I[:32])
	ir = bytes.Clone(I[32:])
	if err := derive.ValidateScalar(il); err != nil {
		clear(il)
		return nil, nil, keys.MakeError(keys.ErrInvalidPrivateKey,
			"derived key is zero or not below the curve order, try the next index")
	}
	return il, ir, nil
}

// ExtendedKey is a node of the key tree.
type ExtendedKey struct {
	Version           KeyVersion
	Depth             uint8
	ParentFingerprint [4]byte
	ChildNumber       uint32
	ChainCode         []byte

	// key is the 32-byte scalar for private nodes and the 33-byte
	// compressed point for public ones.
	key []byte
	kc  *Keychain
}

func (k *ExtendedKey) IsPrivate() bool {
	return k.Version.IsPrivate()
}

// PublicKey returns the compressed public key of the node.
func (k *ExtendedKey) PublicKey() ([]byte, error) {
	if !k.IsPrivate() {
		return bytes.Clone(k.key), nil
	}
	return derive.PublicKey(k.kc.ctx, k.key, true)
}

// PrivateKey returns a copy of the 32-byte scalar of a private node.
func (k *ExtendedKey) PrivateKey() ([]byte, error) {
	if !k.IsPrivate() {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "extended key is public")
	}
	return bytes.Clone(k.key), nil
}

// Fingerprint returns the first four bytes of HASH160 of the public key.
func (k *ExtendedKey) Fingerprint() ([4]byte, error) {
	var fp [4]byte
	pub, err := k.PublicKey()
	if err != nil {
		return fp, err
	}
	id, err := hashes.Hash160(k.kc.hp, pub)
	if err != nil {
		return fp, err
	}
	copy(fp[:], id)
	return fp, nil
}

// Child derives the child at index i. Private parents yield private
// children; public parents yield public children and cannot derive hardened
// indexes.
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, error) {
	if k.Depth == 0xff {
		return nil, ErrMaxDepthExceeded
	}

	hardened := i&HardenedBit != 0
	if hardened && !k.IsPrivate() {
		return nil, ErrHardenedFromPublic
	}

	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}

	data := make([]byte, keys.CompressedKeySize+4)
	if hardened {
		// 0x00 || ser256(k) || ser32(i)
		copy(data[1:], k.key)
	} else {
		// serP(K) || ser32(i)
		copy(data, pub)
	}
	binary.BigEndian.PutUint32(data[keys.CompressedKeySize:], i)
	defer clear(data)

	il, chainCode, err := hmacCKD(data, k.ChainCode)
	if err != nil {
		return nil, err
	}
	defer clear(il)

	fp, err := k.Fingerprint()
	if err != nil {
		return nil, err
	}

	child := &ExtendedKey{
		Version:           k.Version,
		Depth:             k.Depth + 1,
		ParentFingerprint: fp,
		ChildNumber:       i,
		ChainCode:         chainCode,
		kc:                k.kc,
	}

	if k.IsPrivate() {
		// parse256(IL) + k mod n
		var a, b secp256k1.ModNScalar
		a.SetByteSlice(il)
		b.SetByteSlice(k.key)
		a.Add(&b)
		b.Zero()
		if a.IsZero() {
			return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "child key is zero, try the next index")
		}
		sum := a.Bytes()
		a.Zero()
		child.key = bytes.Clone(sum[:])
		clear(sum[:])
		return child, nil
	}

	// point(parse256(IL)) + K
	ctx := k.kc.ctx
	ilPoint, err := ctx.DerivePoint(il)
	if err != nil {
		return nil, err
	}
	parent, err := ctx.Parse(k.key)
	if err != nil {
		return nil, err
	}
	sum, err := ctx.Add(ilPoint, parent)
	if err != nil {
		return nil, err
	}
	if child.key, err = derive.Serialize(ctx, sum, keys.FormCompressed); err != nil {
		return nil, err
	}
	return child, nil
}

// Derive walks path from k.
func (k *ExtendedKey) Derive(path []uint32) (*ExtendedKey, error) {
	node := k
	for n, i := range path {
		var err error
		if node, err = node.Child(i); err != nil {
			return nil, fmt.Errorf("derive %s: %w", FormatPath(path[:n+1]), err)
		}
	}
	return node, nil
}

// DerivePath parses path and walks it from k.
func (k *ExtendedKey) DerivePath(path string) (*ExtendedKey, error) {
	p, err := ParsePath(path)
	if err != nil {
		return nil, err
	}
	return k.Derive(p)
}

// Neuter returns the public counterpart of k. Public keys are returned
// unchanged.
func (k *ExtendedKey) Neuter() (*ExtendedKey, error) {
	if !k.IsPrivate() {
		return k, nil
	}
	pub, err := k.PublicKey()
	if err != nil {
		return nil, err
	}
	return &ExtendedKey{
		Version:           k.Version.ToPublic(),
		Depth:             k.Depth,
		ParentFingerprint: k.ParentFingerprint,
		ChildNumber:       k.ChildNumber,
		ChainCode:         bytes.Clone(k.ChainCode),
		key:               pub,
		kc:                k.kc,
	}, nil
}

// MarshalBinary returns the 82-byte serialization including the checksum.
func (k *ExtendedKey) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, serializedKeyLen+checksumLen)
	out = append(out, k.Version[:]...)
	out = append(out, k.Depth)
	out = append(out, k.ParentFingerprint[:]...)
	out = binary.BigEndian.AppendUint32(out, k.ChildNumber)
	out = append(out, k.ChainCode...)
	if k.IsPrivate() {
		out = append(out, 0x00)
		out = append(out, k.key...)
	} else {
		out = append(out, k.key...)
	}
	if len(out) != serializedKeyLen {
		return nil, keys.MakeError(keys.ErrSerializationInconsistency,
			fmt.Sprintf("extended key payload is %d bytes, want %d", len(out), serializedKeyLen))
	}

	sum, err := k.kc.checksum(out)
	if err != nil {
		return nil, err
	}
	return append(out, sum...), nil
}

// String returns the base58 xprv/xpub form, or "" if k cannot be encoded.
func (k *ExtendedKey) String() string {
	bin, err := k.MarshalBinary()
	if err != nil {
		return ""
	}
	return base58.Encode(bin)
}

// Parse decodes a base58 xprv/xpub string.
func (kc *Keychain) Parse(s string) (*ExtendedKey, error) {
	data, err := base58.Decode(s)
	if err != nil {
		return nil, keys.Error{Err: keys.ErrInvalidFormat, Description: err.Error()}
	}
	if len(data) != serializedKeyLen+checksumLen {
		return nil, keys.MakeError(keys.ErrLengthMismatch,
			fmt.Sprintf("extended key is %d bytes, want %d", len(data), serializedKeyLen+checksumLen))
	}

	payload, sum := data[:serializedKeyLen], data[serializedKeyLen:]
	want, err := kc.checksum(payload)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(sum, want) {
		return nil, ErrBadChecksum
	}

	k := &ExtendedKey{kc: kc}
	copy(k.Version[:], payload[:4])
	if !k.Version.known() {
		return nil, ErrUnknownVersion
	}
	k.Depth = payload[4]
	copy(k.ParentFingerprint[:], payload[5:9])
	k.ChildNumber = binary.BigEndian.Uint32(payload[9:13])
	k.ChainCode = bytes.Clone(payload[13:45])

	keyData := payload[45:78]
	if (keyData[0] == 0x00) != k.Version.IsPrivate() {
		return nil, ErrInvalidPrivateFlag
	}
	if k.IsPrivate() {
		if err := derive.ValidateScalar(keyData[1:]); err != nil {
			return nil, err
		}
		k.key = bytes.Clone(keyData[1:])
	} else {
		if _, err := kc.ctx.Parse(keyData); err != nil {
			return nil, err
		}
		k.key = bytes.Clone(keyData)
	}
	return k, nil
}

// checksum is the first four bytes of double SHA-256.
func (kc *Keychain) checksum(payload []byte) ([]byte, error) {
	first, err := hashes.Sum(kc.hp, hashes.SHA256, payload)
	if err != nil {
		return nil, err
	}
	second, err := hashes.Sum(kc.hp, hashes.SHA256, first)
	if err != nil {
		return nil, err
	}
	return second[:checksumLen], nil
}
