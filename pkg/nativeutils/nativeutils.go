// Package nativeutils exposes key derivation, address derivation, Keccak-256
// and HMAC-SHA512 as one facade over the configured curve and hash backends.
//
// Every result is a freshly allocated slice owned by the caller. On error no
// partial output is returned. A Utils value is safe for concurrent use.
package nativeutils

import (
	"bytes"
	"errors"

	"go.uber.org/zap"

	"github.com/smallyu/go-nativekeys/internal/bip32"
	"github.com/smallyu/go-nativekeys/internal/config"
	"github.com/smallyu/go-nativekeys/internal/crypto/curves"
	"github.com/smallyu/go-nativekeys/internal/crypto/hashes"
	"github.com/smallyu/go-nativekeys/internal/crypto/hmacsha512"
	"github.com/smallyu/go-nativekeys/internal/derive"
	"github.com/smallyu/go-nativekeys/internal/log"
	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// NativeUtils is the operation set offered to hosts.
type NativeUtils interface {
	ToPublicKey(privateKeyHex string, compressed bool) ([]byte, error)
	ToPublicKeyFromBytes(privateKey []byte, compressed bool) ([]byte, error)
	Keccak256(hexData string) ([]byte, error)
	Keccak256FromBytes(data []byte) []byte
	PubToAddress(pubKey []byte, sanitize bool) ([]byte, error)
	HmacSha512(key, data []byte) []byte
	Ed25519PublicKeyFromBytes(seed []byte) ([]byte, error)
}

var _ NativeUtils = (*Utils)(nil)

// Utils implements NativeUtils.
type Utils struct {
	curve    *curves.Context
	hash     keys.HashProvider
	lg       *zap.Logger
	closeLog func() error
}

type options struct {
	curveName string
	hashName  string
	curve     *curves.Context
	hash      keys.HashProvider
	lg        *zap.Logger
	closeLog  func() error
}

// Option configures New.
type Option func(*options)

// WithCurve selects a curve backend by name.
func WithCurve(name string) Option {
	return func(o *options) { o.curveName = name }
}

// WithHash selects a hash backend by name.
func WithHash(name string) Option {
	return func(o *options) { o.hashName = name }
}

// WithCurveContext uses ctx instead of a registry backend.
func WithCurveContext(ctx *curves.Context) Option {
	return func(o *options) { o.curve = ctx }
}

// WithHashProvider uses hp instead of a registry backend.
func WithHashProvider(hp keys.HashProvider) Option {
	return func(o *options) { o.hash = hp }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(lg *zap.Logger) Option {
	return func(o *options) { o.lg = lg }
}

// New builds a Utils. Without options it uses the process-wide default
// curve context and the x/crypto hash backend.
func New(opts ...Option) (*Utils, error) {
	o := options{
		curveName: curves.DefaultBackend,
		hashName:  hashes.DefaultBackend,
		lg:        log.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.curve == nil {
		var err error
		if o.curveName == curves.DefaultBackend {
			o.curve, err = curves.Default()
		} else {
			o.curve, err = curves.ForBackend(o.curveName)
		}
		if err != nil {
			o.lg.Error("curve backend unavailable", zap.String("backend", o.curveName), zap.Error(err))
			return nil, err
		}
	}
	if o.hash == nil {
		var err error
		if o.hash, err = hashes.Lookup(o.hashName); err != nil {
			o.lg.Error("hash backend unavailable", zap.String("backend", o.hashName), zap.Error(err))
			return nil, err
		}
	}

	o.lg.Debug("native utils ready",
		zap.String("curve", o.curve.Name()),
		zap.String("hash", o.hash.Name()))
	return &Utils{curve: o.curve, hash: o.hash, lg: o.lg, closeLog: o.closeLog}, nil
}

// NewFromConfig builds a Utils and its logger from cfg. Later options win.
// The caller owns the logger's output and must Close the Utils.
func NewFromConfig(cfg *config.Config, opts ...Option) (*Utils, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	lg, closeLog, err := log.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	base := []Option{WithCurve(cfg.Curve), WithHash(cfg.Hash), WithLogger(lg),
		func(o *options) { o.closeLog = closeLog }}
	u, err := New(append(base, opts...)...)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	return u, nil
}

// Close flushes the logger and releases a log file opened by NewFromConfig.
// Loggers passed in through WithLogger are left to their owner.
func (u *Utils) Close() error {
	if u.closeLog == nil {
		return nil
	}
	return u.closeLog()
}

// Logger returns the logger the facade writes to.
func (u *Utils) Logger() *zap.Logger { return u.lg }

// CurveContext returns the curve context in use.
func (u *Utils) CurveContext() *curves.Context { return u.curve }

// HashProvider returns the hash backend in use.
func (u *Utils) HashProvider() keys.HashProvider { return u.hash }

// Keychain returns a BIP32 keychain over the same backends.
func (u *Utils) Keychain() *bip32.Keychain {
	return bip32.NewKeychain(u.curve, u.hash)
}

// ToPublicKey derives the public key for a 64 character hex private key.
func (u *Utils) ToPublicKey(privateKeyHex string, compressed bool) ([]byte, error) {
	pub, err := derive.PublicKeyFromHex(u.curve, privateKeyHex, compressed)
	if err != nil {
		return nil, u.fail("toPublicKey", err, zap.Int("hex_len", len(privateKeyHex)))
	}
	u.lg.Debug("toPublicKey", zap.Bool("compressed", compressed), zap.Int("size", len(pub)))
	return pub, nil
}

// ToPublicKeyFromBytes derives the public key for a 32-byte private key.
func (u *Utils) ToPublicKeyFromBytes(privateKey []byte, compressed bool) ([]byte, error) {
	pub, err := derive.PublicKey(u.curve, privateKey, compressed)
	if err != nil {
		return nil, u.fail("toPublicKeyFromBytes", err, zap.Int("len", len(privateKey)))
	}
	u.lg.Debug("toPublicKeyFromBytes", zap.Bool("compressed", compressed), zap.Int("size", len(pub)))
	return pub, nil
}

// Keccak256 hashes the bytes encoded by hexData.
func (u *Utils) Keccak256(hexData string) ([]byte, error) {
	sum, err := derive.Keccak256Hex(u.hash, hexData)
	if err != nil {
		return nil, u.fail("keccak256", err, zap.Int("hex_len", len(hexData)))
	}
	return sum, nil
}

// Keccak256FromBytes hashes data.
func (u *Utils) Keccak256FromBytes(data []byte) []byte {
	return derive.Keccak256(u.hash, data)
}

// PubToAddress returns the 20-byte address of a public key. See
// derive.Address for the sanitize semantics.
func (u *Utils) PubToAddress(pubKey []byte, sanitize bool) ([]byte, error) {
	addr, err := derive.Address(u.curve, u.hash, pubKey, sanitize)
	if err != nil {
		return nil, u.fail("pubToAddress", err, zap.Int("len", len(pubKey)), zap.Bool("sanitize", sanitize))
	}
	return bytes.Clone(addr[:]), nil
}

// ChecksumAddress returns the EIP-55 form of the address of pubKey.
func (u *Utils) ChecksumAddress(pubKey []byte, sanitize bool) (string, error) {
	addr, err := derive.Address(u.curve, u.hash, pubKey, sanitize)
	if err != nil {
		return "", u.fail("checksumAddress", err, zap.Int("len", len(pubKey)))
	}
	return derive.ChecksumHex(addr, u.hash), nil
}

// HmacSha512 returns HMAC-SHA512(key, data) from the in-house engine.
func (u *Utils) HmacSha512(key, data []byte) []byte {
	mac := hmacsha512.Sum(key, data)
	return bytes.Clone(mac[:])
}

// HmacSha512Checked computes the MAC with the in-house engine and with the
// hash backend's HMAC(SHA-512), and fails unless both agree.
func (u *Utils) HmacSha512Checked(key, data []byte) ([]byte, error) {
	mac := hmacsha512.Sum(key, data)

	ref, err := u.hash.NewMAC(hashes.HMACSHA512, key)
	if err != nil {
		return nil, u.fail("hmacSha512Checked", err)
	}
	ref.Write(data)
	if !hmacsha512.Equal(mac[:], ref.Sum(nil)) {
		return nil, u.fail("hmacSha512Checked",
			keys.MakeError(keys.ErrProviderUnavailable, "HMAC-SHA512 backends disagree"),
			zap.String("hash", u.hash.Name()))
	}
	return bytes.Clone(mac[:]), nil
}

// Ed25519PublicKeyFromBytes derives the Ed25519 public key of a 32-byte
// seed.
func (u *Utils) Ed25519PublicKeyFromBytes(seed []byte) ([]byte, error) {
	pub, err := curves.Ed25519PublicKeyFromSeed(seed)
	if err != nil {
		return nil, u.fail("ed25519PublicKeyFromBytes", err, zap.Int("len", len(seed)))
	}
	return pub, nil
}

// fail logs err at debug level with its kind and returns it unchanged.
// Inputs are only ever described by length.
func (u *Utils) fail(op string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("kind", Kind(err)), zap.Error(err))
	u.lg.Debug(op+" failed", fields...)
	return err
}

// Kind returns the name of the error kind carried by err, or "" when err is
// not a keys error.
func Kind(err error) string {
	var kind keys.ErrorKind
	if errors.As(err, &kind) {
		return string(kind)
	}
	return ""
}
