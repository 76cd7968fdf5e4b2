package curves

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// Flags records the capabilities a Context was created for.
type Flags uint8

const (
	// FlagDerive enables public key derivation.
	FlagDerive Flags = 1 << iota

	// FlagParse enables public key parsing and re-serialization.
	FlagParse

	// FlagAll enables every capability.
	FlagAll = FlagDerive | FlagParse
)

// generatorCompressed is the SEC1 compressed encoding of G.
var generatorCompressed, _ = hex.DecodeString(
	"0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")

// Context wraps a CurveProvider that passed its construction self-test. It
// is immutable and safe for concurrent use.
type Context struct {
	provider keys.CurveProvider
	flags    Flags
}

// NewContext validates provider by computing 1*G and comparing it, in both
// compressed and parsed form, against the generator encoding.
func NewContext(provider keys.CurveProvider, flags Flags) (*Context, error) {
	if provider == nil {
		return nil, keys.MakeError(keys.ErrProviderUnavailable, "nil curve provider")
	}
	if flags == 0 || flags&^FlagAll != 0 {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("invalid context flags %#x", uint8(flags)))
	}

	one := make([]byte, keys.ScalarSize)
	one[keys.ScalarSize-1] = 1

	g, err := provider.DerivePoint(one)
	if err != nil {
		return nil, selfTestError(provider, err.Error())
	}
	out := make([]byte, keys.CompressedKeySize)
	n, err := provider.Serialize(g, keys.FormCompressed, out)
	if err != nil {
		return nil, selfTestError(provider, err.Error())
	}
	if n != keys.CompressedKeySize || !bytes.Equal(out, generatorCompressed) {
		return nil, selfTestError(provider, "1*G does not match the generator")
	}

	if flags&FlagParse != 0 {
		if _, err := provider.Parse(generatorCompressed); err != nil {
			return nil, selfTestError(provider, err.Error())
		}
	}

	return &Context{provider: provider, flags: flags}, nil
}

func selfTestError(p keys.CurveProvider, reason string) error {
	return keys.MakeError(keys.ErrProviderUnavailable,
		fmt.Sprintf("curve backend %s failed self-test: %s", p.Name(), reason))
}

// Provider returns the underlying provider.
func (c *Context) Provider() keys.CurveProvider { return c.provider }

// Name returns the backend name.
func (c *Context) Name() string { return c.provider.Name() }

// Flags returns the capabilities the context was created with.
func (c *Context) Flags() Flags { return c.flags }

func (c *Context) ValidateScalar(scalar []byte) bool {
	return c.provider.ValidateScalar(scalar)
}

func (c *Context) DerivePoint(scalar []byte) (keys.Point, error) {
	if c.flags&FlagDerive == 0 {
		return nil, keys.MakeError(keys.ErrProviderUnavailable, "context not created for derivation")
	}
	return c.provider.DerivePoint(scalar)
}

func (c *Context) Serialize(p keys.Point, form keys.Form, out []byte) (int, error) {
	return c.provider.Serialize(p, form, out)
}

func (c *Context) Parse(b []byte) (keys.Point, error) {
	if c.flags&FlagParse == 0 {
		return nil, keys.MakeError(keys.ErrProviderUnavailable, "context not created for parsing")
	}
	return c.provider.Parse(b)
}

// PointAdder is implemented by providers that can add two of their points.
type PointAdder interface {
	Add(a, b keys.Point) (keys.Point, error)
}

// Add returns a + b when the provider supports point addition.
func (c *Context) Add(a, b keys.Point) (keys.Point, error) {
	adder, ok := c.provider.(PointAdder)
	if !ok {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("curve backend %s cannot add points", c.Name()))
	}
	return adder.Add(a, b)
}

var (
	defaultOnce sync.Once
	defaultCtx  *Context
	defaultErr  error
)

// Default returns the process-wide context over DefaultBackend. It is built
// on first use; concurrent first callers all observe the same result.
func Default() (*Context, error) {
	defaultOnce.Do(func() {
		defaultCtx, defaultErr = ForBackend(DefaultBackend)
	})
	return defaultCtx, defaultErr
}

type lazyContext struct {
	once sync.Once
	ctx  *Context
	err  error
}

var backends sync.Map // backend name -> *lazyContext

// ForBackend returns the memoized full-capability context for name.
func ForBackend(name string) (*Context, error) {
	if _, ok := registry[name]; !ok {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("unknown curve backend %q", name))
	}

	v, _ := backends.LoadOrStore(name, &lazyContext{})
	lc := v.(*lazyContext)
	lc.once.Do(func() {
		p, err := Lookup(name)
		if err != nil {
			lc.err = err
			return
		}
		lc.ctx, lc.err = NewContext(p, FlagAll)
	})
	return lc.ctx, lc.err
}
