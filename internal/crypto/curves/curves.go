package curves

import (
	"fmt"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// Backend names accepted by Lookup.
const (
	Decred = "decred"
	Btcec  = "btcec"

	// DefaultBackend is the backend used by Default.
	DefaultBackend = Decred
)

var registry = map[string]func() keys.CurveProvider{
	Decred: func() keys.CurveProvider { return NewSecp256k1() },
	Btcec:  func() keys.CurveProvider { return NewBtcec() },
}

// Lookup returns a fresh provider for the named backend.
func Lookup(name string) (keys.CurveProvider, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, keys.MakeError(keys.ErrProviderUnavailable,
			fmt.Sprintf("unknown curve backend %q", name))
	}
	return ctor(), nil
}

// Backends lists the registered backend names in sorted order.
func Backends() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Secp256k1 is the curve provider backed by the decred secp256k1 package.
type Secp256k1 struct{}

var _ keys.CurveProvider = (*Secp256k1)(nil)

// NewSecp256k1 returns a new instance of the decred backed provider.
func NewSecp256k1() *Secp256k1 {
	return &Secp256k1{}
}

func (c *Secp256k1) Name() string { return Decred }

func (c *Secp256k1) ValidateScalar(scalar []byte) bool {
	if len(scalar) != keys.ScalarSize {
		return false
	}
	var k secp256k1.ModNScalar
	overflow := k.SetByteSlice(scalar)
	valid := !overflow && !k.IsZero()
	k.Zero()
	return valid
}

func (c *Secp256k1) DerivePoint(scalar []byte) (keys.Point, error) {
	if !c.ValidateScalar(scalar) {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "scalar out of range")
	}

	var k secp256k1.ModNScalar
	k.SetByteSlice(scalar)
	defer k.Zero()

	var result secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&k, &result)
	if (result.X.IsZero() && result.Y.IsZero()) || result.Z.IsZero() {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "scalar produced the point at infinity")
	}
	result.ToAffine()
	return &decredPoint{pub: secp256k1.NewPublicKey(&result.X, &result.Y)}, nil
}

func (c *Secp256k1) Serialize(p keys.Point, form keys.Form, out []byte) (int, error) {
	dp, ok := p.(*decredPoint)
	if !ok {
		return 0, foreignPoint(c.Name(), p)
	}

	var enc []byte
	switch form {
	case keys.FormCompressed:
		enc = dp.pub.SerializeCompressed()
	case keys.FormUncompressed:
		enc = dp.pub.SerializeUncompressed()
	case keys.FormRaw:
		enc = dp.pub.SerializeUncompressed()[1:]
	default:
		return 0, keys.MakeError(keys.ErrSerializationInconsistency,
			fmt.Sprintf("unsupported form %d", form))
	}
	return copy(out, enc), nil
}

func (c *Secp256k1) Parse(b []byte) (keys.Point, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return nil, keys.Error{Err: keys.ErrInvalidPublicKeyFormat, Description: err.Error()}
	}
	return &decredPoint{pub: pub}, nil
}

// Add returns a + b. Both points must come from this provider.
func (c *Secp256k1) Add(a, b keys.Point) (keys.Point, error) {
	pa, ok := a.(*decredPoint)
	if !ok {
		return nil, foreignPoint(c.Name(), a)
	}
	pb, ok := b.(*decredPoint)
	if !ok {
		return nil, foreignPoint(c.Name(), b)
	}

	var ja, jb, sum secp256k1.JacobianPoint
	pa.pub.AsJacobian(&ja)
	pb.pub.AsJacobian(&jb)
	secp256k1.AddNonConst(&ja, &jb, &sum)
	if (sum.X.IsZero() && sum.Y.IsZero()) || sum.Z.IsZero() {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "point sum is the point at infinity")
	}
	sum.ToAffine()
	return &decredPoint{pub: secp256k1.NewPublicKey(&sum.X, &sum.Y)}, nil
}

type decredPoint struct {
	pub *secp256k1.PublicKey
}

func (p *decredPoint) Provider() string { return Decred }

func foreignPoint(want string, p keys.Point) error {
	got := "<nil>"
	if p != nil {
		got = p.Provider()
	}
	return keys.MakeError(keys.ErrInvalidPublicKeyFormat,
		fmt.Sprintf("point from provider %q handed to %q", got, want))
}
