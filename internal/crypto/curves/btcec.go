package curves

import (
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/smallyu/go-nativekeys/pkg/keys"
)

// BtcecCurve is the curve provider backed by btcec. It works on affine big.Int
// coordinates through the elliptic.Curve view of the curve, which keeps its
// arithmetic path independent from the decred provider.
type BtcecCurve struct{}

var _ keys.CurveProvider = (*BtcecCurve)(nil)

// NewBtcec returns a new instance of the btcec backed provider.
func NewBtcec() *BtcecCurve {
	return &BtcecCurve{}
}

func (c *BtcecCurve) Name() string { return Btcec }

// Params returns the curve parameters (Order, etc.)
func (c *BtcecCurve) Params() *elliptic.CurveParams {
	return btcec.S256().Params()
}

func (c *BtcecCurve) ValidateScalar(scalar []byte) bool {
	if len(scalar) != keys.ScalarSize {
		return false
	}
	k := new(big.Int).SetBytes(scalar)
	return k.Sign() > 0 && k.Cmp(c.Params().N) < 0
}

func (c *BtcecCurve) DerivePoint(scalar []byte) (keys.Point, error) {
	if !c.ValidateScalar(scalar) {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "scalar out of range")
	}
	x, y := btcec.S256().ScalarBaseMult(scalar)
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "scalar produced the point at infinity")
	}
	return &affinePoint{x: x, y: y}, nil
}

func (c *BtcecCurve) Serialize(p keys.Point, form keys.Form, out []byte) (int, error) {
	ap, ok := p.(*affinePoint)
	if !ok {
		return 0, foreignPoint(c.Name(), p)
	}

	size := form.Size()
	if size == 0 {
		return 0, keys.MakeError(keys.ErrSerializationInconsistency,
			fmt.Sprintf("unsupported form %d", form))
	}

	enc := make([]byte, size)
	switch form {
	case keys.FormCompressed:
		enc[0] = 0x02
		if ap.y.Bit(0) == 1 {
			enc[0] = 0x03
		}
		ap.x.FillBytes(enc[1:33])
	case keys.FormUncompressed:
		enc[0] = 0x04
		ap.x.FillBytes(enc[1:33])
		ap.y.FillBytes(enc[33:65])
	case keys.FormRaw:
		ap.x.FillBytes(enc[:32])
		ap.y.FillBytes(enc[32:64])
	}
	return copy(out, enc), nil
}

func (c *BtcecCurve) Parse(b []byte) (keys.Point, error) {
	pub, err := btcec.ParsePubKey(b)
	if err != nil {
		return nil, keys.Error{Err: keys.ErrInvalidPublicKeyFormat, Description: err.Error()}
	}
	return &affinePoint{x: pub.X(), y: pub.Y()}, nil
}

// Add returns a + b. Both points must come from this provider.
func (c *BtcecCurve) Add(a, b keys.Point) (keys.Point, error) {
	pa, ok := a.(*affinePoint)
	if !ok {
		return nil, foreignPoint(c.Name(), a)
	}
	pb, ok := b.(*affinePoint)
	if !ok {
		return nil, foreignPoint(c.Name(), b)
	}
	x, y := btcec.S256().Add(pa.x, pa.y, pb.x, pb.y)
	if x.Sign() == 0 && y.Sign() == 0 {
		return nil, keys.MakeError(keys.ErrInvalidPrivateKey, "point sum is the point at infinity")
	}
	return &affinePoint{x: x, y: y}, nil
}

type affinePoint struct {
	x, y *big.Int
}

func (p *affinePoint) Provider() string { return Btcec }
