// Package curve implements short Weierstrass curves y² = x³ + ax + b over a
// prime field with affine point arithmetic, point compression and a binary
// wire format.
//
// The arithmetic is variable-time. It is not hardened against timing or
// cache side channels.
package curve

import (
	"fmt"
	"math/big"

	"github.com/Caqil/eccryptor/internal/math"
)

// PrimalityRounds is the number of Miller-Rabin rounds used to accept p
const PrimalityRounds = 20

// CurveParams contains the parameters of an elliptic curve
type CurveParams struct {
	// Name of the curve
	Name string

	// A, B are the coefficients of y² = x³ + Ax + B
	A, B *big.Int

	// P is the prime field modulus
	P *big.Int

	// N is the order of the base point
	N *big.Int

	// Gx, Gy are the coordinates of the generator
	Gx, Gy *big.Int

	// BitSize is the size of the field in bits
	BitSize int
}

// Curve is an immutable curve with its base point. Instances are safe for
// concurrent use.
type Curve struct {
	name string
	a    *big.Int
	b    *big.Int
	p    *big.Int
	n    *big.Int
	g    *Point

	// psr2 = (p+1)/4, the square-root exponent for p ≡ 3 (mod 4)
	psr2 *big.Int

	// pcs is the compressed point size in bytes
	pcs int
}

// NewCurveFromParams builds a curve from a trusted, complete parameter set.
// It validates p, the discriminant and the base point, and precomputes the
// base point's multiples table.
func NewCurveFromParams(params *CurveParams) (*Curve, error) {
	if params == nil {
		return nil, fmt.Errorf("%w: nil parameters", ErrInvalidCurve)
	}
	if params.Gx == nil || params.Gy == nil {
		return nil, fmt.Errorf("%w: missing base point", ErrInvalidCurve)
	}

	c, err := newCurve(params.Name, params.A, params.B, params.P, params.N)
	if err != nil {
		return nil, err
	}

	g, err := c.NewPoint(params.Gx, params.Gy)
	if err != nil {
		return nil, fmt.Errorf("%w: base point not on curve", ErrInvalidCurve)
	}
	c.g = g
	c.g.Precompute()

	return c, nil
}

// NewCurveFromEquation validates the equation y² = x³ + ax + b over F_p.
// Deriving the group order and a base point requires point counting, which
// this package does not implement, so a valid equation yields
// ErrUnsupportedCurve. Use NewCurveFromParams with a complete parameter set.
func NewCurveFromEquation(a, b, p *big.Int) (*Curve, error) {
	if err := validateEquation(a, b, p); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: order and base point cannot be derived from (a, b, p)", ErrUnsupportedCurve)
}

// newCurve validates (a, b, p, n) and derives psr2 and pcs. The base point
// is left unset.
func newCurve(name string, a, b, p, n *big.Int) (*Curve, error) {
	if err := validateEquation(a, b, p); err != nil {
		return nil, err
	}
	if n == nil || n.Sign() <= 0 {
		return nil, fmt.Errorf("%w: order must be positive", ErrInvalidCurve)
	}

	psr2, err := math.SqrtExponent(p)
	if err != nil {
		return nil, fmt.Errorf("%w: point decompression needs p ≡ 3 mod 4", ErrUnsupportedCurve)
	}

	return &Curve{
		name: name,
		a:    math.Mod(a, p),
		b:    math.Mod(b, p),
		p:    new(big.Int).Set(p),
		n:    new(big.Int).Set(n),
		psr2: psr2,
		pcs:  pointSize(p),
	}, nil
}

func validateEquation(a, b, p *big.Int) error {
	if a == nil || b == nil || p == nil {
		return fmt.Errorf("%w: nil coefficient", ErrInvalidCurve)
	}
	if !math.IsProbablePrime(p, PrimalityRounds) {
		return fmt.Errorf("%w: p is not prime", ErrInvalidCurve)
	}

	// 4a³ + 27b² must not vanish mod p
	disc := new(big.Int).Exp(a, big.NewInt(3), p)
	disc.Mul(disc, big.NewInt(4))
	b2 := new(big.Int).Mul(b, b)
	b2.Mul(b2, big.NewInt(27))
	disc.Add(disc, b2)
	if disc.Mod(disc, p).Sign() == 0 {
		return fmt.Errorf("%w: curve is singular", ErrInvalidCurve)
	}
	return nil
}

// pointSize is one marker byte plus the byte length of p, so x never
// shares a byte with the marker.
func pointSize(p *big.Int) int {
	return len(p.Bytes()) + 1
}

// Name returns the curve name
func (c *Curve) Name() string {
	return c.name
}

func (c *Curve) String() string {
	return c.name
}

// A returns a copy of the coefficient a
func (c *Curve) A() *big.Int { return new(big.Int).Set(c.a) }

// B returns a copy of the coefficient b
func (c *Curve) B() *big.Int { return new(big.Int).Set(c.b) }

// P returns a copy of the field modulus
func (c *Curve) P() *big.Int { return new(big.Int).Set(c.p) }

// N returns a copy of the base point order
func (c *Curve) N() *big.Int { return new(big.Int).Set(c.n) }

// PointSize returns the length in bytes of a compressed point
func (c *Curve) PointSize() int {
	return c.pcs
}

// Generator returns the base point G
func (c *Curve) Generator() *Point {
	return c.g
}

// Params returns a copy of the curve parameters
func (c *Curve) Params() *CurveParams {
	return &CurveParams{
		Name:    c.name,
		A:       c.A(),
		B:       c.B(),
		P:       c.P(),
		N:       c.N(),
		Gx:      c.g.X(),
		Gy:      c.g.Y(),
		BitSize: c.p.BitLen(),
	}
}

// Equal reports whether both curves have the same (a, b, p, n)
func (c *Curve) Equal(other *Curve) bool {
	if c == other {
		return true
	}
	if c == nil || other == nil {
		return false
	}
	return c.a.Cmp(other.a) == 0 &&
		c.b.Cmp(other.b) == 0 &&
		c.p.Cmp(other.p) == 0 &&
		c.n.Cmp(other.n) == 0
}

// IsOnCurve reports whether pt satisfies the curve equation. The identity
// is always on the curve.
func (c *Curve) IsOnCurve(pt *Point) bool {
	if pt == nil {
		return false
	}
	if pt.inf {
		return true
	}
	return c.satisfies(pt.x, pt.y)
}

func (c *Curve) satisfies(x, y *big.Int) bool {
	if x.Sign() < 0 || x.Cmp(c.p) >= 0 || y.Sign() < 0 || y.Cmp(c.p) >= 0 {
		return false
	}
	lhs := math.ModMul(y, y, c.p)
	return lhs.Cmp(c.rhs(x)) == 0
}

// rhs returns x³ + ax + b mod p
func (c *Curve) rhs(x *big.Int) *big.Int {
	r := new(big.Int).Mul(x, x)
	r.Add(r, c.a)
	r.Mul(r, x)
	r.Add(r, c.b)
	return r.Mod(r, c.p)
}

// NewPoint returns the affine point (x, y), or ErrInvalidPoint when it is
// not on the curve
func (c *Curve) NewPoint(x, y *big.Int) (*Point, error) {
	if x == nil || y == nil {
		return nil, ErrInvalidPoint
	}
	if !c.satisfies(x, y) {
		return nil, ErrInvalidPoint
	}
	return &Point{
		x:     new(big.Int).Set(x),
		y:     new(big.Int).Set(y),
		curve: c,
	}, nil
}

// Identity returns the point at infinity
func (c *Curve) Identity() *Point {
	return &Point{
		x:     new(big.Int),
		y:     new(big.Int),
		curve: c,
		inf:   true,
	}
}

// Decompress decodes a PointSize-byte compressed point. A leading 2 marks
// the identity; otherwise a non-zero leading byte selects the odd root and
// the remaining bytes hold x.
func (c *Curve) Decompress(data []byte) (*Point, error) {
	if len(data) != c.pcs {
		return nil, fmt.Errorf("%w: compressed point is %d bytes, want %d", ErrMalformedData, len(data), c.pcs)
	}
	if data[0] == markerIdentity {
		return c.Identity(), nil
	}

	odd := data[0] != 0
	buf := make([]byte, len(data))
	copy(buf, data)
	buf[0] = 0
	x := new(big.Int).SetBytes(buf)
	if x.Cmp(c.p) >= 0 {
		return nil, fmt.Errorf("%w: x out of range", ErrInvalidPoint)
	}

	y, err := math.ModSqrt(c.rhs(x), c.psr2, c.p)
	if err != nil {
		return nil, fmt.Errorf("%w: no point with this x", ErrInvalidPoint)
	}
	if math.IsOdd(y) != odd {
		if y.Sign() == 0 {
			return nil, fmt.Errorf("%w: odd root requested for y = 0", ErrInvalidPoint)
		}
		y.Sub(c.p, y)
	}

	return c.NewPoint(x, y)
}
