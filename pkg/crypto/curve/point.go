package curve

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	"github.com/Caqil/eccryptor/internal/math"
)

const (
	// markerIdentity is the leading byte of a compressed identity point
	markerIdentity byte = 2
	// markerOdd is the leading byte of a compressed point with odd y
	markerOdd byte = 1
)

var three = big.NewInt(3)

// fastCacheSize is the number of multiples kept by Precompute (0·P .. 255·P)
const fastCacheSize = 256

// Point is an affine point on a Curve, or the identity. Points are
// immutable once built and may be shared between goroutines.
type Point struct {
	x     *big.Int
	y     *big.Int
	curve *Curve
	inf   bool

	fastOnce sync.Once
	fast     atomic.Pointer[[fastCacheSize]*Point]
}

// Curve returns the curve the point belongs to
func (p *Point) Curve() *Curve {
	return p.curve
}

// X returns a copy of the x coordinate (zero for the identity)
func (p *Point) X() *big.Int {
	return new(big.Int).Set(p.x)
}

// Y returns a copy of the y coordinate (zero for the identity)
func (p *Point) Y() *big.Int {
	return new(big.Int).Set(p.y)
}

// IsIdentity checks if point is the point at infinity
func (p *Point) IsIdentity() bool {
	return p.inf
}

// Equal reports whether p and q are the same point on the same curve
func (p *Point) Equal(q *Point) bool {
	if p == nil || q == nil {
		return p == q
	}
	if !p.curve.Equal(q.curve) {
		return false
	}
	if p.inf || q.inf {
		return p.inf == q.inf
	}
	return p.x.Cmp(q.x) == 0 && p.y.Cmp(q.y) == 0
}

func (p *Point) String() string {
	if p.inf {
		return "O"
	}
	return fmt.Sprintf("(%s, %s)", p.x, p.y)
}

// Add returns p + q. Both points must belong to equal curves.
func (p *Point) Add(q *Point) (*Point, error) {
	if p == nil || q == nil {
		return nil, ErrInvalidPoint
	}
	if !p.curve.Equal(q.curve) {
		return nil, ErrCurveMismatch
	}
	return p.add(q), nil
}

func (p *Point) add(q *Point) *Point {
	if p.inf {
		return q
	}
	if q.inf {
		return p
	}

	c := p.curve
	var alpha *big.Int
	if p.x.Cmp(q.x) == 0 {
		// P + (-P) = O, including 2P for points of order two
		if p.y.Cmp(q.y) != 0 || p.y.Sign() == 0 {
			return c.Identity()
		}
		// α = (3x² + a) / 2y
		num := math.ModAdd(math.ModMul(three, math.ModMul(p.x, p.x, c.p), c.p), c.a, c.p)
		alpha = math.ModMul(num, c.inverse(new(big.Int).Lsh(p.y, 1)), c.p)
	} else {
		// α = (y₂ - y₁) / (x₂ - x₁)
		num := math.ModSub(q.y, p.y, c.p)
		alpha = math.ModMul(num, c.inverse(math.ModSub(q.x, p.x, c.p)), c.p)
	}

	// x₃ = α² - x₁ - x₂, y₃ = α(x₁ - x₃) - y₁
	x3 := math.ModSub(math.ModSub(math.ModMul(alpha, alpha, c.p), p.x, c.p), q.x, c.p)
	y3 := math.ModSub(math.ModMul(alpha, math.ModSub(p.x, x3, c.p), c.p), p.y, c.p)

	return &Point{x: x3, y: y3, curve: c}
}

// inverse returns v⁻¹ mod p. v is never a multiple of p on the paths that
// call it, and p was accepted as prime, so an inverse always exists.
func (c *Curve) inverse(v *big.Int) *big.Int {
	inv, err := math.ModInverse(v, c.p)
	if err != nil {
		panic(fmt.Sprintf("curve %s: %v", c.name, err))
	}
	return inv
}

// Double returns 2p
func (p *Point) Double() *Point {
	return p.add(p)
}

// Negate returns -p
func (p *Point) Negate() *Point {
	if p.inf {
		return p
	}
	return &Point{
		x:     new(big.Int).Set(p.x),
		y:     math.Mod(new(big.Int).Neg(p.y), p.curve.p),
		curve: p.curve,
	}
}

// Multiply returns k·p. It runs left-to-right double-and-add over the bit
// length of k, or byte-wide windows when the fast cache has been built.
// Negative scalars multiply -p.
func (p *Point) Multiply(k *big.Int) *Point {
	if k == nil || k.Sign() == 0 || p.inf {
		return p.curve.Identity()
	}
	if k.Sign() < 0 {
		return p.Negate().Multiply(new(big.Int).Neg(k))
	}

	if table := p.fast.Load(); table != nil {
		r := p.curve.Identity()
		for _, b := range k.Bytes() {
			r = r.times256().add(table[b])
		}
		return r
	}

	r := p.curve.Identity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		r = r.Double()
		if k.Bit(i) == 1 {
			r = r.add(p)
		}
	}
	return r
}

func (p *Point) times256() *Point {
	r := p
	for i := 0; i < 8; i++ {
		r = r.Double()
	}
	return r
}

// Precompute builds the table of multiples 0·p … 255·p used by Multiply.
// Only the first call does any work; concurrent callers wait for it.
func (p *Point) Precompute() {
	p.fastOnce.Do(func() {
		var table [fastCacheSize]*Point
		table[0] = p.curve.Identity()
		for i := 1; i < fastCacheSize; i++ {
			table[i] = table[i-1].add(p)
		}
		p.fast.Store(&table)
	})
}

// Precomputed reports whether the fast cache is available
func (p *Point) Precomputed() bool {
	return p.fast.Load() != nil
}

// Compress encodes the point in PointSize bytes: x right-aligned, with the
// leading byte set to 2 for the identity and to 1 when y is odd.
func (p *Point) Compress() []byte {
	out := make([]byte, p.curve.pcs)
	if p.inf {
		out[0] = markerIdentity
	}
	xb := p.x.Bytes()
	copy(out[len(out)-len(xb):], xb)
	if math.IsOdd(p.y) {
		out[0] = markerOdd
	}
	return out
}

// Bytes returns the compressed encoding of the point
func (p *Point) Bytes() []byte {
	return p.Compress()
}
