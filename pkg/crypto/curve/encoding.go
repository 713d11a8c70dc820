package curve

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"golang.org/x/crypto/cryptobyte"
)

// AddInt appends the big-endian magnitude of v with a uint32 length prefix
func AddInt(b *cryptobyte.Builder, v *big.Int) {
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(v.Bytes())
	})
}

// ReadUint32LengthPrefixed reads a uint32 length followed by that many
// bytes into out. It advances s only on success.
func ReadUint32LengthPrefixed(s *cryptobyte.String, out *cryptobyte.String) bool {
	rest := *s
	var n uint32
	var v []byte
	if !rest.ReadUint32(&n) || uint64(n) > uint64(len(rest)) || !rest.ReadBytes(&v, int(n)) {
		return false
	}
	*out = v
	*s = rest
	return true
}

// ReadInt reads a uint32 length-prefixed big-endian magnitude
func ReadInt(s *cryptobyte.String, out *big.Int) bool {
	var v cryptobyte.String
	if !ReadUint32LengthPrefixed(s, &v) {
		return false
	}
	out.SetBytes(v)
	return true
}

// AppendTo writes the curve in wire order: a, b, p, n, compress(G), psr2,
// pcs (uint32) and name
func (c *Curve) AppendTo(b *cryptobyte.Builder) {
	AddInt(b, c.a)
	AddInt(b, c.b)
	AddInt(b, c.p)
	AddInt(b, c.n)
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(c.g.Compress())
	})
	AddInt(b, c.psr2)
	b.AddUint32(uint32(c.pcs))
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes([]byte(c.name))
	})
}

// MarshalBinary implements encoding.BinaryMarshaler
func (c *Curve) MarshalBinary() ([]byte, error) {
	var b cryptobyte.Builder
	c.AppendTo(&b)
	return b.Bytes()
}

// ParseCurve decodes a curve and rejects trailing bytes
func ParseCurve(data []byte) (*Curve, error) {
	s := cryptobyte.String(data)
	c, err := ReadCurve(&s)
	if err != nil {
		return nil, err
	}
	if !s.Empty() {
		return nil, fmt.Errorf("%w: %d trailing bytes after curve", ErrMalformedData, len(s))
	}
	return c, nil
}

// ReadCurve consumes one encoded curve from s. Decoded curves are cached in
// the default registry keyed by their encoding.
func ReadCurve(s *cryptobyte.String) (*Curve, error) {
	return defaultRegistry.Read(s)
}

type curveFields struct {
	a, b, p, n, psr2 big.Int
	g                cryptobyte.String
	pcs              uint32
	name             cryptobyte.String
}

// readCurveFields splits one encoded curve off s and returns the raw bytes
// it occupied
func readCurveFields(s *cryptobyte.String) (*curveFields, []byte, error) {
	start := *s
	f := new(curveFields)

	if !ReadInt(s, &f.a) ||
		!ReadInt(s, &f.b) ||
		!ReadInt(s, &f.p) ||
		!ReadInt(s, &f.n) ||
		!ReadUint32LengthPrefixed(s, &f.g) ||
		!ReadInt(s, &f.psr2) ||
		!s.ReadUint32(&f.pcs) ||
		!ReadUint32LengthPrefixed(s, &f.name) {
		return nil, nil, fmt.Errorf("%w: truncated curve", ErrMalformedData)
	}

	return f, start[:len(start)-len(*s)], nil
}

// build validates the decoded fields exactly like NewCurveFromParams and
// checks the derived constants against the encoded ones
func (f *curveFields) build() (*Curve, error) {
	if !utf8.Valid(f.name) {
		return nil, fmt.Errorf("%w: curve name is not valid UTF-8", ErrMalformedData)
	}
	c, err := newCurve(string(f.name), &f.a, &f.b, &f.p, &f.n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedData, err)
	}
	if c.a.Cmp(&f.a) != 0 || c.b.Cmp(&f.b) != 0 {
		return nil, fmt.Errorf("%w: coefficients not reduced mod p", ErrMalformedData)
	}
	if c.psr2.Cmp(&f.psr2) != 0 {
		return nil, fmt.Errorf("%w: psr2 does not match p", ErrMalformedData)
	}
	if uint32(c.pcs) != f.pcs {
		return nil, fmt.Errorf("%w: point size %d does not match p", ErrMalformedData, f.pcs)
	}

	g, err := c.Decompress(f.g)
	if err != nil {
		return nil, fmt.Errorf("%w: base point: %w", ErrMalformedData, err)
	}
	if g.IsIdentity() {
		return nil, fmt.Errorf("%w: base point is the identity", ErrMalformedData)
	}
	c.g = g
	c.g.Precompute()

	return c, nil
}
