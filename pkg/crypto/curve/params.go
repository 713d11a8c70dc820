package curve

import (
	"crypto/elliptic"
	"fmt"
	"math/big"
	"sync"
)

// CurveType represents a named curve
type CurveType int

const (
	// Secp256k1 is the Bitcoin/Ethereum curve
	Secp256k1 CurveType = iota
	// P256 is the NIST P-256 curve
	P256
	// P384 is the NIST P-384 curve
	P384
	// P521 is the NIST P-521 curve
	P521
)

func (t CurveType) String() string {
	switch t {
	case Secp256k1:
		return "secp256k1"
	case P256:
		return "P-256"
	case P384:
		return "P-384"
	case P521:
		return "P-521"
	default:
		return fmt.Sprintf("CurveType(%d)", int(t))
	}
}

func fromHex(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("curve: bad hex constant " + s)
	}
	return v
}

func secp256k1Params() *CurveParams {
	return &CurveParams{
		Name:    "secp256k1",
		A:       big.NewInt(0),
		B:       big.NewInt(7),
		P:       fromHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFC2F"),
		N:       fromHex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEBAAEDCE6AF48A03BBFD25E8CD0364141"),
		Gx:      fromHex("79BE667EF9DCBBAC55A06295CE870B07029BFCDB2DCE28D959F2815B16F81798"),
		Gy:      fromHex("483ADA7726A3C4655DA4FBFC0E1108A8FD17B448A68554199C47D08FFB10D4B8"),
		BitSize: 256,
	}
}

// nistParams converts stdlib parameters; the NIST curves all use a = -3
func nistParams(c elliptic.Curve) *CurveParams {
	std := c.Params()
	return &CurveParams{
		Name:    std.Name,
		A:       new(big.Int).Sub(std.P, big.NewInt(3)),
		B:       new(big.Int).Set(std.B),
		P:       new(big.Int).Set(std.P),
		N:       new(big.Int).Set(std.N),
		Gx:      new(big.Int).Set(std.Gx),
		Gy:      new(big.Int).Set(std.Gy),
		BitSize: std.BitSize,
	}
}

// ParamsFor returns the parameter set of a named curve
func ParamsFor(curveType CurveType) (*CurveParams, error) {
	switch curveType {
	case Secp256k1:
		return secp256k1Params(), nil
	case P256:
		return nistParams(elliptic.P256()), nil
	case P384:
		return nistParams(elliptic.P384()), nil
	case P521:
		return nistParams(elliptic.P521()), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, curveType)
	}
}

type namedCurve struct {
	once  sync.Once
	curve *Curve
	err   error
}

var (
	namedTypes  = []CurveType{Secp256k1, P256, P384, P521}
	namedCurves = map[CurveType]*namedCurve{
		Secp256k1: {},
		P256:      {},
		P384:      {},
		P521:      {},
	}
)

// NewCurve returns the shared instance of a named curve. The first call per
// curve validates the parameters and precomputes the base point.
func NewCurve(curveType CurveType) (*Curve, error) {
	nc, ok := namedCurves[curveType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCurve, curveType)
	}
	nc.once.Do(func() {
		params, err := ParamsFor(curveType)
		if err != nil {
			nc.err = err
			return
		}
		nc.curve, nc.err = NewCurveFromParams(params)
	})
	return nc.curve, nc.err
}

// ByName returns the named curve with the given name, e.g. "secp256k1" or
// "P-256"
func ByName(name string) (*Curve, error) {
	for _, t := range namedTypes {
		if t.String() == name {
			return NewCurve(t)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurve, name)
}

// Names lists the supported named curves
func Names() []string {
	names := make([]string, len(namedTypes))
	for i, t := range namedTypes {
		names[i] = t.String()
	}
	return names
}
