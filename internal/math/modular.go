// Package math provides modular arithmetic over prime fields
package math

import (
	"math/big"
)

var (
	one   = big.NewInt(1)
	two   = big.NewInt(2)
	three = big.NewInt(3)
	four  = big.NewInt(4)
)

// Mod returns x mod m in the range [0, m)
func Mod(x, m *big.Int) *big.Int {
	return new(big.Int).Mod(x, m)
}

// ModAdd returns (a + b) mod m
func ModAdd(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return r.Mod(r, m)
}

// ModSub returns (a - b) mod m
func ModSub(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return r.Mod(r, m)
}

// ModMul returns (a * b) mod m
func ModMul(a, b, m *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, m)
}

// ModInverse returns a^-1 mod m
func ModInverse(a, m *big.Int) (*big.Int, error) {
	if a == nil || m == nil {
		return nil, ErrNilOperand
	}
	if m.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}

	r := new(big.Int).ModInverse(Mod(a, m), m)
	if r == nil {
		return nil, ErrNoInverse
	}
	return r, nil
}

// SqrtExponent returns (p+1)/4, the exponent that yields a square root
// modulo a prime p ≡ 3 (mod 4). It returns ErrUnsupportedModulus otherwise.
func SqrtExponent(p *big.Int) (*big.Int, error) {
	if p == nil {
		return nil, ErrNilOperand
	}
	if p.Sign() <= 0 {
		return nil, ErrInvalidModulus
	}
	if new(big.Int).Mod(p, four).Cmp(three) != 0 {
		return nil, ErrUnsupportedModulus
	}

	e := new(big.Int).Add(p, one)
	return e.Rsh(e, 2), nil
}

// ModSqrt returns a candidate root a^e mod p where e = (p+1)/4. The caller
// decides which of the two roots to keep; ErrNoSquareRoot is returned when
// the candidate does not square back to a.
func ModSqrt(a, e, p *big.Int) (*big.Int, error) {
	if a == nil || e == nil || p == nil {
		return nil, ErrNilOperand
	}

	r := new(big.Int).Exp(Mod(a, p), e, p)
	if ModMul(r, r, p).Cmp(Mod(a, p)) != 0 {
		return nil, ErrNoSquareRoot
	}
	return r, nil
}

// IsProbablePrime reports whether p passes rounds Miller-Rabin tests plus
// a Baillie-PSW test
func IsProbablePrime(p *big.Int, rounds int) bool {
	if p == nil || p.Cmp(two) < 0 {
		return false
	}
	return p.ProbablyPrime(rounds)
}

// IsOdd reports whether x is odd
func IsOdd(x *big.Int) bool {
	return x.Bit(0) == 1
}
