// Package keygen implements elliptic curve key pairs over the curves of
// package curve
package keygen

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/Caqil/eccryptor/internal/security"
	"github.com/Caqil/eccryptor/pkg/crypto/curve"
	"github.com/Caqil/eccryptor/pkg/crypto/hash"
	"github.com/Caqil/eccryptor/pkg/crypto/rand"
	"golang.org/x/crypto/cryptobyte"
)

// Key is a key pair (dk, beta = G·dk). Public keys carry beta only and
// report dk as absent.
type Key struct {
	secret bool
	d      *big.Int
	beta   *curve.Point
	curve  *curve.Curve
}

// GenerateKey draws dk uniformly from [1, n) and computes beta = G·dk.
// beta gets a fast multiplication table since it is multiplied by every
// encryption to this key.
func GenerateKey(c *curve.Curve) (*Key, error) {
	if c == nil {
		return nil, ErrNilCurve
	}

	d, err := rand.GenerateRandomScalar(c.N())
	if err != nil {
		return nil, fmt.Errorf("failed to generate secret scalar: %w", err)
	}

	beta := c.Generator().Multiply(d)
	beta.Precompute()

	return &Key{
		secret: true,
		d:      d,
		beta:   beta,
		curve:  c,
	}, nil
}

// NewPrivateKey builds a key pair from an existing secret scalar
func NewPrivateKey(c *curve.Curve, d *big.Int) (*Key, error) {
	if c == nil {
		return nil, ErrNilCurve
	}
	if err := security.ValidateScalarInRange(d, c.N()); err != nil {
		return nil, fmt.Errorf("secret scalar: %w", err)
	}

	beta := c.Generator().Multiply(d)
	beta.Precompute()

	return &Key{
		secret: true,
		d:      new(big.Int).Set(d),
		beta:   beta,
		curve:  c,
	}, nil
}

// NewPublicKey wraps a point as a public key. The identity is rejected.
func NewPublicKey(beta *curve.Point) (*Key, error) {
	if beta == nil {
		return nil, ErrNilKey
	}
	if !beta.Curve().IsOnCurve(beta) {
		return nil, curve.ErrInvalidPoint
	}
	if beta.IsIdentity() {
		return nil, ErrIdentityKey
	}
	return &Key{
		d:     new(big.Int),
		beta:  beta,
		curve: beta.Curve(),
	}, nil
}

// Public returns the public projection of k. The point is shared.
func (k *Key) Public() *Key {
	return &Key{
		d:     new(big.Int),
		beta:  k.beta,
		curve: k.curve,
	}
}

// IsSecret reports whether k holds the secret scalar
func (k *Key) IsSecret() bool {
	return k.secret
}

// D returns a copy of the secret scalar, or nil for public keys
func (k *Key) D() *big.Int {
	if !k.secret {
		return nil
	}
	return new(big.Int).Set(k.d)
}

// PublicPoint returns beta
func (k *Key) PublicPoint() *curve.Point {
	return k.beta
}

// Curve returns the curve the key lives on
func (k *Key) Curve() *curve.Curve {
	return k.curve
}

// Equal reports whether both keys are on the same curve with the same
// visibility and values
func (k *Key) Equal(other *Key) bool {
	if k == nil || other == nil {
		return k == other
	}
	if k.secret != other.secret || !k.curve.Equal(other.curve) {
		return false
	}
	if k.secret && k.d.Cmp(other.d) != 0 {
		return false
	}
	return k.beta.Equal(other.beta)
}

// Fingerprint is the hex SHA-256 digest of the compressed public point
func (k *Key) Fingerprint() string {
	return hex.EncodeToString(hash.Hash(k.beta.Compress(), hash.SHA256))
}

// Zero wipes the secret scalar. The key is unusable for decryption
// afterwards.
func (k *Key) Zero() {
	security.SecureZeroBigInt(k.d)
}

// MarshalBinary encodes the curve, a secret flag, dk when secret, and the
// compressed public point
func (k *Key) MarshalBinary() ([]byte, error) {
	var b cryptobyte.Builder
	k.curve.AppendTo(&b)
	if k.secret {
		b.AddUint8(1)
		curve.AddInt(&b, k.d)
	} else {
		b.AddUint8(0)
	}
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(k.beta.Compress())
	})
	return b.Bytes()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler
func (k *Key) UnmarshalBinary(data []byte) error {
	parsed, err := ParseKey(data)
	if err != nil {
		return err
	}
	*k = *parsed
	return nil
}

// ParseKey decodes a key written by MarshalBinary. Secret keys must satisfy
// dk ∈ [1, n) and beta = G·dk.
func ParseKey(data []byte) (*Key, error) {
	s := cryptobyte.String(data)

	c, err := curve.ReadCurve(&s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}

	var flag uint8
	if !s.ReadUint8(&flag) || flag > 1 {
		return nil, fmt.Errorf("%w: bad secret flag", ErrMalformedKey)
	}

	k := &Key{secret: flag == 1, d: new(big.Int), curve: c}
	if k.secret && !curve.ReadInt(&s, k.d) {
		return nil, fmt.Errorf("%w: truncated secret scalar", ErrMalformedKey)
	}

	var betaBytes cryptobyte.String
	if !curve.ReadUint32LengthPrefixed(&s, &betaBytes) || !s.Empty() {
		return nil, fmt.Errorf("%w: bad public point framing", ErrMalformedKey)
	}
	beta, err := c.Decompress(betaBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, err)
	}
	if beta.IsIdentity() {
		return nil, fmt.Errorf("%w: %w", ErrMalformedKey, ErrIdentityKey)
	}
	k.beta = beta

	if k.secret {
		if err := security.ValidateScalarInRange(k.d, c.N()); err != nil {
			return nil, fmt.Errorf("%w: secret scalar: %w", ErrMalformedKey, err)
		}
		if !c.Generator().Multiply(k.d).Equal(beta) {
			return nil, fmt.Errorf("%w: public point does not match secret scalar", ErrMalformedKey)
		}
		beta.Precompute()
	}

	return k, nil
}
