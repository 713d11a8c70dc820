// Package cryptor implements hybrid encryption over the curves of package
// curve. A fresh ephemeral key agrees a shared point with the recipient by
// ECDH, the point's coordinates key an HMAC counter-mode keystream, and the
// keystream is XORed over the message.
//
// Ciphertexts are compress(Γ) ‖ (m ⊕ keystream). Nothing authenticates them:
// decrypting with the wrong key yields garbage of the right length and no
// error. Callers that need integrity must MAC the whole ciphertext.
package cryptor

import (
	"fmt"

	"github.com/Caqil/eccryptor/internal/security"
	"github.com/Caqil/eccryptor/pkg/crypto/curve"
	"github.com/Caqil/eccryptor/pkg/crypto/hash"
	"github.com/Caqil/eccryptor/pkg/keygen"
	"github.com/Caqil/eccryptor/pkg/logger"
)

// Config holds cryptor configuration
type Config struct {
	// Curve is used for key generation
	Curve *curve.Curve

	// MAC expands the shared point into a keystream
	MAC hash.MACAlgorithm

	// Logger receives debug events; defaults to the global logger
	Logger *logger.Logger
}

// DefaultConfig returns secp256k1 with HMAC-SHA512
func DefaultConfig() *Config {
	c, err := curve.NewCurve(curve.Secp256k1)
	if err != nil {
		panic(err)
	}
	return &Config{
		Curve: c,
		MAC:   hash.DefaultMAC,
	}
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Curve == nil {
		return fmt.Errorf("cryptor config: %w", keygen.ErrNilCurve)
	}
	if c.MAC.Size() == 0 {
		return fmt.Errorf("cryptor config: %w: %d", hash.ErrUnknownMAC, int(c.MAC))
	}
	return nil
}

// Cryptor encrypts to and decrypts with keys. It holds no per-call state
// and is safe for concurrent use.
type Cryptor struct {
	curve *curve.Curve
	mac   hash.MACAlgorithm
	log   *logger.Logger
}

// New creates a cryptor
func New(cfg *Config) (*Cryptor, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = logger.Global()
	}

	return &Cryptor{
		curve: cfg.Curve,
		mac:   cfg.MAC,
		log:   log.Component("cryptor"),
	}, nil
}

// Curve returns the curve used for key generation
func (c *Cryptor) Curve() *curve.Curve {
	return c.curve
}

// MAC returns the keystream MAC
func (c *Cryptor) MAC() hash.MACAlgorithm {
	return c.mac
}

// Overhead is the number of bytes a ciphertext adds to its plaintext for
// keys on the cryptor's curve
func (c *Cryptor) Overhead() int {
	return c.curve.PointSize()
}

// GenerateKey generates a key pair on the cryptor's curve
func (c *Cryptor) GenerateKey() (*keygen.Key, error) {
	k, err := keygen.GenerateKey(c.curve)
	if err != nil {
		return nil, err
	}

	c.log.DebugEvent().
		Str("curve", c.curve.Name()).
		Str("fingerprint", logger.RedactSecret(k.Fingerprint())).
		Msg("generated key")

	return k, nil
}

// Encrypt encrypts plaintext to the recipient's public point. The
// ephemeral key lives on the recipient's curve, which may differ from the
// cryptor's.
func (c *Cryptor) Encrypt(plaintext []byte, recipient *keygen.Key) ([]byte, error) {
	if recipient == nil {
		return nil, ErrNilKey
	}
	if err := c.checkLength(len(plaintext)); err != nil {
		return nil, err
	}

	ephemeral, err := keygen.GenerateKey(recipient.Curve())
	if err != nil {
		return nil, fmt.Errorf("failed to generate ephemeral key: %w", err)
	}
	defer ephemeral.Zero()

	return c.encrypt(plaintext, recipient, ephemeral)
}

func (c *Cryptor) encrypt(plaintext []byte, recipient, ephemeral *keygen.Key) ([]byte, error) {
	shared := recipient.PublicPoint().Multiply(ephemeral.D())

	ks, err := c.keystream(shared)
	if err != nil {
		return nil, err
	}

	gamma := ephemeral.PublicPoint().Compress()
	out := make([]byte, len(gamma)+len(plaintext))
	copy(out, gamma)
	ks.XORKeyStream(out[len(gamma):], plaintext)

	c.log.DebugEvent().
		Str("curve", recipient.Curve().Name()).
		Str("mac", c.mac.String()).
		Int("plaintext_len", len(plaintext)).
		Int("ciphertext_len", len(out)).
		Msg("encrypted")

	return out, nil
}

// Decrypt recovers the plaintext with the recipient's private key. A wrong
// key is not detected.
func (c *Cryptor) Decrypt(ciphertext []byte, priv *keygen.Key) ([]byte, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	if !priv.IsSecret() {
		return nil, ErrNotPrivateKey
	}

	crv := priv.Curve()
	pcs := crv.PointSize()
	if len(ciphertext) < pcs {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrMalformedCiphertext, len(ciphertext), pcs)
	}

	if err := c.checkLength(len(ciphertext) - pcs); err != nil {
		return nil, err
	}

	gamma, err := crv.Decompress(ciphertext[:pcs])
	if err != nil {
		return nil, fmt.Errorf("%w: ephemeral point: %w", ErrMalformedCiphertext, err)
	}

	d := priv.D()
	defer security.SecureZeroBigInt(d)
	shared := gamma.Multiply(d)

	ks, err := c.keystream(shared)
	if err != nil {
		return nil, err
	}

	body := ciphertext[pcs:]
	out := make([]byte, len(body))
	ks.XORKeyStream(out, body)

	c.log.DebugEvent().
		Str("curve", crv.Name()).
		Str("mac", c.mac.String()).
		Int("ciphertext_len", len(ciphertext)).
		Int("plaintext_len", len(out)).
		Msg("decrypted")

	return out, nil
}

func (c *Cryptor) checkLength(n int) error {
	if uint64(n) > c.mac.MaxStreamLength() {
		return fmt.Errorf("%w: %d bytes", ErrMessageTooLong, n)
	}
	return nil
}

func (c *Cryptor) keystream(shared *curve.Point) (*hash.Keystream, error) {
	material := keyMaterial(shared)
	defer security.SecureZero(material)

	ks, err := hash.NewKeystream(c.mac, material)
	if err != nil {
		return nil, fmt.Errorf("failed to start keystream: %w", err)
	}
	return ks, nil
}

// keyMaterial is minBytes(S.x) ‖ minBytes(S.y). Coordinates are unsigned
// big-endian magnitudes with no sign byte, and a zero coordinate encodes as
// a single 0x00. The identity uses 0x00 ‖ 0x00.
func keyMaterial(s *curve.Point) []byte {
	if s.IsIdentity() {
		return []byte{0x00, 0x00}
	}
	return append(minBytes(s.X().Bytes()), minBytes(s.Y().Bytes())...)
}

func minBytes(b []byte) []byte {
	if len(b) == 0 {
		return []byte{0x00}
	}
	return b
}
