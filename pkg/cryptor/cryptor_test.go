package cryptor

import (
	"bytes"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/Caqil/eccryptor/pkg/crypto/curve"
	"github.com/Caqil/eccryptor/pkg/crypto/hash"
	"github.com/Caqil/eccryptor/pkg/keygen"
	"github.com/Caqil/eccryptor/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toyCurve(t testing.TB) *curve.Curve {
	t.Helper()
	c, err := curve.NewCurveFromParams(&curve.CurveParams{
		Name: "toy23",
		A:    big.NewInt(1),
		B:    big.NewInt(1),
		P:    big.NewInt(23),
		N:    big.NewInt(28),
		Gx:   big.NewInt(3),
		Gy:   big.NewInt(10),
	})
	require.NoError(t, err)
	return c
}

func newCryptor(t testing.TB, c *curve.Curve, mac hash.MACAlgorithm) *Cryptor {
	t.Helper()
	cr, err := New(&Config{Curve: c, MAC: mac, Logger: logger.Nop()})
	require.NoError(t, err)
	return cr
}

func privateKey(t testing.TB, c *curve.Curve, d int64) *keygen.Key {
	t.Helper()
	k, err := keygen.NewPrivateKey(c, big.NewInt(d))
	require.NoError(t, err)
	return k
}

func xorKeystream(t testing.TB, alg hash.MACAlgorithm, material, msg []byte) []byte {
	t.Helper()
	ks, err := hash.NewKeystream(alg, material)
	require.NoError(t, err)
	out := make([]byte, len(msg))
	ks.XORKeyStream(out, msg)
	return out
}

func TestEncryptToyVector(t *testing.T) {
	c := toyCurve(t)
	cr := newCryptor(t, c, hash.HMACSHA512)

	recipient := privateKey(t, c, 3) // beta = (19, 5)
	ephemeral := privateKey(t, c, 5) // Γ = (9, 16)
	msg := []byte("attack at dawn, bring snacks, and a very long scarf for the cold")

	ct, err := cr.encrypt(msg, recipient.Public(), ephemeral)
	require.NoError(t, err)

	// S = 15·G = (1, 16)
	assert.Equal(t, []byte{0x00, 0x09}, ct[:2])
	assert.Equal(t, xorKeystream(t, hash.HMACSHA512, []byte{0x01, 0x10}, msg), ct[2:])

	pt, err := cr.Decrypt(ct, recipient)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)
}

func TestIdentitySharedPoint(t *testing.T) {
	c := toyCurve(t)
	cr := newCryptor(t, c, hash.HMACSHA512)
	msg := []byte("identity")

	// 14·2 ≡ 0 mod 28, so S is the identity
	recipient := privateKey(t, c, 14)
	ct, err := cr.encrypt(msg, recipient.Public(), privateKey(t, c, 2))
	require.NoError(t, err)
	assert.Equal(t, xorKeystream(t, hash.HMACSHA512, []byte{0x00, 0x00}, msg), ct[2:])

	pt, err := cr.Decrypt(ct, recipient)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)

	// An identity ephemeral point decrypts under the same fallback for any key
	forged := append([]byte{0x02, 0x00}, ct[2:]...)
	pt, err = cr.Decrypt(forged, privateKey(t, c, 9))
	require.NoError(t, err)
	assert.Equal(t, msg, pt)
}

func TestKeyMaterial(t *testing.T) {
	c := toyCurve(t)
	pt := func(x, y int64) *curve.Point {
		p, err := c.NewPoint(big.NewInt(x), big.NewInt(y))
		require.NoError(t, err)
		return p
	}

	assert.Equal(t, []byte{0x13, 0x05}, keyMaterial(pt(19, 5)))
	assert.Equal(t, []byte{0x00, 0x01}, keyMaterial(pt(0, 1)))
	assert.Equal(t, []byte{0x04, 0x00}, keyMaterial(pt(4, 0)))
	assert.Equal(t, []byte{0x00, 0x00}, keyMaterial(c.Identity()))

	s256, err := curve.NewCurve(curve.Secp256k1)
	require.NoError(t, err)
	g := s256.Generator()
	want := append(g.X().Bytes(), g.Y().Bytes()...)
	assert.Equal(t, want, keyMaterial(g))

	// 2G has x = 0xC604...; magnitudes carry no sign byte
	g2 := g.Multiply(big.NewInt(2))
	km := keyMaterial(g2)
	assert.Equal(t, byte(0xC6), km[0])
	assert.Len(t, km, len(g2.X().Bytes())+len(g2.Y().Bytes()))
}

func TestRoundTrip(t *testing.T) {
	s256, err := curve.NewCurve(curve.Secp256k1)
	require.NoError(t, err)

	curves := []*curve.Curve{toyCurve(t), s256}
	macs := []hash.MACAlgorithm{hash.HMACSHA512, hash.HMACSHA256, hash.HMACSHA3_512}

	for _, c := range curves {
		for _, mac := range macs {
			cr := newCryptor(t, c, mac)
			priv, err := cr.GenerateKey()
			require.NoError(t, err)
			pub := priv.Public()

			for _, n := range []int{0, 1, 16, 1000} {
				t.Run(fmt.Sprintf("%s/%s/%d", c.Name(), mac, n), func(t *testing.T) {
					msg := bytes.Repeat([]byte{0xA5}, n)

					ct, err := cr.Encrypt(msg, pub)
					require.NoError(t, err)
					assert.Len(t, ct, n+cr.Overhead())

					pt, err := cr.Decrypt(ct, priv)
					require.NoError(t, err)
					assert.Equal(t, msg, pt)
				})
			}
		}
	}
}

func TestEncryptIsRandomized(t *testing.T) {
	cr, err := New(&Config{Curve: DefaultConfig().Curve, MAC: hash.DefaultMAC, Logger: logger.Nop()})
	require.NoError(t, err)
	priv, err := cr.GenerateKey()
	require.NoError(t, err)

	msg := []byte("same message")
	a, err := cr.Encrypt(msg, priv.Public())
	require.NoError(t, err)
	b, err := cr.Encrypt(msg, priv.Public())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestWrongKey(t *testing.T) {
	cr := newCryptor(t, DefaultConfig().Curve, hash.HMACSHA512)
	alice, err := cr.GenerateKey()
	require.NoError(t, err)
	bob, err := cr.GenerateKey()
	require.NoError(t, err)

	msg := []byte("for alice only, sixteen+ bytes long")
	ct, err := cr.Encrypt(msg, alice.Public())
	require.NoError(t, err)

	garbage, err := cr.Decrypt(ct, bob)
	require.NoError(t, err)
	assert.Len(t, garbage, len(msg))
	assert.NotEqual(t, msg, garbage)
}

func TestDecryptErrors(t *testing.T) {
	c := toyCurve(t)
	cr := newCryptor(t, c, hash.HMACSHA512)
	priv := privateKey(t, c, 3)

	_, err := cr.Decrypt([]byte{0x00}, priv)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	_, err = cr.Decrypt(nil, priv)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)

	// x = 2 has no point on the curve
	_, err = cr.Decrypt([]byte{0x00, 0x02, 0xFF}, priv)
	assert.ErrorIs(t, err, ErrMalformedCiphertext)
	assert.ErrorIs(t, err, curve.ErrInvalidPoint)

	_, err = cr.Decrypt([]byte{0x00, 0x03}, priv.Public())
	assert.ErrorIs(t, err, ErrNotPrivateKey)

	_, err = cr.Decrypt([]byte{0x00, 0x03}, nil)
	assert.ErrorIs(t, err, ErrNilKey)

	_, err = cr.Encrypt([]byte("x"), nil)
	assert.ErrorIs(t, err, ErrNilKey)

	// A bare Γ decrypts to the empty message
	pt, err := cr.Decrypt([]byte{0x00, 0x03}, priv)
	require.NoError(t, err)
	assert.Empty(t, pt)
}

func TestRecipientOnOtherCurve(t *testing.T) {
	cr := newCryptor(t, DefaultConfig().Curve, hash.HMACSHA512)

	p384, err := curve.NewCurve(curve.P384)
	require.NoError(t, err)
	priv, err := keygen.GenerateKey(p384)
	require.NoError(t, err)

	msg := []byte("cross-curve")
	ct, err := cr.Encrypt(msg, priv.Public())
	require.NoError(t, err)
	assert.Len(t, ct, p384.PointSize()+len(msg))

	pt, err := cr.Decrypt(ct, priv)
	require.NoError(t, err)
	assert.Equal(t, msg, pt)
}

func TestConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "secp256k1", cfg.Curve.Name())
	assert.Equal(t, hash.HMACSHA512, cfg.MAC)
	require.NoError(t, cfg.Validate())

	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	_, err = New(&Config{MAC: hash.HMACSHA512})
	assert.ErrorIs(t, err, keygen.ErrNilCurve)

	_, err = New(&Config{Curve: cfg.Curve, MAC: hash.MACAlgorithm(42)})
	assert.ErrorIs(t, err, hash.ErrUnknownMAC)

	cr, err := New(cfg)
	require.NoError(t, err)
	assert.Equal(t, 33, cr.Overhead())
	assert.Same(t, cfg.Curve, cr.Curve())
	assert.Equal(t, hash.HMACSHA512, cr.MAC())
}

func TestConcurrentUse(t *testing.T) {
	cr := newCryptor(t, DefaultConfig().Curve, hash.HMACSHA512)
	priv, err := cr.GenerateKey()
	require.NoError(t, err)
	pub := priv.Public()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := []byte(fmt.Sprintf("message %d", i))
			ct, err := cr.Encrypt(msg, pub)
			if err != nil {
				errs <- err
				return
			}
			pt, err := cr.Decrypt(ct, priv)
			if err != nil {
				errs <- err
				return
			}
			if !bytes.Equal(pt, msg) {
				errs <- fmt.Errorf("message %d: round trip mismatch", i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestDebugLoggingOmitsSecrets(t *testing.T) {
	var buf bytes.Buffer
	c := toyCurve(t)
	cr, err := New(&Config{
		Curve:  c,
		MAC:    hash.HMACSHA256,
		Logger: logger.New(&logger.Config{Level: "debug", Output: &buf}),
	})
	require.NoError(t, err)

	priv := privateKey(t, c, 3)
	ct, err := cr.Encrypt([]byte("hi"), priv.Public())
	require.NoError(t, err)
	_, err = cr.Decrypt(ct, priv)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"message":"encrypted"`)
	assert.Contains(t, out, `"message":"decrypted"`)
	assert.Contains(t, out, `"mac":"HmacSHA256"`)
	assert.Contains(t, out, `"component":"cryptor"`)
	assert.NotContains(t, out, "hi\"")
}
