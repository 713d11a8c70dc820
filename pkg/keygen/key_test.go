package keygen

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/Caqil/eccryptor/pkg/crypto/curve"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
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

func TestGenerateKey(t *testing.T) {
	c, err := curve.NewCurve(curve.Secp256k1)
	require.NoError(t, err)

	k, err := GenerateKey(c)
	require.NoError(t, err)

	assert.True(t, k.IsSecret())
	assert.Same(t, c, k.Curve())
	d := k.D()
	require.NotNil(t, d)
	assert.Equal(t, 1, d.Sign())
	assert.Equal(t, -1, d.Cmp(c.N()))
	assert.True(t, c.Generator().Multiply(d).Equal(k.PublicPoint()))
	assert.True(t, k.PublicPoint().Precomputed())

	other, err := GenerateKey(c)
	require.NoError(t, err)
	assert.False(t, k.Equal(other))

	_, err = GenerateKey(nil)
	assert.ErrorIs(t, err, ErrNilCurve)
}

func TestGenerateKeyRange(t *testing.T) {
	c := toyCurve(t)
	for i := 0; i < 200; i++ {
		k, err := GenerateKey(c)
		require.NoError(t, err)
		d := k.D()
		assert.True(t, d.Sign() > 0 && d.Cmp(c.N()) < 0, "dk = %s", d)
		assert.False(t, k.PublicPoint().IsIdentity())
	}
}

func TestPublicProjection(t *testing.T) {
	k, err := NewPrivateKey(toyCurve(t), big.NewInt(3))
	require.NoError(t, err)

	pub := k.Public()
	assert.False(t, pub.IsSecret())
	assert.Nil(t, pub.D())
	assert.Same(t, k.PublicPoint(), pub.PublicPoint())
	assert.Same(t, k.Curve(), pub.Curve())
	assert.False(t, k.Equal(pub))
	assert.True(t, pub.Equal(k.Public()))
	assert.Equal(t, k.Fingerprint(), pub.Fingerprint())

	// D hands out copies
	k.D().SetInt64(99)
	assert.Equal(t, int64(3), k.D().Int64())
}

func TestNewPrivateKeyValidation(t *testing.T) {
	c := toyCurve(t)
	for _, d := range []int64{0, -1, 28, 29} {
		_, err := NewPrivateKey(c, big.NewInt(d))
		assert.Error(t, err, "dk = %d", d)
	}
	_, err := NewPrivateKey(c, nil)
	assert.Error(t, err)
	_, err = NewPrivateKey(nil, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNilCurve)
}

func TestNewPublicKey(t *testing.T) {
	c := toyCurve(t)
	pt, err := c.NewPoint(big.NewInt(19), big.NewInt(5))
	require.NoError(t, err)

	pub, err := NewPublicKey(pt)
	require.NoError(t, err)
	priv, err := NewPrivateKey(c, big.NewInt(3))
	require.NoError(t, err)
	assert.True(t, pub.Equal(priv.Public()))

	_, err = NewPublicKey(nil)
	assert.ErrorIs(t, err, ErrNilKey)

	_, err = NewPublicKey(c.Identity())
	assert.ErrorIs(t, err, ErrIdentityKey)
}

func TestKeyEncodingGolden(t *testing.T) {
	c := toyCurve(t)
	curveBytes, err := c.MarshalBinary()
	require.NoError(t, err)
	curveHex := hex.EncodeToString(curveBytes)

	k, err := NewPrivateKey(c, big.NewInt(3))
	require.NoError(t, err)

	// 3·G = (19, 5), odd y
	enc, err := k.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, curveHex+"01"+"0000000103"+"000000020113", hex.EncodeToString(enc))

	pubEnc, err := k.Public().MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, curveHex+"00"+"000000020113", hex.EncodeToString(pubEnc))
}

func TestKeyEncodingRoundTrip(t *testing.T) {
	for _, name := range curve.Names() {
		t.Run(name, func(t *testing.T) {
			c, err := curve.ByName(name)
			require.NoError(t, err)
			k, err := GenerateKey(c)
			require.NoError(t, err)

			for _, key := range []*Key{k, k.Public()} {
				enc, err := key.MarshalBinary()
				require.NoError(t, err)

				dec, err := ParseKey(enc)
				require.NoError(t, err)
				assert.True(t, dec.Equal(key))
				assert.Equal(t, key.IsSecret(), dec.IsSecret())

				var viaIface Key
				require.NoError(t, viaIface.UnmarshalBinary(enc))
				assert.True(t, viaIface.Equal(key))
			}
		})
	}
}

func encodeKey(t *testing.T, c *curve.Curve, flag uint8, d *big.Int, beta []byte) []byte {
	t.Helper()
	var b cryptobyte.Builder
	c.AppendTo(&b)
	b.AddUint8(flag)
	if d != nil {
		curve.AddInt(&b, d)
	}
	b.AddUint32LengthPrefixed(func(b *cryptobyte.Builder) { b.AddBytes(beta) })
	return b.BytesOrPanic()
}

func TestParseKeyRejects(t *testing.T) {
	c := toyCurve(t)
	good := encodeKey(t, c, 1, big.NewInt(3), []byte{0x01, 0x13})

	tests := []struct {
		name string
		data []byte
	}{
		{"zero scalar", encodeKey(t, c, 1, big.NewInt(0), []byte{0x02, 0x00})},
		{"scalar equals n", encodeKey(t, c, 1, big.NewInt(28), []byte{0x02, 0x00})},
		{"scalar above n", encodeKey(t, c, 1, big.NewInt(31), []byte{0x01, 0x13})},
		{"point mismatch", encodeKey(t, c, 1, big.NewInt(3), []byte{0x00, 0x13})},
		{"bad flag", encodeKey(t, c, 2, nil, []byte{0x01, 0x13})},
		{"point not on curve", encodeKey(t, c, 0, nil, []byte{0x00, 0x02})},
		{"identity public key", encodeKey(t, c, 0, nil, []byte{0x02, 0x00})},
		{"point wrong width", encodeKey(t, c, 0, nil, []byte{0x13})},
		{"trailing byte", append(append([]byte{}, good...), 0x00)},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey(tt.data)
			assert.ErrorIs(t, err, ErrMalformedKey)
			assert.ErrorIs(t, err, curve.ErrMalformedData)
		})
	}

	for i := 0; i < len(good); i++ {
		_, err := ParseKey(good[:i])
		assert.ErrorIs(t, err, ErrMalformedKey, "prefix of %d bytes", i)
	}

	k, err := ParseKey(good)
	require.NoError(t, err)
	assert.Equal(t, int64(3), k.D().Int64())
}

func TestZero(t *testing.T) {
	k, err := GenerateKey(toyCurve(t))
	require.NoError(t, err)
	k.Zero()
	assert.Equal(t, 0, k.D().Sign())
}
