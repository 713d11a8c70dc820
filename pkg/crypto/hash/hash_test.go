package hash

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestMACVectors(t *testing.T) {
	key := []byte("Jefe")
	data := []byte("what do ya want for nothing?")

	tests := []struct {
		alg  MACAlgorithm
		want string
	}{
		{HMACSHA512, "164b7a7bfcf819e2e395fbe73b56e0a387bd64222e831fd610270cd7ea2505549758bf75c05a994a6d034f65f8f0e6fdcaeab1a34d4a6b4b636e070a38bce737"},
		{HMACSHA256, "5bdcc146bf60754e6a042426089575c75a003f089d2739839dec58b964ec3843"},
		{HMACSHA3_512, "5a4bfeab6166427c7a3647b747292b8384537cdb89afb3bf5665e4c5e709350b287baec921fd7ca0ee7a0c31d022a95e1fc92ba9d77df883960275beb4e62024"},
	}

	for _, tt := range tests {
		t.Run(tt.alg.String(), func(t *testing.T) {
			got, err := MAC(tt.alg, key, data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, hex.EncodeToString(got))
			assert.Len(t, got, tt.alg.Size())
			assert.True(t, VerifyMAC(tt.alg, key, data, got))
		})
	}
}

func TestUnknownMAC(t *testing.T) {
	_, err := MAC(MACAlgorithm(42), nil, nil)
	assert.ErrorIs(t, err, ErrUnknownMAC)
	assert.Equal(t, 0, MACAlgorithm(42).Size())
	assert.False(t, VerifyMAC(MACAlgorithm(42), nil, nil, nil))
}

func TestParseMACAlgorithm(t *testing.T) {
	alg, err := ParseMACAlgorithm("hmacsha512")
	require.NoError(t, err)
	assert.Equal(t, HMACSHA512, alg)

	alg, err = ParseMACAlgorithm("HmacSHA3-512")
	require.NoError(t, err)
	assert.Equal(t, HMACSHA3_512, alg)

	_, err = ParseMACAlgorithm("md5")
	assert.ErrorIs(t, err, ErrUnknownMAC)
}

func TestKeystreamVector(t *testing.T) {
	ks, err := NewKeystream(HMACSHA512, []byte{0x01, 0x02})
	require.NoError(t, err)

	out := make([]byte, 70)
	n, err := ks.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 70, n)
	assert.Equal(t, "4ce7c4fb8012a16d5c37679c40414e9bfd85345ba43d7920bce7d394df6a411302d3417d0edf38f88f3e019c0c92f7f8a5112ef332bb177f3b2dfcea1aed6f2458264bf0f9e8", hex.EncodeToString(out))
}

func TestKeystreamMatchesCounterMAC(t *testing.T) {
	key := []byte("shared point coordinates")

	var want []byte
	for i := uint32(1); i <= 4; i++ {
		var ctr [4]byte
		binary.BigEndian.PutUint32(ctr[:], i)
		mac := hmac.New(sha512.New, key)
		mac.Write(ctr[:])
		want = mac.Sum(want)
	}

	ks, err := NewKeystream(HMACSHA512, key)
	require.NoError(t, err)

	// Uneven reads must stitch chunks together seamlessly
	got := make([]byte, 0, len(want))
	for _, n := range []int{1, 63, 64, 7, 121} {
		buf := make([]byte, n)
		_, err := ks.Read(buf)
		require.NoError(t, err)
		got = append(got, buf...)
	}
	assert.Equal(t, want, got)
}

func TestXORKeyStreamIsInvolution(t *testing.T) {
	key := []byte{9, 9, 9}
	plaintext := bytes.Repeat([]byte("attack at dawn "), 20)

	enc, err := NewKeystream(HMACSHA256, key)
	require.NoError(t, err)
	ciphertext := make([]byte, len(plaintext))
	enc.XORKeyStream(ciphertext, plaintext)
	assert.NotEqual(t, plaintext, ciphertext)

	dec, err := NewKeystream(HMACSHA256, key)
	require.NoError(t, err)
	// In-place decryption
	dec.XORKeyStream(ciphertext, ciphertext)
	assert.Equal(t, plaintext, ciphertext)
}

func TestXORKeyStreamShortDst(t *testing.T) {
	ks, err := NewKeystream(HMACSHA512, nil)
	require.NoError(t, err)
	assert.Panics(t, func() { ks.XORKeyStream(make([]byte, 1), make([]byte, 2)) })
}

func TestKeystreamExhaustion(t *testing.T) {
	ks, err := NewKeystream(HMACSHA256, []byte("k"))
	require.NoError(t, err)
	ks.counter = 1<<32 - 3

	// Two chunks remain: counter 2^32-1 is the last one issued
	buf := make([]byte, 32)
	_, err = ks.Read(buf)
	require.NoError(t, err)
	_, err = ks.Read(buf)
	require.NoError(t, err)

	_, err = ks.Read(buf)
	assert.ErrorIs(t, err, ErrKeystreamExhausted)
}

func TestHash(t *testing.T) {
	assert.Len(t, Hash([]byte("x"), SHA256), 32)
	assert.Len(t, Hash([]byte("x"), SHA512), 64)
}

func TestMaxStreamLength(t *testing.T) {
	assert.Equal(t, uint64(1<<32-1)*64, HMACSHA512.MaxStreamLength())
	assert.Equal(t, uint64(1<<32-1)*32, HMACSHA256.MaxStreamLength())
	assert.Zero(t, MACAlgorithm(42).MaxStreamLength())
}
