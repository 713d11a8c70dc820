// Package rand provides cryptographically secure random number generation
package rand

import (
	"crypto/rand"
	"io"
	"math/big"
	"sync"
)

// Reader is the default cryptographically secure random number generator.
// Tests may replace it; reads are serialized so a non thread-safe source
// can be shared between goroutines.
var Reader io.Reader = rand.Reader

var readerMu sync.Mutex

type lockedReader struct{}

func (lockedReader) Read(p []byte) (int, error) {
	readerMu.Lock()
	defer readerMu.Unlock()
	return Reader.Read(p)
}

// GenerateRandomBytes generates n cryptographically secure random bytes
func GenerateRandomBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, ErrInvalidLength
	}

	bytes := make([]byte, n)
	if _, err := io.ReadFull(lockedReader{}, bytes); err != nil {
		return nil, err
	}

	return bytes, nil
}

// RandomInt returns a uniform random integer in range [0, bound)
func RandomInt(bound *big.Int) (*big.Int, error) {
	if bound == nil {
		return nil, ErrNilMax
	}
	if bound.Sign() <= 0 {
		return nil, ErrInvalidMax
	}

	return rand.Int(lockedReader{}, bound)
}

// RandomBits returns a uniform random integer in range [0, 2^bits)
func RandomBits(bits int) (*big.Int, error) {
	if bits <= 0 {
		return nil, ErrInvalidBitSize
	}
	return RandomInt(new(big.Int).Lsh(big.NewInt(1), uint(bits)))
}

// GenerateRandomScalar generates a random scalar in range [1, max)
// This is cryptographically secure and uniform
func GenerateRandomScalar(max *big.Int) (*big.Int, error) {
	if max == nil {
		return nil, ErrNilMax
	}

	if max.Cmp(big.NewInt(1)) <= 0 {
		return nil, ErrInvalidMax
	}

	// Rejecting zero keeps the distribution uniform over [1, max)
	for {
		value, err := RandomInt(max)
		if err != nil {
			return nil, err
		}
		if value.Sign() != 0 {
			return value, nil
		}
	}
}

// GenerateNonce generates a cryptographically secure nonce of specified length
func GenerateNonce(length int) ([]byte, error) {
	return GenerateRandomBytes(length)
}
