// Package security provides helpers for handling secret material
package security

import (
	"crypto/subtle"
	"math/big"
	"runtime"
)

// SecureZero overwrites a byte slice so that secrets do not linger in memory
func SecureZero(data []byte) {
	if len(data) == 0 {
		return
	}

	// ConstantTimeCopy keeps the compiler from eliding the write
	zeros := make([]byte, len(data))
	subtle.ConstantTimeCopy(1, data, zeros)

	runtime.KeepAlive(data)
}

// SecureZeroBigInt clears the limbs of b and sets it to zero
func SecureZeroBigInt(b *big.Int) {
	if b == nil {
		return
	}

	words := b.Bits()
	for i := range words {
		words[i] = 0
	}
	b.SetInt64(0)

	runtime.KeepAlive(b)
}

// ConstantTimeCompare compares two byte slices in constant time
func ConstantTimeCompare(a, b []byte) bool {
	return subtle.ConstantTimeCompare(a, b) == 1
}
