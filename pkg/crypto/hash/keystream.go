package hash

import (
	"crypto/cipher"
	"encoding/binary"
	"hash"
	"math"
)

// Keystream expands key material into a pseudorandom byte stream by MACing a
// 32-bit big-endian counter that starts at 1: chunk_i = MAC(key, BE32(i)).
// Chunks are consumed in order; a fresh chunk is computed once the previous
// one is exhausted.
//
// Keystream implements cipher.Stream. It is not safe for concurrent use.
type Keystream struct {
	mac     hash.Hash
	counter uint32
	chunk   []byte
	off     int
	done    bool
}

var _ cipher.Stream = (*Keystream)(nil)

// NewKeystream returns a keystream keyed with keyMaterial
func NewKeystream(alg MACAlgorithm, keyMaterial []byte) (*Keystream, error) {
	mac, err := NewMAC(alg, keyMaterial)
	if err != nil {
		return nil, err
	}
	return &Keystream{mac: mac}, nil
}

func (k *Keystream) next() error {
	if k.done {
		return ErrKeystreamExhausted
	}
	k.counter++

	var ctr [4]byte
	binary.BigEndian.PutUint32(ctr[:], k.counter)

	k.mac.Reset()
	k.mac.Write(ctr[:])
	k.chunk = k.mac.Sum(k.chunk[:0])
	k.off = 0

	if k.counter == math.MaxUint32 {
		k.done = true
	}
	return nil
}

// Read fills p with keystream bytes
func (k *Keystream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if k.off == len(k.chunk) {
			if err := k.next(); err != nil {
				return n, err
			}
		}
		c := copy(p[n:], k.chunk[k.off:])
		k.off += c
		n += c
	}
	return n, nil
}

// XORKeyStream XORs each byte of src with the keystream and writes it to
// dst. dst and src must overlap entirely or not at all. Like the stdlib
// streams it panics if dst is shorter than src or the counter space is used up.
func (k *Keystream) XORKeyStream(dst, src []byte) {
	if len(dst) < len(src) {
		panic("hash: output smaller than input")
	}
	for i := 0; i < len(src); {
		if k.off == len(k.chunk) {
			if err := k.next(); err != nil {
				panic(err)
			}
		}
		for ; k.off < len(k.chunk) && i < len(src); k.off, i = k.off+1, i+1 {
			dst[i] = src[i] ^ k.chunk[k.off]
		}
	}
}

// MaxStreamLength is the number of keystream bytes available before the
// 32-bit counter runs out
func (a MACAlgorithm) MaxStreamLength() uint64 {
	return uint64(math.MaxUint32) * uint64(a.Size())
}
