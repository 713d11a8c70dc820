package cryptor

import "errors"

var (
	// ErrNilConfig is returned when a nil configuration is provided
	ErrNilConfig = errors.New("config cannot be nil")

	// ErrNilKey is returned when a nil key is provided
	ErrNilKey = errors.New("key cannot be nil")

	// ErrNotPrivateKey is returned when decrypting with a public key
	ErrNotPrivateKey = errors.New("key does not hold a secret scalar")

	// ErrMalformedCiphertext is returned when a ciphertext is shorter than a
	// compressed point or its ephemeral point does not decode
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrMessageTooLong is returned when a message outruns the keystream
	ErrMessageTooLong = errors.New("message exceeds keystream length")
)
