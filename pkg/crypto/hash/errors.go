package hash

import "errors"

var (
	// ErrUnknownMAC is returned for an unsupported MAC algorithm
	ErrUnknownMAC = errors.New("unknown MAC algorithm")

	// ErrKeystreamExhausted is returned when the 32-bit block counter would wrap
	ErrKeystreamExhausted = errors.New("keystream counter exhausted")
)
