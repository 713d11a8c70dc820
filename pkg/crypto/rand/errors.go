package rand

import "errors"

var (
	// ErrInvalidLength is returned when requested length is invalid
	ErrInvalidLength = errors.New("invalid length: must be positive")

	// ErrNilMax is returned when max parameter is nil
	ErrNilMax = errors.New("max cannot be nil")

	// ErrInvalidMax is returned when max is too small for the requested range
	ErrInvalidMax = errors.New("max must be greater than the range minimum")

	// ErrInvalidBitSize is returned when bit size is not positive
	ErrInvalidBitSize = errors.New("bit size must be positive")
)
