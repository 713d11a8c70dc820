package security

import (
	"errors"
	"math/big"
)

var (
	// ErrNilValue is returned when a nil value is provided
	ErrNilValue = errors.New("nil value provided")

	// ErrNonPositive is returned when a value must be positive
	ErrNonPositive = errors.New("value must be positive")

	// ErrInvalidRange is returned when a value is outside expected range
	ErrInvalidRange = errors.New("value out of valid range")
)

// ValidateScalarInRange checks if scalar is in valid range [1, max)
func ValidateScalarInRange(value, max *big.Int) error {
	if value == nil || max == nil {
		return ErrNilValue
	}

	if value.Sign() <= 0 {
		return ErrNonPositive
	}

	if value.Cmp(max) >= 0 {
		return ErrInvalidRange
	}

	return nil
}
