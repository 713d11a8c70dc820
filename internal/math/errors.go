package math

import "errors"

var (
	// ErrInvalidModulus is returned when modulus is invalid
	ErrInvalidModulus = errors.New("modulus must be positive")

	// ErrNilOperand is returned when a nil operand is provided
	ErrNilOperand = errors.New("operand cannot be nil")

	// ErrNoInverse is returned when an element has no inverse modulo m
	ErrNoInverse = errors.New("element is not invertible")

	// ErrNoSquareRoot is returned when an element is a quadratic non-residue
	ErrNoSquareRoot = errors.New("element has no square root")

	// ErrUnsupportedModulus is returned when the square-root shortcut does not apply
	ErrUnsupportedModulus = errors.New("modulus is not congruent to 3 mod 4")
)
