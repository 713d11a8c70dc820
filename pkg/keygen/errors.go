package keygen

import (
	"errors"
	"fmt"

	"github.com/Caqil/eccryptor/pkg/crypto/curve"
)

var (
	// ErrNilCurve is returned when a nil curve is provided
	ErrNilCurve = errors.New("curve cannot be nil")

	// ErrNilKey is returned when a nil key is provided
	ErrNilKey = errors.New("key cannot be nil")

	// ErrIdentityKey is returned when a public point is the identity
	ErrIdentityKey = errors.New("public point is the identity")

	// ErrMalformedKey is returned when an encoded key cannot be decoded or
	// fails validation. It wraps curve.ErrMalformedData.
	ErrMalformedKey = fmt.Errorf("malformed key: %w", curve.ErrMalformedData)
)
