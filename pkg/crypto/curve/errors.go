package curve

import "errors"

var (
	// ErrUnsupportedCurve is returned when a curve cannot be built or used by
	// this package (unknown name, raw equation without order, p ≢ 3 mod 4)
	ErrUnsupportedCurve = errors.New("unsupported curve")

	// ErrInvalidCurve is returned when curve parameters are invalid
	ErrInvalidCurve = errors.New("invalid curve parameters")

	// ErrInvalidPoint is returned when a point is not on the curve
	ErrInvalidPoint = errors.New("invalid point: not on curve")

	// ErrCurveMismatch is returned when points from different curves are combined
	ErrCurveMismatch = errors.New("points belong to different curves")

	// ErrMalformedData is returned when decoding truncated or inconsistent bytes
	ErrMalformedData = errors.New("malformed encoding")
)
