package lstm

import (
	"errors"
)

var (
	// ErrShapeMismatch is returned when a vector, matrix or cache does not
	// agree with the hidden size, concatenated input size or class count of a
	// Parameters.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrMissingParameter is returned when a snapshot lacks one of the ten tensors.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrInvalidTarget is returned when a target class is out of range of the
	// output distribution.
	ErrInvalidTarget = errors.New("invalid target")
	// ErrInvalidDimension is returned for non-positive sizes, by NewParameters
	// and by Sample for a negative length.
	ErrInvalidDimension = errors.New("invalid dimension")
	// ErrBadExtension is returned when a weights file is not named *.vanilla.
	ErrBadExtension = errors.New("bad file extension")
)
