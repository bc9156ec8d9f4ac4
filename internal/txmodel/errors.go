package txmodel

import "errors"

var (
	// ErrInvalidHex indicates the input string is not valid hex.
	ErrInvalidHex = errors.New("txmodel: invalid hex")
	// ErrOutOfBounds indicates a field read past the end of the buffer,
	// or declared a length that would read past it.
	ErrOutOfBounds = errors.New("txmodel: read out of bounds")
)
