package domain

import "errors"

// Common domain errors
var (
	ErrUnknownPath  = errors.New("unknown tracked path")
	ErrInvalidInput = errors.New("invalid input")
)
