package errors

import "errors"

var (
	ErrNotFound  = errors.New("guard not found")
	ErrInvalidID = errors.New("invalid guard ID format")
)
