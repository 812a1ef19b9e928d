package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrClaimLost is returned by the claim predicate when no document
	// matched, which means someone else committed a transition first.
	ErrClaimLost = errors.New("booking claim predicate did not match")

	ErrBookingClosed = errors.New("booking is no longer open")
)
