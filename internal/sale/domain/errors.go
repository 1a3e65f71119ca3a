package domain

import "errors"

var (
	// ErrNotFound is returned when a sale does not exist
	ErrNotFound = errors.New("sale not found")

	// ErrInvalidRequest is returned when a sale request fails validation
	ErrInvalidRequest = errors.New("invalid sale request")

	// ErrInvalidState is returned when an operation does not apply to the
	// sale's current status
	ErrInvalidState = errors.New("invalid sale state")

	// ErrReferenceCollision is returned when an issued reference was taken
	// by a concurrent sale
	ErrReferenceCollision = errors.New("sale reference collision")

	// ErrReferenceExhausted is returned when reference generation keeps
	// colliding after all retries
	ErrReferenceExhausted = errors.New("could not issue a unique sale reference")
)
