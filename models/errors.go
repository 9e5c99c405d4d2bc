package models

import "errors"

// Domain error taxonomy. Services wrap these with fmt.Errorf("...: %w", ...)
// and the API layer maps them to status codes with errors.Is.
var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrValidation      = errors.New("validation failed")
)
