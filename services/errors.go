package services

import "errors"

// Sentinel errors handlers use to pick a status code. Services wrap these
// with context via fmt.Errorf("%w: ...") so errors.Is keeps working.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
)
