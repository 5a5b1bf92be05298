package repository

import "errors"

// ErrNotFound is returned by every repository when a lookup misses. Callers
// that must distinguish missing records from authorization failures compare
// against it with errors.Is.
var ErrNotFound = errors.New("not found")
