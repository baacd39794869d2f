package store

import "errors"

// ErrNotFound is returned when a question or choice does not exist.
var ErrNotFound = errors.New("not found")
