// Package apperr holds the sentinel errors shared across the viewer.
package apperr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDocument = errors.New("invalid graph document")
	ErrClosed          = errors.New("viewer closed")
	ErrInvalidInput    = errors.New("invalid input")
)
