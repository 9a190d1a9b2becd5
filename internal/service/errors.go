// Package service holds the business rules behind the REST handlers.
package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrConflict is a request that contradicts state already stored under
	// the same key.
	ErrConflict = errors.New("conflict")
)

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
