package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation")    // 400
	ErrInvalidState = errors.New("invalid state") // 400
	ErrNotFound     = errors.New("not found")     // 404
	ErrForbidden    = errors.New("forbidden")     // 403
	ErrConflict     = errors.New("conflict")      // 409
)

// notFound turns gorm's missing-row error into ErrNotFound with msg and
// wraps anything else with op.
func notFound(err error, op, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ErrUnauthorized is returned for bad credentials or tokens.
var ErrUnauthorized = errors.New("unauthorized") // 401
