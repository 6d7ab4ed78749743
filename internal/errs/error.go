package errs

import (
	"github.com/pkg/errors"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation error")
)

// NotFound marks a missing entity, e.g. errs.NotFound("member").
func NotFound(entity string) error {
	return errors.Wrap(ErrNotFound, entity)
}

// Conflict marks a lending precondition violation.
func Conflict(reason string) error {
	return errors.Wrap(ErrConflict, reason)
}
