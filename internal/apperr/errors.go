// Package apperr defines the error taxonomy shared by the service and
// transport layers.
package apperr

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrUnauthorized = errors.New("authentication credentials were not provided or are invalid")
)

// ValidationError is a client input or business rule failure. Field is empty
// for errors that concern the request as a whole.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError.
func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound wraps ErrNotFound with the missing entity's name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// AsValidation returns the ValidationError in err's chain, if any.
func AsValidation(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// IsNotFound reports whether err is a missing-entity error, including GORM's.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, gorm.ErrRecordNotFound)
}

// IsConstraintViolation reports whether err came from a storage-level unique
// or check constraint.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	msg := err.Error()
	for _, marker := range []string{
		"UNIQUE constraint failed",
		"CHECK constraint failed",
		"duplicate key value violates unique constraint",
		"violates check constraint",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// FromConstraint converts a constraint violation into a ValidationError with
// the given message. Other errors are returned unchanged.
func FromConstraint(err error, field, message string) error {
	if IsConstraintViolation(err) {
		return Validation(field, message)
	}
	return err
}
