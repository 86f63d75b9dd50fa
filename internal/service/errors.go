package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/storefront/internal/models"
)

// Error kinds. Every error a service returns on purpose matches exactly one of
// them under errors.Is; anything else is an internal failure.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)

var (
	ErrInvalidCredentials = newError(ErrUnauthorized, "invalid email or password", nil)
	ErrInvalidCredential  = newError(ErrUnauthorized, "invalid or expired token", nil)
	ErrMissingCredential  = newError(ErrUnauthorized, "missing bearer token", nil)
)

type kindError struct {
	kind  error
	msg   string
	cause error
}

func newError(kind error, msg string, cause error) *kindError {
	return &kindError{kind: kind, msg: msg, cause: cause}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

func notFound(what string) error {
	return newError(ErrNotFound, what+" not found", nil)
}

func forbidden(msg string) error {
	return newError(ErrForbidden, msg, nil)
}

func conflict(msg string, cause error) error {
	return newError(ErrConflict, msg, cause)
}

// invalid wraps validator and model-hook failures; the cause stays reachable
// so the HTTP layer can list per-field messages.
func invalid(msg string, cause error) error {
	return newError(ErrValidation, msg, cause)
}

func validationCause(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs) || errors.Is(err, models.ErrInvalid)
}

func wrapInternal(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
