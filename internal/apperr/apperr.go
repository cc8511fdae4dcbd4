// Package apperr holds the error taxonomy shared by services, the HTTP API and the bot.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hashicorp/go-multierror"
	pkgerrors "github.com/pkg/errors"
)

// ValidationError is a client input problem, optionally carrying sub-errors.
type ValidationError struct {
	Message string
	Errors  *multierror.Error
	stack   error
}

func (e *ValidationError) Error() string {
	if e.Errors == nil || len(e.Errors.Errors) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, joinErrors(e.Errors))
}

// Details returns the sub-error messages in insertion order.
func (e *ValidationError) Details() []string {
	if e.Errors == nil {
		return nil
	}
	out := make([]string, 0, len(e.Errors.Errors))
	for _, err := range e.Errors.Errors {
		out = append(out, err.Error())
	}
	return out
}

// NotFoundError means a referenced entity is absent.
type NotFoundError struct {
	Entity string
	ID     string
	stack  error
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s no encontrado", e.Entity)
	}
	return fmt.Sprintf("%s %s no encontrado", e.Entity, e.ID)
}

// ConflictError is a uniqueness violation.
type ConflictError struct {
	Message string
	stack   error
}

func (e *ConflictError) Error() string { return e.Message }

func Validation(message string, errs ...error) error {
	var merr *multierror.Error
	for _, err := range errs {
		if err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return &ValidationError{Message: message, Errors: merr, stack: pkgerrors.New(message)}
}

// Collect returns a ValidationError when errs holds anything, nil otherwise.
func Collect(message string, errs *multierror.Error) error {
	if errs.ErrorOrNil() == nil {
		return nil
	}
	return &ValidationError{Message: message, Errors: errs, stack: pkgerrors.New(message)}
}

func NotFound(entity string, id any) error {
	e := &NotFoundError{Entity: entity}
	if id != nil {
		e.ID = fmt.Sprint(id)
	}
	e.stack = pkgerrors.New(e.Error())
	return e
}

func Conflict(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &ConflictError{Message: msg, stack: pkgerrors.New(msg)}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case IsValidation(err):
		return http.StatusBadRequest
	case IsNotFound(err):
		return http.StatusNotFound
	case IsConflict(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Stack renders the construction stack of err when one is known.
func Stack(err error) string {
	var (
		v *ValidationError
		n *NotFoundError
		c *ConflictError
	)
	switch {
	case errors.As(err, &v):
		return fmt.Sprintf("%+v", v.stack)
	case errors.As(err, &n):
		return fmt.Sprintf("%+v", n.stack)
	case errors.As(err, &c):
		return fmt.Sprintf("%+v", c.stack)
	default:
		return fmt.Sprintf("%+v", pkgerrors.WithStack(err))
	}
}

func joinErrors(m *multierror.Error) string {
	s := ""
	for i, err := range m.Errors {
		if i > 0 {
			s += "; "
		}
		s += err.Error()
	}
	return s
}
