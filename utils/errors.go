package utils

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindInvalidState  ErrorKind = "invalid_state"
	KindAuthorization ErrorKind = "authorization"
	KindInternal      ErrorKind = "internal"
)

// AppError is the error every service returns to the HTTP layer.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(kind ErrorKind, format string, args ...interface{}) *AppError {
	return &AppError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return newAppError(KindValidation, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return newAppError(KindNotFound, format, args...)
}

func NewConflictError(format string, args ...interface{}) *AppError {
	return newAppError(KindConflict, format, args...)
}

func NewInvalidStateError(format string, args ...interface{}) *AppError {
	return newAppError(KindInvalidState, format, args...)
}

func NewAuthorizationError(format string, args ...interface{}) *AppError {
	return newAppError(KindAuthorization, format, args...)
}

// WrapDBError classifies a store error. Missing rows become not_found and unique
// violations become conflict; anything else is internal.
func WrapDBError(err error, what string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &AppError{Kind: KindNotFound, Message: what + " not found", Err: err}
	case IsDuplicateKey(err):
		return &AppError{Kind: KindConflict, Message: what + " already exists", Err: err}
	}
	return &AppError{Kind: KindInternal, Message: "failed to access " + what, Err: err}
}

// IsDuplicateKey recognises unique violations whether or not the driver
// translated them to gorm.ErrDuplicatedKey.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}

// KindOf returns the kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
