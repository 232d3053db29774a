package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error so transport layers can map it uniformly.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeProtected    ErrorCode = "PROTECTED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Validationf builds an INVALID error from a format string.
func Validationf(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
}

// StateConflictf builds a CONFLICT error for an invalid state transition.
func StateConflictf(format string, args ...interface{}) *Error {
	return &Error{Code: ErrCodeConflict, Message: fmt.Sprintf(format, args...)}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrProfileNotFound  = NewError(ErrCodeNotFound, "profile not found")
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrCategoryNotFound = NewError(ErrCodeNotFound, "task category not found")
	ErrInstanceNotFound = NewError(ErrCodeNotFound, "task instance not found")
	ErrRequestNotFound  = NewError(ErrCodeNotFound, "friend request not found")
	ErrLeagueNotFound   = NewError(ErrCodeNotFound, "league not found")
	ErrMemberNotFound   = NewError(ErrCodeNotFound, "league member not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrNotPermitted     = NewError(ErrCodeForbidden, "not permitted")
	ErrCategoryInUse    = NewError(ErrCodeProtected, "category has tasks referencing it")
	ErrTaskInUse        = NewError(ErrCodeProtected, "task has instances referencing it")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
