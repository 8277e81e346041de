package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
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
	ErrMemberNotFound     = NewError(ErrCodeNotFound, "member not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrTemplateNotFound   = NewError(ErrCodeNotFound, "special task template not found")
	ErrRewardNotFound     = NewError(ErrCodeNotFound, "reward not found")
	ErrRedemptionNotFound = NewError(ErrCodeNotFound, "redemption not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
)

// Pool rejections. Callers surface these verbatim; requested points are never
// silently clamped to fit the remaining need.
var (
	ErrPoolExceeded        = errors.New("requested points exceed remaining pool need")
	ErrRedemptionPending   = errors.New("a redemption request is already pending for this reward")
	ErrInsufficientBalance = errors.New("contributor balance is below the requested points")
)

// ErrUnschedulable signals that no valid occurrence exists for the given
// recurrence inputs. Callers must refuse to persist the task instead of
// storing an empty due date.
var ErrUnschedulable = errors.New("no valid occurrence for recurrence inputs")

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
