package service

import "github.com/pkg/errors"

type ErrorCode string

const (
	ErrorCodeDuplicateRequest ErrorCode = "DUPLICATE_REQUEST"
	ErrorCodeCounterExhausted ErrorCode = "COUNTER_EXHAUSTED"
	ErrorCodePostNotFound     ErrorCode = "POST_NOT_FOUND"
	ErrorCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrorCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrorCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrorCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrorCodeUnspecified      ErrorCode = "UNSPECIFIED"
)

type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func (e *Error) Error() string {
	return e.Message
}

// asError extracts the *Error carried by err. Failures that are not domain errors,
// such as a transaction that could not begin or commit, become UNSPECIFIED.
func asError(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var res *Error
	if errors.As(err, &res) {
		return res
	}
	return NewError(ErrorCodeUnspecified, fallback)
}
