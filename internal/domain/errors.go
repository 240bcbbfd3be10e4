package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures so transports can map them
type ErrorCode string

const (
	ErrCodeInvalid      ErrorCode = "invalid"
	ErrCodeNotFound     ErrorCode = "not_found"
	ErrCodeUnauthorized ErrorCode = "unauthorized"
	ErrCodeForbidden    ErrorCode = "forbidden"
	ErrCodeConflict     ErrorCode = "conflict"
)

// Error is a domain failure with a human readable message
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrInvalidCredentials is returned for any login mismatch
var ErrInvalidCredentials = &Error{Code: ErrCodeUnauthorized, Message: "invalid credentials"}

// ErrRecordNotFound is returned by collections; services wrap it with the entity name
var ErrRecordNotFound = errors.New("record not found")

func NotFound(entity string) error {
	return &Error{Code: ErrCodeNotFound, Message: entity + " not found"}
}

func Invalid(msg string) error {
	return &Error{Code: ErrCodeInvalid, Message: msg}
}

func Invalidf(format string, args ...any) error {
	return &Error{Code: ErrCodeInvalid, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(msg string) error {
	return &Error{Code: ErrCodeForbidden, Message: msg}
}

func Conflict(msg string) error {
	return &Error{Code: ErrCodeConflict, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Code: ErrCodeUnauthorized, Message: msg}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsInvalid(err error) bool {
	return CodeOf(err) == ErrCodeInvalid
}
