package queue

import (
	"fmt"
)

// Code is the machine-readable failure reason of a queue operation.
type Code string

const (
	CodeNotFound              Code = "NOT_FOUND"
	CodeNotOwner              Code = "NOT_OWNER"
	CodeInvalidRequest        Code = "INVALID_REQUEST"
	CodeTechRequirements      Code = "TECH_REQUIREMENTS"
	CodeInsufficientResources Code = "INSUFFICIENT_RESOURCES"
	CodeNoCapacity            Code = "NO_CAPACITY"
	CodeAlreadyInProgress     Code = "ALREADY_IN_PROGRESS"
	CodeQueueError            Code = "QUEUE_ERROR"
	CodeCreditError           Code = "CREDIT_ERROR"
)

// Error is a typed queue failure. Two errors match under errors.Is when their codes match.
type Error struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound              = &Error{Code: CodeNotFound}
	ErrNotOwner              = &Error{Code: CodeNotOwner}
	ErrInvalidRequest        = &Error{Code: CodeInvalidRequest}
	ErrTechRequirements      = &Error{Code: CodeTechRequirements}
	ErrInsufficientResources = &Error{Code: CodeInsufficientResources}
	ErrNoCapacity            = &Error{Code: CodeNoCapacity}
	ErrAlreadyInProgress     = &Error{Code: CodeAlreadyInProgress}
	ErrQueue                 = &Error{Code: CodeQueueError}
	ErrCredit                = &Error{Code: CodeCreditError}
)

func newError(code Code, msg string, details map[string]any) *Error {
	return &Error{Code: code, Message: msg, Details: details}
}

func wrapError(code Code, msg string, err error, details map[string]any) *Error {
	return &Error{Code: code, Message: msg, Details: details, Err: err}
}
