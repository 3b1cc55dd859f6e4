package service

import (
	"errors"
	"fmt"

	"winefeed/internal/store"
)

// Stable machine-readable error codes. Clients branch on the code, never on
// the message text.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeTenantIsolation   = "TENANT_ISOLATION"
	CodeNoAssignment      = "NO_ASSIGNMENT"
	CodeAssignmentExpired = "ASSIGNMENT_EXPIRED"
	CodeAlreadyDispatched = "ALREADY_DISPATCHED"
	CodeAlreadyResponded  = "ALREADY_RESPONDED"
	CodeAlreadyAccepted   = "ALREADY_ACCEPTED"
	CodeValidation        = "VALIDATION"
)

// Error is an expected business-rule violation. These are part of the
// normal contract of each operation and map to 4xx responses; anything
// else propagating out of a service is an infrastructure failure.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Errorf builds a business error with a stable code.
func Errorf(code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsError unwraps a business error if err carries one.
func AsError(err error) (*Error, bool) {
	var be *Error
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// notFoundOrInternal turns a storage miss into a NOT_FOUND business error
// and passes anything else through as an infrastructure failure.
func notFoundOrInternal(err error, format string, args ...interface{}) error {
	if errors.Is(err, store.ErrNotFound) {
		return Errorf(CodeNotFound, format, args...)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, store.ErrDuplicate)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
