package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a service error for transports.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindUnauthorized
	KindConflict
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	case KindConflict:
		return "conflict"
	case KindExternalService:
		return "external_service"
	default:
		return "internal"
	}
}

// Error codes exposed to clients.
const (
	CodeMissingAddressFields = "MISSING_ADDRESS_FIELDS"
	CodeInvalidPayment       = "INVALID_PAYMENT"
	CodeInvalidItem          = "INVALID_ITEM"
	CodeInvalidBody          = "INVALID_BODY"
	CodeInvalidStatus        = "INVALID_STATUS"
	CodeInvalidMessage       = "INVALID_MESSAGE"
	CodeProductNotFound      = "PRODUCT_NOT_FOUND"
	CodeOrderNotFound        = "ORDER_NOT_FOUND"
	CodeInvalidTransition    = "INVALID_TRANSITION"
	CodeDuplicatePayment     = "DUPLICATE_PAYMENT"
	CodeConcurrentUpdate     = "CONCURRENT_UPDATE"
	CodeForbidden            = "FORBIDDEN"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeExternalService      = "EXTERNAL_SERVICE_ERROR"
	CodeInternal             = "INTERNAL_ERROR"
)

// Error is the error type returned by services.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Fields lists offending input fields, if any.
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error with the same kind and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}

	return t.Kind == e.Kind && t.Code == e.Code
}

// Validation builds a validation error.
func Validation(code, message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Fields: fields}
}

// MissingAddressFields names every missing address field in its message.
func MissingAddressFields(fields []string) *Error {
	return Validation(
		CodeMissingAddressFields,
		"missing address fields: "+strings.Join(fields, ", "),
		fields...,
	)
}

// NotFound builds a not-found error.
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Forbidden builds an authorization error.
func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: CodeForbidden, Message: message}
}

// Unauthorized is returned when the caller could not be authenticated.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: CodeUnauthorized, Message: message}
}

// Conflict builds a conflict error.
func Conflict(code, message string, err error) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: message, Err: err}
}

// InvalidTransition is returned when the status machine rejects a move.
func InvalidTransition(from, to string) *Error {
	return &Error{
		Kind:    KindConflict,
		Code:    CodeInvalidTransition,
		Message: fmt.Sprintf("cannot move order from %q to %q", from, to),
	}
}

// ExternalService wraps a failure of a downstream dependency. Callers may retry.
func ExternalService(message string, err error) *Error {
	return &Error{Kind: KindExternalService, Code: CodeExternalService, Message: message, Err: err}
}

// Internal wraps an unexpected failure.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Code: CodeInternal, Message: message, Err: err}
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
