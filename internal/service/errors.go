package service

import (
	"errors"
	"fmt"

	"github.com/personal-blog-api/internal/validation"
)

// Kind classifies a service failure for transport mapping
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is the failure type returned by every service operation
type Error struct {
	Kind    Kind
	Message string
	Fields  []validation.ValidationError
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Messages shared with transports and tests
const (
	MsgValidationFailed   = "Validation failed"
	MsgSlugExists         = "A blog with this slug already exists"
	MsgBlogNotFound       = "Blog not found"
	MsgInvalidCredentials = "Invalid email or password"
	MsgNotAuthorized      = "Not authorized"
	MsgAdminExists        = "Admin already exists"
	MsgServerError        = "Server error"
)

func validationError(fields []validation.ValidationError) *Error {
	return &Error{Kind: KindValidation, Message: MsgValidationFailed, Fields: fields}
}

func conflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func unauthorizedError(msg string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Err: err}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgServerError, Err: err}
}

// KindOf returns the kind of err, treating foreign errors as internal
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err is a service error of the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
