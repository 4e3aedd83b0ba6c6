package common

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "internal"
	}
}

// Error is the application error carried from services to the HTTP boundary.
// Message is safe to show to clients; Err is for logs only.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: message}
}

func UnauthenticatedError(message string) *Error {
	return &Error{Kind: KindUnauthenticated, Code: "UNAUTHENTICATED", Message: message}
}

func ForbiddenError(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: message}
}

func NotFoundError(resource string) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: resource + " not found"}
}

func ConflictError(message string) *Error {
	return &Error{Kind: KindConflict, Code: "CONFLICT", Message: message}
}

func RateLimitedError(message string) *Error {
	return &Error{Kind: KindRateLimited, Code: "RATE_LIMITED", Message: message}
}

// InternalError hides err behind a generic message.
func InternalError(err error) *Error {
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "Internal server error", Err: err}
}

var (
	ErrTenantNotFound = &Error{Kind: KindNotFound, Code: "TENANT_NOT_FOUND", Message: "Tenant not found"}
	ErrTenantInactive = &Error{Kind: KindForbidden, Code: "TENANT_INACTIVE", Message: "Tenant is not active"}

	ErrUserQuotaExceeded    = &Error{Kind: KindForbidden, Code: "QUOTA_EXCEEDED", Message: "Subscription user limit reached"}
	ErrProjectQuotaExceeded = &Error{Kind: KindForbidden, Code: "QUOTA_EXCEEDED", Message: "Project limit reached for current subscription plan"}

	ErrInvalidCredentials = &Error{Kind: KindUnauthenticated, Code: "INVALID_CREDENTIALS", Message: "Invalid credentials"}
	ErrAccountInactive    = &Error{Kind: KindForbidden, Code: "ACCOUNT_INACTIVE", Message: "Account is inactive"}
	ErrNoFieldsToUpdate   = &Error{Kind: KindValidation, Code: "VALIDATION_ERROR", Message: "No valid fields to update"}
)

// KindOf returns the Kind of err, treating anything unclassified as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// AsError extracts the application error from err, wrapping unclassified errors as internal.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return InternalError(err)
}
