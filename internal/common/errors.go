// File: internal/common/errors.go
package common

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AuthErrorKind classifies identity-provider failures surfaced to forms.
type AuthErrorKind string

const (
	AuthErrEmailInUse         AuthErrorKind = "EMAIL_IN_USE"
	AuthErrWeakPassword       AuthErrorKind = "WEAK_PASSWORD"
	AuthErrInvalidCredentials AuthErrorKind = "INVALID_CREDENTIALS"
	AuthErrPopupClosed        AuthErrorKind = "POPUP_CLOSED"
	AuthErrNoSession          AuthErrorKind = "NO_SESSION"
	AuthErrNetwork            AuthErrorKind = "NETWORK"
	AuthErrUnknown            AuthErrorKind = "UNKNOWN"
)

// AuthError is the error type for credential creation, sign-in and profile
// operations. The Kind is stable; the Message is provider-supplied detail.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("auth error %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("auth error %s", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NewAuthError creates an AuthError of the given kind.
func NewAuthError(kind AuthErrorKind, message string, cause error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: cause}
}

// IsAuthError reports whether err is (or wraps) an AuthError, returning it.
func IsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr, true
	}
	return nil, false
}

// AuthKind returns the kind of err when it is an AuthError, AuthErrUnknown otherwise.
func AuthKind(err error) AuthErrorKind {
	if authErr, ok := IsAuthError(err); ok {
		return authErr.Kind
	}
	return AuthErrUnknown
}

// APIError represents an error envelope returned by the marketplace backend.
type APIError struct {
	StatusCode int         `json:"-"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("APIError: StatusCode=%d, Code=%s, Message=%s", e.StatusCode, e.Code, e.Message)
}

// NewAPIError builds an APIError for responses that carried no decodable envelope.
func NewAPIError(statusCode int, code, message string) *APIError {
	return &APIError{StatusCode: statusCode, Code: code, Message: message}
}

// IsAPIError reports whether err is (or wraps) an APIError, returning it.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ErrRoleLookup marks a failed role resolution. Callers must treat it as
// "still loading", never as an implicit grant.
var ErrRoleLookup = errors.New("role lookup failed")

// ValidationError carries per-field messages for missing or malformed form
// input. Recovered by user correction, surfaced inline.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// NewValidationError wraps validator output into a ValidationError.
func NewValidationError(errs validator.ValidationErrors) *ValidationError {
	return &ValidationError{Fields: FormatValidationErrors(errs)}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}

// FormatValidationErrors converts validator.ValidationErrors into a field map
// suitable for inline form display.
func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMap := make(map[string]string)
	for _, e := range errs {
		field := e.Field()
		var message string
		switch e.Tag() {
		case "required":
			message = fmt.Sprintf("The %s field is required.", strings.ToLower(field))
		case "email":
			message = fmt.Sprintf("The %s field must be a valid email address.", strings.ToLower(field))
		case "min":
			message = fmt.Sprintf("The %s field must be at least %s characters long.", strings.ToLower(field), e.Param())
		case "max":
			message = fmt.Sprintf("The %s field may not be greater than %s characters.", strings.ToLower(field), e.Param())
		case "oneof":
			message = fmt.Sprintf("The %s field must be one of the following values: %s.", strings.ToLower(field), e.Param())
		case "url":
			message = fmt.Sprintf("The %s field must be a valid URL.", strings.ToLower(field))
		default:
			message = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag.", field, e.Tag())
		}
		errorMap[field] = message
	}
	return errorMap
}
