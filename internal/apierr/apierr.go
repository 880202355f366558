// internal/apierr/apierr.go
package apierr

import "fmt"

// Codes carried in the "error.code" field of every error response.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeUserExists         = "USER_EXISTS"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternal           = "INTERNAL_ERROR"
)

// Error is the body of {"error": {...}}.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type Envelope struct {
	Error *Error `json:"error"`
}

func New(code, message string, details any) Envelope {
	return Envelope{Error: &Error{Code: code, Message: message, Details: details}}
}
