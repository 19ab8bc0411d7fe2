package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FallbackMessage is shown for failures that could not be classified
const FallbackMessage = "Something went wrong. Please try again."

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeForbidden      ErrorType = "forbidden"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Validation errors, raised before any request is sent
	ErrorTypeValidation    ErrorType = "validation"
	ErrorTypeFileNotFound  ErrorType = "file_not_found"
	ErrorTypeInvalidFormat ErrorType = "invalid_format"

	// Server reported a failed business rule (success: false)
	ErrorTypeBusiness ErrorType = "business"

	// Server errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError represents a structured error with context
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
	RetryAfter int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string, cause error) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, cause)
	err.Suggestion = "Check your internet connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError(cause error) *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", cause)
	err.Suggestion = "The server is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.StatusCode = 401
	err.Suggestion = "Try logging in again with 'athlink-cli auth login'"
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.Suggestion = "Run 'athlink-cli auth login' to refresh your session."
	return err
}

// ForbiddenError creates a forbidden error
func ForbiddenError() *CLIError {
	err := NewCLIError(ErrorTypeForbidden, "Access denied", nil)
	err.StatusCode = 403
	err.Suggestion = "Contact an administrator if you believe this is an error."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// FileNotFoundError creates a file not found error
func FileNotFoundError(path string) *CLIError {
	err := NewCLIError(ErrorTypeFileNotFound, fmt.Sprintf("File not found: %s", path), nil)
	err.Suggestion = "Check the file path and try again."
	return err
}

// InvalidFormatError creates an error for a response body that could not be decoded
func InvalidFormatError(cause error) *CLIError {
	return NewCLIError(ErrorTypeInvalidFormat, "Unexpected response from server", cause)
}

// BusinessError carries a server-provided failure message verbatim
func BusinessError(message string, statusCode int) *CLIError {
	if message == "" {
		message = FallbackMessage
	}
	err := NewCLIError(ErrorTypeBusiness, message, nil)
	err.StatusCode = statusCode
	return err
}

// ServerError creates a server error
func ServerError(statusCode int) *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.StatusCode = statusCode
	err.Suggestion = "The server encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	err := NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
	err.StatusCode = 404
	return err
}

// RateLimitError creates a rate limit error
func RateLimitError(retryAfter int) *CLIError {
	err := NewCLIError(ErrorTypeRateLimit,
		"Rate limit exceeded. Too many requests.",
		nil)
	err.StatusCode = 429
	err.RetryAfter = retryAfter
	err.Suggestion = fmt.Sprintf("Please wait %d seconds before trying again.", retryAfter)
	return err
}

// ConflictError creates a conflict error
func ConflictError(message string) *CLIError {
	err := NewCLIError(ErrorTypeConflict, message, nil)
	err.StatusCode = 409
	return err
}

// FromStatus maps an HTTP status without a usable body to a CLIError
func FromStatus(statusCode int, message string) *CLIError {
	switch {
	case statusCode == 401:
		if message == "" {
			message = "Invalid credentials"
		}
		return AuthError(message)
	case statusCode == 403:
		return ForbiddenError()
	case statusCode == 404:
		return NotFoundError("Resource", "unknown")
	case statusCode == 409:
		if message == "" {
			message = "Resource already exists"
		}
		return ConflictError(message)
	case statusCode == 429:
		return RateLimitError(60)
	case statusCode >= 500:
		return ServerError(statusCode)
	case statusCode >= 400:
		return BusinessError(message, statusCode)
	default:
		err := NewCLIError(ErrorTypeUnknown, FallbackMessage, nil)
		err.StatusCode = statusCode
		return err
	}
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return TimeoutError(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TimeoutError(err)
	}

	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "connection refused"):
		return NetworkError("Could not connect to server. Make sure it's running.", err)
	case strings.Contains(errMsg, "no such host"):
		return NetworkError("Could not resolve the server address.", err)
	case strings.Contains(errMsg, "timeout"):
		return TimeoutError(err)
	case strings.Contains(errMsg, "401") || strings.Contains(errMsg, "unauthorized"):
		return AuthError("Invalid credentials")
	case strings.Contains(errMsg, "403") || strings.Contains(errMsg, "forbidden"):
		return ForbiddenError()
	case strings.Contains(errMsg, "429") || strings.Contains(errMsg, "rate limit"):
		return RateLimitError(60)
	default:
		return NewCLIError(ErrorTypeUnknown, FallbackMessage, err)
	}
}

// UserMessage returns the short text shown to a user in a notice
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return CategorizeError(err).Message
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("❌ Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("\n💡 Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	if cliErr.Type == ErrorTypeRateLimit && cliErr.RetryAfter > 0 {
		sb.WriteString("\n⏱️  Retry in: ")
		sb.WriteString(fmt.Sprintf("%d seconds\n", cliErr.RetryAfter))
	}

	return sb.String()
}
