package api

import (
	"errors"

	apierrors "github.com/athlink/cli/pkg/errors"
	json "github.com/json-iterator/go"
)

// ErrorResponse is the body some endpoints return instead of an envelope
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ParseError maps a failed, non-envelope response to a CLIError
func ParseError(statusCode int, body []byte) *apierrors.CLIError {
	var errResp ErrorResponse
	message := ""
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" {
		message = errResp.Message
	}
	return apierrors.FromStatus(statusCode, message)
}

func statusOf(err error) int {
	var cliErr *apierrors.CLIError
	if errors.As(err, &cliErr) {
		return cliErr.StatusCode
	}
	return 0
}

// IsUnauthorized checks if error is due to missing/invalid authentication
func IsUnauthorized(err error) bool {
	return statusOf(err) == 401
}

// IsForbidden checks if error is due to insufficient permissions
func IsForbidden(err error) bool {
	return statusOf(err) == 403
}

// IsNotFound checks if error is due to resource not found
func IsNotFound(err error) bool {
	return statusOf(err) == 404
}

// IsServerError checks if error is due to server error (5xx)
func IsServerError(err error) bool {
	return statusOf(err) >= 500
}
