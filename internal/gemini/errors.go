package gemini

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/genai"
)

// ErrorCode represents specific Gemini failure types.
type ErrorCode string

const (
	ErrUnavailable     ErrorCode = "GEMINI_UNAVAILABLE"
	ErrRateLimited     ErrorCode = "GEMINI_RATE_LIMITED"
	ErrRejected        ErrorCode = "GEMINI_REJECTED"
	ErrEmptyResponse   ErrorCode = "GEMINI_EMPTY_RESPONSE"
	ErrInvalidResponse ErrorCode = "GEMINI_INVALID_RESPONSE"
	ErrNotConfigured   ErrorCode = "GEMINI_NOT_CONFIGURED"
)

// Error is a structured error for generative-service failures.
type Error struct {
	Code      ErrorCode
	Message   string
	Status    int // HTTP status reported by the API, 0 for transport errors
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// classifyError converts SDK and transport errors to *Error.
func classifyError(err error) *Error {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTPError(apiErr.Code, apiErr.Message, err)
	}

	return &Error{
		Code:      ErrUnavailable,
		Message:   "Gemini API request failed",
		Retryable: true,
		Cause:     err,
	}
}

// classifyHTTPError maps a Gemini HTTP status to an *Error.
func classifyHTTPError(statusCode int, message string, cause error) *Error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return &Error{
			Code:      ErrRateLimited,
			Message:   "Gemini API rate limited",
			Status:    statusCode,
			Retryable: true,
			Cause:     cause,
		}
	case statusCode >= 500:
		return &Error{
			Code:      ErrUnavailable,
			Message:   fmt.Sprintf("Gemini API error (HTTP %d): %s", statusCode, message),
			Status:    statusCode,
			Retryable: true,
			Cause:     cause,
		}
	default:
		return &Error{
			Code:    ErrRejected,
			Message: fmt.Sprintf("Gemini API rejected request (HTTP %d): %s", statusCode, message),
			Status:  statusCode,
			Cause:   cause,
		}
	}
}
