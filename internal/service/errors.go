package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ai-nutricare/backend/internal/auth"
	"github.com/ai-nutricare/backend/internal/gemini"
	"github.com/ai-nutricare/backend/internal/store"
)

// Error codes returned alongside "detail" in error bodies.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeTooLarge           = "PAYLOAD_TOO_LARGE"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodePlannerUnavailable = "PLANNER_UNAVAILABLE"
	CodeCancelled          = "REQUEST_CANCELLED"
	CodeInternal           = "INTERNAL"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Detail string   `json:"detail"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// requestError is a client error raised while decoding a request.
type requestError struct {
	status int
	code   string
	detail string
	fields []string
}

func (e *requestError) Error() string {
	return e.detail
}

func badRequest(detail string) error {
	return &requestError{status: http.StatusBadRequest, code: CodeBadRequest, detail: detail}
}

func unprocessable(detail string, fields ...string) error {
	return &requestError{status: http.StatusUnprocessableEntity, code: CodeValidation, detail: detail, fields: fields}
}

// mapError converts pipeline errors to an HTTP status and body.
func mapError(err error) (int, ErrorBody) {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return reqErr.status, ErrorBody{Detail: reqErr.detail, Code: reqErr.code, Fields: reqErr.fields}
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge, ErrorBody{Detail: "report exceeds the upload limit", Code: CodeTooLarge}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable, ErrorBody{Detail: "request cancelled before the plan was ready", Code: CodeCancelled}
	}

	var gerr *gemini.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case gemini.ErrRateLimited:
			return http.StatusTooManyRequests, ErrorBody{Detail: "meal plan service is busy, try again shortly", Code: string(gerr.Code)}
		case gemini.ErrNotConfigured:
			return http.StatusServiceUnavailable, ErrorBody{Detail: gerr.Message, Code: string(gerr.Code)}
		default:
			return http.StatusBadGateway, ErrorBody{Detail: "meal plan generation failed: " + gerr.Message, Code: string(gerr.Code)}
		}
	}

	switch {
	case errors.Is(err, ErrPlannerUnavailable):
		return http.StatusServiceUnavailable, ErrorBody{Detail: err.Error(), Code: CodePlannerUnavailable}
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorBody{Detail: err.Error(), Code: CodeUnauthenticated}
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, ErrorBody{Detail: err.Error(), Code: CodeNotFound}
	}

	return http.StatusInternalServerError, ErrorBody{Detail: "internal error", Code: CodeInternal}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("encode response", "err", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "path", r.URL.Path, "status", status, "err", err)
	} else {
		logger.Warn("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	respondJSON(w, status, body)
}
