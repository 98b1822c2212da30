package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/recipebox/recipebox-server/internal/errors"
	"github.com/recipebox/recipebox-server/internal/store"
)

// Client-facing messages produced by the HTTP layer itself.
const (
	msgInternal         = "Internal server error"
	msgNotFound         = "Not found"
	msgMethodNotAllowed = "Method not allowed"
	msgTooManyRequests  = "Too many requests"
	msgUnsupportedBody  = "Request body must be JSON"
)

// APIError is the error body returned by every endpoint: {"error": "..."}.
// It implements huma.StatusError.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Message string `json:"error" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to render domain errors.
// Call this after creating the huma.API but before registering routes.
func RegisterErrorHandler() {
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		for _, err := range errs {
			if apiErr := fromDomainError(err); apiErr != nil {
				return apiErr
			}
		}

		// Request validation and body format problems are plain bad requests here.
		switch status {
		case http.StatusUnprocessableEntity:
			status = http.StatusBadRequest
		case http.StatusUnsupportedMediaType:
			status = http.StatusBadRequest
			message = msgUnsupportedBody
		}
		if status >= http.StatusInternalServerError {
			message = msgInternal
		}

		apiErr := &APIError{status: status, Message: message}
		if details := errorDetails(errs); len(details) > 0 && status < http.StatusInternalServerError {
			apiErr.Details = details
		}
		return apiErr
	}
}

// fromDomainError converts domain and store errors, or returns nil.
func fromDomainError(err error) *APIError {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return &APIError{
			status:  domainErr.HTTPStatus(),
			Message: domainErr.Message,
			Details: domainErr.Details,
		}
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) && storeErr.HTTPCode() == http.StatusNotFound {
		return &APIError{status: http.StatusNotFound, Message: storeErr.Message}
	}

	return nil
}

// errorDetails collects huma's per-field validation messages.
func errorDetails(errs []error) []string {
	var details []string
	for _, err := range errs {
		if err != nil {
			details = append(details, err.Error())
		}
	}
	return details
}

// toAPIError converts a service error for a huma handler, logging anything
// that is not a known domain error.
func (s *Server) toAPIError(ctx context.Context, op string, err error) error {
	if apiErr := fromDomainError(err); apiErr != nil {
		return apiErr
	}
	s.logger.ErrorContext(ctx, "request failed", "operation", op, "error", err)
	return &APIError{status: http.StatusInternalServerError, Message: msgInternal}
}
