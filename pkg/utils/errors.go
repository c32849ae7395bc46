package utils

import (
	"fmt"
	"net/http"
)

// CustomError represents a custom application error
type CustomError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func (e *CustomError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// Common error constructors
func NewBadRequestError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: message,
	}
}

func NewInternalServerError(message string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: message,
	}
}

func NewValidationError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadRequest,
		Message: "Validation failed",
		Detail:  detail,
	}
}

// NewUpstreamFetchError returns an error for a failed category fetch against
// the upstream search API.
func NewUpstreamFetchError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusBadGateway,
		Message: "Upstream fetch failed",
		Detail:  detail,
	}
}

// NewRefreshInProgressError signals that a refresh run is already active.
func NewRefreshInProgressError() *CustomError {
	return &CustomError{
		Code:    http.StatusConflict,
		Message: "Refresh already in progress",
	}
}

// NewPipelineError returns an error for an unexpected failure inside the
// refresh pipeline.
func NewPipelineError(detail string) *CustomError {
	return &CustomError{
		Code:    http.StatusInternalServerError,
		Message: "Refresh pipeline failed",
		Detail:  detail,
	}
}
