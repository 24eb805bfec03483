// Package models defines the JSON shapes shared by the API handlers.
package models

import (
	"encoding/json"
	"net/http"
)

// Error is the JSON error body returned by every endpoint on failure.
// Code is a stable machine-readable label; Message is for humans.
type Error struct {
	Code      string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`

	// Status is the HTTP status code; not serialized.
	Status int `json:"-"`
}

// Stable error codes.
const (
	CodeInvalidCoordinates   = "invalid_coordinates"
	CodeValidation           = "validation_error"
	CodeMissingConfiguration = "missing_configuration"
	CodeUpstreamUnavailable  = "upstream_unavailable"
	CodeTooManyRequests      = "too_many_requests"
	CodeNotFound             = "not_found"
	CodeInternal             = "internal_error"
)

// NewError creates an Error with the given parameters.
func NewError(code, message string, status int, requestID string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Status:    status,
		RequestID: requestID,
	}
}

// Write writes the Error as JSON to the ResponseWriter.
func (e *Error) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if e.RequestID != "" {
		w.Header().Set("X-Request-Id", e.RequestID)
	}
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(e)
}

// NewInvalidCoordinates creates a 400 error for malformed lat/lon input.
func NewInvalidCoordinates(requestID, message string) *Error {
	return NewError(CodeInvalidCoordinates, message, http.StatusBadRequest, requestID)
}

// NewValidation creates a 400 error for an invalid client payload.
func NewValidation(requestID, message string) *Error {
	return NewError(CodeValidation, message, http.StatusBadRequest, requestID)
}

// NewMissingConfiguration creates a 500 error naming an absent credential.
func NewMissingConfiguration(requestID, message string) *Error {
	return NewError(CodeMissingConfiguration, message, http.StatusInternalServerError, requestID)
}

// NewUpstreamUnavailable creates a 500 error after the retry budget is
// exhausted.
func NewUpstreamUnavailable(requestID, message string) *Error {
	return NewError(CodeUpstreamUnavailable, message, http.StatusInternalServerError, requestID)
}

// NewTooManyRequests creates a 429 error.
func NewTooManyRequests(requestID, message string) *Error {
	return NewError(CodeTooManyRequests, message, http.StatusTooManyRequests, requestID)
}

// NewNotFound creates a 404 error.
func NewNotFound(requestID, message string) *Error {
	return NewError(CodeNotFound, message, http.StatusNotFound, requestID)
}

// NewInternal creates a generic 500 error.
func NewInternal(requestID, message string) *Error {
	return NewError(CodeInternal, message, http.StatusInternalServerError, requestID)
}
