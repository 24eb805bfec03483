// Package response provides utilities for HTTP response handling.
package response

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/airsight/airsight/internal/api/middleware"
	"github.com/airsight/airsight/internal/api/models"
)

// JSON writes a JSON response with the given status code.
// Includes X-Request-Id header for correlation.
func JSON(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, r *http.Request, apiErr *models.Error) {
	apiErr.Write(w)
}

// InvalidCoordinates writes a 400 response for malformed lat/lon input.
func InvalidCoordinates(w http.ResponseWriter, r *http.Request, message string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewInvalidCoordinates(requestID, message))
}

// Validation writes a 400 response for an invalid request payload.
func Validation(w http.ResponseWriter, r *http.Request, message string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewValidation(requestID, message))
}

// MissingConfiguration writes a 500 response naming an absent credential.
func MissingConfiguration(w http.ResponseWriter, r *http.Request, message string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewMissingConfiguration(requestID, message))
}

// UpstreamUnavailable writes a 500 response after the retry budget is exhausted.
func UpstreamUnavailable(w http.ResponseWriter, r *http.Request, message string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewUpstreamUnavailable(requestID, message))
}

// NotFound writes a 404 Not Found error response.
func NotFound(w http.ResponseWriter, r *http.Request, message string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewNotFound(requestID, message))
}

// RateLimitInfo contains rate limit information for 429 responses.
type RateLimitInfo struct {
	// Limit is the maximum number of requests allowed in the window.
	Limit int
	// Remaining is the number of requests remaining in the current window.
	Remaining int
	// ResetAt is the Unix timestamp when the rate limit window resets.
	ResetAt int64
	// RetryAfter is the number of seconds until the client should retry.
	RetryAfter int
}

// TooManyRequests writes a 429 Too Many Requests error response.
func TooManyRequests(w http.ResponseWriter, r *http.Request, message string) {
	TooManyRequestsWithInfo(w, r, message, nil)
}

// TooManyRequestsWithInfo writes a 429 Too Many Requests error response with rate limit headers.
func TooManyRequestsWithInfo(w http.ResponseWriter, r *http.Request, message string, info *RateLimitInfo) {
	if info != nil {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt, 10))
		if info.RetryAfter > 0 {
			w.Header().Set("Retry-After", strconv.Itoa(info.RetryAfter))
		}
	}
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewTooManyRequests(requestID, message))
}

// InternalError writes a 500 Internal Server Error response.
func InternalError(w http.ResponseWriter, r *http.Request, message string) {
	requestID := middleware.GetRequestID(r.Context())
	Error(w, r, models.NewInternal(requestID, message))
}

// NoContent writes a 204 No Content response.
// Includes X-Request-Id header for correlation.
func NoContent(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	if requestID != "" {
		w.Header().Set("X-Request-Id", requestID)
	}
	w.WriteHeader(http.StatusNoContent)
}
