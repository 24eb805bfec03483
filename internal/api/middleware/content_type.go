package middleware

import (
	"net/http"
	"strings"

	"github.com/airsight/airsight/internal/api/models"
)

// ContentTypeJSON sets the Content-Type header to application/json unless a
// handler already chose one.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON rejects body-carrying requests whose Content-Type is not
// application/json. An absent Content-Type is allowed so plain curl posts
// keep working.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
				requestID := GetRequestID(r.Context())
				models.NewError(
					"unsupported_media_type",
					"Content-Type must be application/json",
					http.StatusUnsupportedMediaType,
					requestID,
				).Write(w)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
