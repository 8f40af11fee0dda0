// Package middleware provides the HTTP middleware chain of the dashboard
// server: correlation, logging, security headers, CORS, auth and rate
// limiting.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxRequestIDKey contextKey = "request_id"
	ctxUserIDKey    contextKey = "user_id"
	ctxEmailKey     contextKey = "email"
)

// CorrelationID ensures every request carries an X-Request-ID for tracing.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), ctxRequestIDKey, reqID)
		w.Header().Set("X-Request-ID", reqID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the correlation ID assigned to the request.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxRequestIDKey).(string)
	return s, ok
}
