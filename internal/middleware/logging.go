package middleware

import (
	"net/http"
	"time"

	"paydash/pkg/logger"
)

// LoggingMiddleware records basic request metrics using the provided logger.
type LoggingMiddleware struct {
	logger logger.Logger
}

func NewLoggingMiddleware(log logger.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: log}
}

// Log wraps handlers with structured request/response logging.
func (m *LoggingMiddleware) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		fields := map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      wrapped.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		}
		if reqID, ok := RequestIDFromContext(r.Context()); ok {
			fields["request_id"] = reqID
		}
		if email, ok := EmailFromContext(r.Context()); ok {
			fields["user"] = email
		}

		m.logger.Info("HTTP Request", fields)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
