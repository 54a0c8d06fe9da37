// Package middleware provides HTTP middleware for the API.
package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// GetRequestID returns the short request ID assigned by RequestLogger.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}

// responseWriter wraps http.ResponseWriter to capture status code and size.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

// wrap reuses an existing wrapper so stacked middleware see the same status.
func wrap(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

// RequestLogger returns a middleware that tags each request with a short ID
// and logs it. Only failed requests are logged unless verbose is set.
func RequestLogger(verbose bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := uuid.New().String()[:8]

			w.Header().Set("X-Request-ID", requestID)
			r = r.WithContext(context.WithValue(r.Context(), requestIDKey, requestID))

			wrapped := wrap(w)
			next.ServeHTTP(wrapped, r)

			if verbose || wrapped.status >= 400 {
				log.Printf("[%s] %s %s %s %d %d %v",
					requestID,
					clientIP(r),
					r.Method,
					r.URL.RequestURI(),
					wrapped.status,
					wrapped.size,
					time.Since(start),
				)
			}
		})
	}
}
