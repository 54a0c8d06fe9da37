package middleware

import (
	"log"
	"net/http"
	"runtime/debug"
	"strings"
)

// apiCSP forbids loading anything; the API only serves JSON.
const apiCSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'"

// SecurityHeaders adds security-related HTTP headers to responses.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Prevent MIME type sniffing
		h.Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		h.Set("X-Frame-Options", "DENY")

		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", apiCSP)
		h.Set("Cache-Control", "no-store")

		// HSTS only for secure requests
		if isRequestSecure(r) {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")

		next.ServeHTTP(w, r)
	})
}

// isRequestSecure reports whether the request arrived over TLS, directly or
// through a proxy that sets X-Forwarded-Proto.
func isRequestSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// Recoverer recovers from panics, logs them with stack trace, and returns a 500 error.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v\nrequest: %s %s (id %s)\nstack:\n%s",
					err, r.Method, r.URL.Path, GetRequestID(r.Context()), debug.Stack())
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if _, writeErr := w.Write([]byte(`{"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`)); writeErr != nil {
					log.Printf("failed to write error response: %v", writeErr)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
