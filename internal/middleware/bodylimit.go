package middleware

import (
	"net/http"

	"github.com/persona-fest/server-go/internal/httputil"
)

const DefaultMaxBodySize = 1 << 20 // 1MB

// BodyLimit caps request body size before any handler reads it.
func BodyLimit(maxSize int64) func(http.Handler) http.Handler {
	if maxSize <= 0 {
		maxSize = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxSize {
				writeJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
					Success: false,
					Message: "request body too large",
				})
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxSize)
			next.ServeHTTP(w, r)
		})
	}
}
