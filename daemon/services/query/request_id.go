package query

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// requestIDContextKey namespaces the request ID stored on the context,
// trimmed from the teacher's configurable middleware.RequestIDConfig down
// to the one X-Request-ID header/context-key pair this surface needs.
const requestIDContextKey contextKey = "query.request_id"

// requestIDMiddleware echoes a client-supplied X-Request-ID, or mints one
// via google/uuid, the same as the teacher's request_id.go.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
