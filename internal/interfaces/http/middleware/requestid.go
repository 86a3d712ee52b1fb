package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/turtacn/aether-intel/pkg/types/common"
)

// RequestIDHeader is the header carrying the per-request UUID, inbound
// and outbound.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns every request a UUID, preferring one supplied by the
// caller, and exposes it via the response header and request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), common.ContextKeyRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ContextGetRequestID returns the request ID stored by RequestID, or an
// empty string when the middleware did not run.
func ContextGetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(common.ContextKeyRequestID).(string)
	return id
}
