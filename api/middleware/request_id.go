package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/arrecon-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID assigns each request a correlation id, honoring one supplied by
// the caller when it parses as a UUID. The id is echoed in the response and
// attached to every log line the request emits.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
