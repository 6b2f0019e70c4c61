package middleware

import (
	"log/slog"
	"net/http"

	"github.com/checkit/checkit-server/internal/api/shared"
	"github.com/checkit/checkit-server/internal/platform/logger"
)

// NewTraceMiddleware returns middleware that attaches a trace ID and a
// trace-scoped logger to every request context, so logs and error responses
// across one request can be correlated.
func NewTraceMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			ctx = logger.WithLogger(ctx, log.With("trace_id", shared.GetTraceID(ctx)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
