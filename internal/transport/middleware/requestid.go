package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/gastoscl/rendiciones/pkg/logger"
)

// TraceID accepts an inbound X-Trace-ID or mints one, binds it to the context
// logger and echoes it back on the response.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-ID")
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := logger.With(r.Context(), "trace_id", traceID)
		w.Header().Set("X-Trace-ID", traceID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
