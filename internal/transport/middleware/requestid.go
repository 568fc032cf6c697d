package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mostafaSataki/LprParkingWeb-sub000/pkg/logger"
)

// RequestID assigns every request a trace id, honoring one supplied by the
// caller, and binds it to the context logger.
func RequestID(next http.Handler) http.Handler {
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
