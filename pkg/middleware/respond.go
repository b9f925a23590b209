package middleware

import (
	"context"
	"net/http"

	apperrors "guesthouse/pkg/errors"
)

func requestIDFrom(ctx context.Context) string {
	if rid := ctx.Value(RequestIDKey); rid != nil {
		if id, ok := rid.(string); ok {
			return id
		}
	}
	return ""
}

// RequestIDFromContext returns the id assigned by RequestLogging, or "".
func RequestIDFromContext(ctx context.Context) string {
	return requestIDFrom(ctx)
}

// writeError renders the same envelope as the handlers so clients see one shape.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(apperrors.New(code, message, status).ToJSON())
}
