// Package request assigns a correlation id to every request.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"cubemint/pkg/requestcontext"
)

// HeaderRequestID carries an inbound correlation id and echoes it back.
const HeaderRequestID = "X-Request-ID"

// maxRequestIDLen rejects oversized inbound ids so they never reach logs unbounded.
const maxRequestIDLen = 128

// RequestID reuses a sane inbound X-Request-ID or generates a UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLen {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
