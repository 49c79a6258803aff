package daemon

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"equalmedia/internal/services"
)

// authMiddleware returns a middleware that validates bearer tokens.
// If token is empty, no authentication is required and all requests pass through.
// Otherwise, requests must include "Authorization: Bearer <token>" header.
func authMiddleware(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		presented := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// withRequestID adopts the caller's X-Request-ID or assigns a new one, and
// echoes it on the response.
func withRequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := services.WithRequestID(r.Context(), strings.TrimSpace(r.Header.Get(RequestIDHeader)))
		ctx, id := services.EnsureRequestID(ctx)
		w.Header().Set(RequestIDHeader, id)
		next(w, r.WithContext(ctx))
	}
}
