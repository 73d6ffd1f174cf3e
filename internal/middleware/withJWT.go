package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/atinyakov/barcoder/internal/app/service"
)

// SubjectKey is the context key holding the subject of a verified admin token.
const SubjectKey ContextKey = "subject"

// WithAdminJWT requires an "Authorization: Bearer <token>" header carrying
// a valid admin token. The token subject is injected into the request context.
func WithAdminJWT(auth service.AuthIface) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				w.Header().Set("WWW-Authenticate", "Bearer")
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			claims, err := auth.ParseRawJWT(strings.TrimSpace(raw))
			if err != nil {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
