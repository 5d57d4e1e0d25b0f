package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/MrJamesThe3rd/ledgercert/internal/auth"
	"github.com/MrJamesThe3rd/ledgercert/internal/http/request"
)

type ctxKey struct{}

// Subject returns the authenticated token subject, if any.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(ctxKey{}).(string)
	return s, ok
}

// Middleware requires a valid bearer token on every request.
func Middleware(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				request.WriteError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
				return
			}

			claims, err := svc.Validate(token)
			if err != nil {
				slog.Warn("rejected bearer token", "error", err, "path", r.URL.Path)
				request.WriteError(w, http.StatusUnauthorized, err)

				return
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
