package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/auth"
)

type contextKey string

const userContextKey contextKey = "vault.user"

// RequireUser extracts the bearer token, resolves it to an active user
// and stores the user in the request context. Requests without a valid
// access token are rejected with 401.
func RequireUser(authSvc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := jwtauth.TokenFromHeader(r)
			if token == "" {
				writeError(w, r, auth.ErrUnauthorized)
				return
			}
			user, err := authSvc.ResolveSession(r.Context(), token)
			if err != nil {
				writeError(w, r, err)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func userFromContext(ctx context.Context) (*vault.User, bool) {
	user, ok := ctx.Value(userContextKey).(*vault.User)
	return user, ok
}
