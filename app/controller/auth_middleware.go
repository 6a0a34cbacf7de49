package controller

import (
	"context"
	"net/http"
	"strings"

	"armario-outfits/apperr"
)

type ctxKey struct{}

// TokenParser validates a session token and returns the user id inside it
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// WithUserID returns a copy of ctx carrying uid
func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, ctxKey{}, uid)
}

// UserID returns the authenticated user id, or "" for anonymous requests
func UserID(ctx context.Context) string {
	uid, _ := ctx.Value(ctxKey{}).(string)
	return uid
}

// tokenFromRequest reads the auth cookie, falling back to a Bearer header
// for mobile clients
func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireUser rejects requests without a valid session and stores the
// user id in the request context
func RequireUser(tokens TokenParser, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r, cookieName)
			if token == "" {
				writeError(w, "RequireUser", apperr.New(apperr.CodeUnauthorized, "no session"))
				return
			}
			uid, err := tokens.ParseToken(token)
			if err != nil {
				writeError(w, "RequireUser", err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), uid)))
		})
	}
}
