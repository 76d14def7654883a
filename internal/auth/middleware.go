package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"linkvault/internal/apperror"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. If you use a plain string like
// context.WithValue(ctx, "userID", id), ANY package that knows the string
// "userID" can read or shadow your value. A package-private type prevents
// collisions: only this package can create a key of type contextKey.
type contextKey string

const userIDKey contextKey = "userID"

// ActiveChecker reports whether an account may currently use the API.
// The auth service implements it; the middleware only needs this one method,
// so it asks for exactly that instead of the whole service.
type ActiveChecker interface {
	VerifyActive(ctx context.Context, userID string) error
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It resolves the JWT from either the "Authorization: Bearer <token>" header
// (API clients) or the "token" HttpOnly cookie (browser sessions), validates
// it, and stores the userID in the request context. If the token is missing
// or invalid, it returns 401 Unauthorized and stops the request chain.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler wrapping it. Chi applies middlewares in a chain:
// req → M1 → M2 → Handler → M2 → M1 → resp.
func RequireAuth(tokens *TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := extractUserID(r, tokens)
			if err != nil {
				unauthorized(w)
				return
			}

			// Store userID in context so handlers can read it
			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActive rejects requests from deactivated accounts with 403.
//
// Token validation is stateless, so a JWT outlives an account deactivation
// by up to its TTL. This middleware closes that gap with one DB lookup per
// request. It must run AFTER RequireAuth — it reads the userID that
// RequireAuth put in the context.
//
// 403 here is deliberately distinct from 401: the caller proved who they
// are, they're just not allowed in anymore.
func RequireActive(accounts ActiveChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}

			if err := accounts.VerifyActive(r.Context(), userID); err != nil {
				w.Header().Set("Content-Type", "application/json")

				// Only a verdict about the account maps to 403: deactivated
				// (Forbidden) or deleted outright (NotFound). A store failure
				// is not a verdict — that's a 500.
				if errors.Is(err, apperror.ErrForbidden) || errors.Is(err, apperror.ErrNotFound) {
					w.WriteHeader(http.StatusForbidden)
					w.Write([]byte(`{"error":"forbidden","message":"account is not active"}`))
					return
				}

				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal_error","message":"an internal error occurred"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if the request is anonymous (no valid token was present).
// Returns (id, true) if the user is authenticated.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// extractUserID resolves and validates the JWT from the request.
//
// The Authorization header wins over the cookie: an API client that sends an
// explicit bearer token should never be silently overridden by a stale
// browser cookie on the same machine.
func extractUserID(r *http.Request, tokens *TokenService) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if tokenStr, ok := strings.CutPrefix(h, "Bearer "); ok {
			return tokens.Validate(tokenStr)
		}
	}

	cookie, err := r.Cookie("token")
	if err != nil {
		// http.ErrNoCookie — no credential at all
		return "", err
	}

	return tokens.Validate(cookie.Value)
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthenticated","message":"valid authentication required"}`))
}
