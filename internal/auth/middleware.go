package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ai-nutricare/backend/internal/logging"
)

var logger = logging.Logger(logging.SourceHTTP)

// ErrUnauthenticated is returned when a request carries no identity.
var ErrUnauthenticated = errors.New("user not authenticated")

// LocalDevUser is attached to every request when auth is disabled.
var LocalDevUser = UserClaims{
	UID:         "local-dev-user",
	Email:       "dev@localhost",
	DisplayName: "Local Dev User",
	Verified:    true,
}

// ImpersonateHeader overrides the local dev user's id.
const ImpersonateHeader = "X-Debug-Impersonate-User"

var publicPaths = map[string]bool{
	"/health": true,
	"/ping":   true,
}

// IsPublicPath reports whether path is served without authentication.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}

// Middleware rejects requests without a valid Firebase ID token and stores
// the verified claims in the request context.
func Middleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			token, err := ExtractTokenFromHeader(r.Header.Get("Authorization"))
			if err != nil {
				unauthorized(w, err.Error())
				return
			}

			claims, err := verifier.VerifyToken(r.Context(), token)
			if err != nil {
				logger.Warn("token verification failed", "path", r.URL.Path, "err", err)
				unauthorized(w, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), claims)))
		})
	}
}

// LocalDevMiddleware attaches a fixed user for local development. The
// impersonation header replaces its id. Never use this in production.
func LocalDevMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if IsPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			claims := LocalDevUser
			if uid := r.Header.Get(ImpersonateHeader); uid != "" {
				claims = UserClaims{UID: uid, Email: uid + "@debug.local"}
			}
			next.ServeHTTP(w, r.WithContext(WithUserClaims(r.Context(), &claims)))
		})
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

type contextKey string

const userClaimsKey contextKey = "user_claims"

// WithUserClaims adds user claims to the context
func WithUserClaims(ctx context.Context, claims *UserClaims) context.Context {
	return context.WithValue(ctx, userClaimsKey, claims)
}

// GetUserClaims extracts user claims from context
func GetUserClaims(ctx context.Context) (*UserClaims, bool) {
	claims, ok := ctx.Value(userClaimsKey).(*UserClaims)
	return claims, ok
}

// GetUserID is a convenience function to get the user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	if claims, ok := GetUserClaims(ctx); ok {
		return claims.UID, true
	}
	return "", false
}

// RequireAuth extracts user claims from context or returns ErrUnauthenticated.
func RequireAuth(ctx context.Context) (*UserClaims, error) {
	claims, ok := GetUserClaims(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}
