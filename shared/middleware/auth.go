package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc/codes"

	"github.com/campusconnect/campus-qa-api/shared/auth"
	"github.com/campusconnect/campus-qa-api/shared/utilities"
)

type contextKey struct{}

var UserClaimsKey = contextKey{}

// NewJWTMiddleware returns an HTTP middleware that validates the bearer token
// on every request except the exempt paths and stores the parsed claims in the
// request context.
func NewJWTMiddleware(jwtAuth auth.JWTAuthenticator, secret string, exemptPaths []string) func(http.Handler) http.Handler {
	exemptMap := make(map[string]bool)
	for _, path := range exemptPaths {
		exemptMap[path] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip authentication for exempt paths
			if exemptMap[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := extractAndValidateJWT(r, jwtAuth, secret)
			if err != nil {
				utilities.WriteError(w, codes.Unauthenticated, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserClaimsKey, claims)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CallerID returns the authenticated account id stored in the request context,
// or false when the request carries no valid claims.
func CallerID(ctx context.Context) (string, bool) {
	claims, ok := ctx.Value(UserClaimsKey).(jwt.MapClaims)
	if !ok {
		return "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", false
	}

	return sub, true
}

func extractAndValidateJWT(r *http.Request, jwtAuth auth.JWTAuthenticator, secret string) (jwt.MapClaims, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil, errors.New("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, errors.New("invalid authorization header format")
	}

	tokenString := parts[1]

	claims := jwt.MapClaims{}
	_, err := jwtAuth.ValidateTokenWithClaims(tokenString, secret, claims)
	if err != nil {
		return nil, err
	}

	return claims, nil
}
