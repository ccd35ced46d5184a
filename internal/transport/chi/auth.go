package chi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/retailerdir/internal/logger"
)

type subjectKey struct{}

// SubjectFromContext returns the authenticated caller (JWT "sub"), if any.
func SubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(subjectKey{}).(string)
	return sub, ok && sub != ""
}

// JWTAuthMiddleware returns a middleware that requires an HS256-signed Bearer token.
// If secret is empty, authentication is disabled (pass-through).
// When issuer is set, the token's "iss" claim must match it.
func JWTAuthMiddleware(secret, issuer string) func(http.Handler) http.Handler {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized,
					"You are not logged in! Please log in to get access.", nil)
				return
			}

			const bearerPrefix = "Bearer "
			if !strings.HasPrefix(auth, bearerPrefix) {
				writeError(w, http.StatusUnauthorized, CodeUnauthorized,
					"authorization header must use Bearer scheme", nil)
				return
			}

			var claims jwt.RegisteredClaims
			_, err := parser.ParseWithClaims(auth[len(bearerPrefix):], &claims, func(*jwt.Token) (any, error) {
				return key, nil
			})
			if err != nil {
				msg := "Invalid token."
				if errors.Is(err, jwt.ErrTokenExpired) {
					msg = "Token expired."
				}
				logpkg.FromContext(r.Context()).Debug("token rejected", zap.Error(err))
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, msg, nil)
				return
			}

			ctx := context.WithValue(r.Context(), subjectKey{}, claims.Subject)
			ctx = logpkg.WithFields(ctx, zap.String("subject", claims.Subject))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
