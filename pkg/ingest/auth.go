package ingest

import (
	"crypto"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agrisync/agrisync/pkg/delegation"
	"github.com/agrisync/agrisync/pkg/logging"
)

// AuthOptions contains options for the bearer token middleware
type AuthOptions struct {
	// Required rejects requests without an Authorization header
	Required bool
	// Key verifies bearer tokens. When nil the signature is not checked and
	// tokens that are not JWTs pass unchanged.
	Key crypto.PublicKey
}

// RequireBearer checks the Authorization header and records the token
// subject as the request's consumer.
func RequireBearer(opts AuthOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				if !opts.Required {
					next.ServeHTTP(w, r)
					return
				}
				writeAuthError(w, "Access token is missing.")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				writeAuthError(w, "invalid authorization header format")
				return
			}

			claims := &jwt.RegisteredClaims{}
			if opts.Key == nil {
				// opaque API keys are accepted as is; JWTs still name the consumer
				if _, _, err := jwt.NewParser().ParseUnverified(parts[1], claims); err != nil {
					claims = &jwt.RegisteredClaims{}
				}
			} else {
				token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
					return opts.Key, nil
				}, jwt.WithValidMethods(delegation.SigningAlgorithms))
				if err != nil || !token.Valid {
					writeAuthError(w, "Access token is invalid.")
					return
				}
			}

			ctx := r.Context()
			if logging.GetConsumer(ctx) == "" && claims.Subject != "" {
				ctx = logging.WithConsumer(ctx, claims.Subject)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
