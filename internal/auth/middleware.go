// Package auth provides bearer-token authentication for the admin rule
// endpoints. The token is verified against either a bcrypt hash (preferred)
// or a plaintext key via constant-time comparison.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Admin guards rule write endpoints. When KeyHash is set it wins over Key.
type Admin struct {
	Key     string
	KeyHash string
}

// Middleware rejects requests without a valid admin bearer token. The
// onError callback writes the error response so this package stays free of
// the API's response envelope.
func (a Admin) Middleware(onError func(w http.ResponseWriter, r *http.Request, status int, message string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				onError(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}
			if !a.verify(token) {
				onError(w, r, http.StatusForbidden, "invalid token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a Admin) verify(token string) bool {
	if a.KeyHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(a.KeyHash), []byte(token)) == nil
	}
	if a.Key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.Key)) == 1
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}
