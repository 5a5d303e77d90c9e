package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/urlstash/urlstash/internal/metrics"
	"github.com/urlstash/urlstash/internal/store"
)

// TokenMiddleware authenticates API requests via the historical
// "Authorization: Token <opaque>" header scheme.
type TokenMiddleware struct {
	tokens TokenStore
	users  *store.UserStore
}

func NewTokenMiddleware(tokens TokenStore, users *store.UserStore) *TokenMiddleware {
	return &TokenMiddleware{tokens: tokens, users: users}
}

// Authenticate extracts and validates the session token.
// Missing header, wrong scheme, unknown token, and a token whose user is
// gone all fail identically with 401.
func (m *TokenMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Token ") {
			writeUnauthorized(w)
			return
		}
		plaintext := strings.TrimPrefix(authHeader, "Token ")
		if plaintext == "" || strings.ContainsRune(plaintext, ' ') {
			writeUnauthorized(w)
			return
		}

		rec, err := m.tokens.GetByHash(r.Context(), HashToken(plaintext))
		if err != nil {
			writeUnauthorized(w)
			return
		}

		user, err := m.users.GetByID(r.Context(), rec.UserID)
		if err != nil {
			writeUnauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeUnauthorized writes a 401 JSON response.
func writeUnauthorized(w http.ResponseWriter) {
	metrics.AuthFailuresTotal.Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "code": "UNAUTHORIZED"})
}
