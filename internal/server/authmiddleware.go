package server

import (
	"encoding/json"
	"net/http"

	"github.com/codevault-app/codevault/internal/auth"
)

// AuthMiddleware validates API keys on every request it wraps. The key is
// extracted from the Authorization header (Bearer token format). Routes that
// should stay open, like the health check and the websocket upgrade, are
// mounted outside this middleware.
func AuthMiddleware(authenticator *auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, err := auth.ExtractAPIKey(r)
			if err != nil {
				writeUnauthorized(w, err.Error())
				return
			}

			if err := authenticator.ValidateAPIKey(apiKey); err != nil {
				writeUnauthorized(w, "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   msg,
	})
}
