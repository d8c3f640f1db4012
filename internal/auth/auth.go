// Package auth validates API keys against configured SHA-256 hashes.
// Authentication is optional: a server with no keys configured runs open.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
)

// Key is one configured API key.
type Key struct {
	KeyHash     string
	Description string
}

// Authenticator validates API keys against their stored hashes.
type Authenticator struct {
	keys map[string]Key // keyhash -> key
}

// NewAuthenticator builds an authenticator from the configured keys.
func NewAuthenticator(keys []Key) *Authenticator {
	auth := &Authenticator{keys: make(map[string]Key)}
	for _, k := range keys {
		auth.keys[k.KeyHash] = k
	}
	return auth
}

// ValidateAPIKey checks a plaintext API key against the configured hashes.
func (a *Authenticator) ValidateAPIKey(apiKey string) error {
	keyHash := HashAPIKey(apiKey)

	k, ok := a.keys[keyHash]
	if !ok {
		return fmt.Errorf("invalid API key")
	}

	// Constant-time comparison to prevent timing attacks
	if subtle.ConstantTimeCompare([]byte(keyHash), []byte(k.KeyHash)) != 1 {
		return fmt.Errorf("invalid API key")
	}

	return nil
}

// ExtractAPIKey extracts the API key from the Authorization header.
// Only the "Bearer <key>" format is accepted.
func ExtractAPIKey(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("unsupported authorization scheme")
	}

	return parts[1], nil
}

// HashAPIKey creates a SHA-256 hash of an API key for storage.
func HashAPIKey(apiKey string) string {
	hash := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(hash[:])
}
