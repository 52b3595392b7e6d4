package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
)

// stripPadding drops every character that is not cookie- and URL-safe
// from a base64 rendering.
func stripPadding(s string) string {
	return strings.NewReplacer("+", "", "/", "", "=", "", "-", "", "_", "").Replace(s)
}

func randomBytes(n int) []byte {
	b := make([]byte, n)
	rand.Read(b)
	return b
}

// RandomUsername mints an anonymous username of the form Anon-XXXXXX.
// Uniqueness is enforced by the players collection, not here.
func RandomUsername() string {
	return "Anon-" + stripPadding(base64.StdEncoding.EncodeToString(randomBytes(6)))
}

// RandomGameID returns a fresh 9-byte game id, alphanumeric only.
// Callers probe the store for collisions.
func RandomGameID() string {
	return stripPadding(base64.URLEncoding.EncodeToString(randomBytes(9)))
}

// RandomSessionID returns a 32-byte session id.
func RandomSessionID() string {
	return base64.RawURLEncoding.EncodeToString(randomBytes(32))
}
