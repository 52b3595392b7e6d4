package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomUsernameShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		name := RandomUsername()
		assert.True(t, strings.HasPrefix(name, "Anon-"), "got %q", name)
		assert.NotContains(t, name, "=")
		assert.NotContains(t, name, "/")
		assert.NotContains(t, name, "+")
		seen[name] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestRandomGameIDIsURLSafe(t *testing.T) {
	for i := 0; i < 50; i++ {
		id := RandomGameID()
		assert.NotEmpty(t, id)
		assert.NotContains(t, id, "=")
		assert.NotContains(t, id, "_")
		assert.NotContains(t, id, "-")
	}
}

func TestRandomSessionIDLength(t *testing.T) {
	a, b := RandomSessionID(), RandomSessionID()
	// 32 bytes of entropy, base64 without padding.
	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}
