package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, env, body string) {
	t.Helper()
	path := filepath.Join(dir, "config."+env+".json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	t.Setenv("CONFIG_DIR", t.TempDir())

	cfg, err := Load("development")
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "https://lichess.org/oauth", cfg.OAuth.AuthURL)
	assert.Equal(t, "lax", cfg.Session.SameSite)
	assert.True(t, cfg.Session.HttpOnly)
}

func TestLoadReadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	writeConfig(t, dir, "production", `{
		"server": {"host": "127.0.0.1", "port": 9000, "origins": ["https://example.com"]},
		"moderator": "carol",
		"ai": {"pockets": {"shuuroMini": ["QNN", "RRB"]}}
	}`)

	cfg, err := Load("production")
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.Origins)
	assert.Equal(t, "carol", cfg.Moderator)
	assert.Equal(t, []string{"QNN", "RRB"}, cfg.Ai.Pockets["shuuroMini"])
	// Untouched sections keep their defaults.
	assert.Equal(t, "shuuro", cfg.MongoDB.Database)
}

func TestLoadExpandsEnvVars(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("TEST_MONGO_URI", "mongodb://db.internal:27017")
	writeConfig(t, dir, "test", `{
		"mongodb": {"uri": "${TEST_MONGO_URI}", "database": "${TEST_MONGO_DB:-shuuro_test}"}
	}`)

	cfg, err := Load("test")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db.internal:27017", cfg.MongoDB.URI)
	assert.Equal(t, "shuuro_test", cfg.MongoDB.Database)
}

func TestLoadRejectsBrokenJSON(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)
	writeConfig(t, dir, "broken", `{"server": `)

	_, err := Load("broken")
	assert.Error(t, err)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("SHUURO_ENV", "")
	assert.Equal(t, "development", GetEnv())

	t.Setenv("SHUURO_ENV", "production")
	assert.Equal(t, "production", GetEnv())
}
