package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv("GOPHAUTH_CONFIG", "")

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":     "www.example:9000",
		"store_backend":          "memory",
		"database_dsn":           "postgres://db",
		"run_migrations":         false,
		"password_pepper":        "pepper",
		"digest_algorithm":       "argon2id",
		"session_idle_ttl":       "30m",
		"session_sweep_interval": "10s",
		"s3_bucket":              "bucket",
		"s3_public_base_url":     "https://cdn.example",
		"avatar_max_bytes":       2048,
		"oauth_client_id":        "cid",
		"oauth_token_url":        "https://idp/token",
		"oauth_userinfo_url":     "https://idp/userinfo",
		"oauth_scopes":           []string{"a", "b"},
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, StoreMemory, cfg.StoreBackend)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.False(t, cfg.RunMigrations)
		assert.Equal(t, "pepper", cfg.PasswordPepper)
		assert.Equal(t, "argon2id", cfg.DigestAlgorithm)
		assert.Equal(t, 30*time.Minute, cfg.SessionIdleTTL)
		assert.Equal(t, 10*time.Second, cfg.SessionSweepInterval)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, "us-east-1", cfg.S3Region, "absent keys keep defaults")
		assert.Equal(t, int64(2048), cfg.AvatarMaxBytes)
		assert.Equal(t, []string{"a", "b"}, cfg.OAuthScopes)
		assert.True(t, cfg.OAuthEnabled())
	})

	t.Run("env names the file", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("GOPHAUTH_CONFIG", pathFlag)

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
	})

	t.Run("no file -> no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", SessionIdleTTL: time.Hour}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, time.Hour, cfg.SessionIdleTTL)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
