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

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("loads every key", func(t *testing.T) {
		path := writeTempJSON(t, dir, "full.json", map[string]any{
			"endpoint_addr_grpc":              "www.example:9000",
			"database_dsn":                    "postgres://db",
			"secret_key":                      "my_secret_key",
			"algorithm":                       "HS384",
			"access_token_validity_duration":  "20m",
			"refresh_token_validity_duration": "360h",
			"renew_before_expiration":         "48h",
			"logout_scope":                    "token",
			"store_backend":                   "redis",
			"store_timeout":                   int64(2 * time.Second),
			"redis_addr":                      "cache:6379",
			"redis_password":                  "pw",
			"redis_db":                        3,
			"log_backend":                     "zerolog",
			"log_level":                       "warn",
			"log_format":                      "text",
			"log_file":                        "/tmp/commoni.log",
		})

		cfg := &Config{}
		require.NoError(t, LoadFile(cfg, path))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "HS384", cfg.Algorithm)
		assert.Equal(t, 20*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 15*24*time.Hour, cfg.RefreshTokenValidityDuration)
		assert.Equal(t, 48*time.Hour, cfg.RenewBeforeExpiration)
		assert.Equal(t, "token", cfg.LogoutScope)
		assert.Equal(t, "redis", cfg.StoreBackend)
		assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
		assert.Equal(t, "cache:6379", cfg.RedisAddr)
		assert.Equal(t, "pw", cfg.RedisPassword)
		assert.Equal(t, 3, cfg.RedisDB)
		assert.Equal(t, "zerolog", cfg.LogBackend)
		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "/tmp/commoni.log", cfg.LogFile)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		path := writeTempJSON(t, dir, "partial.json", map[string]any{"secret_key": "k2"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, LoadFile(cfg, path))

		assert.Equal(t, "k2", cfg.SecretKey)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 20*time.Minute, cfg.AccessTokenValidityDuration)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.ErrorContains(t, LoadFile(&Config{}, bad), "parse config file")
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeTempJSON(t, dir, "dur.json", map[string]any{"store_timeout": "soon"})
		require.Error(t, LoadFile(&Config{}, path))
	})
}
