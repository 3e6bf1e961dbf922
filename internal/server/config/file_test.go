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

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	pathJSON := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":    "www.example:9000",
		"database_dsn":          "hr.db",
		"secret_key":            "my_secret_key",
		"token_issuer":          "issuer",
		"log_level":             "debug",
		"log_format":            "text",
		"db_max_open_conns":     7,
		"db_max_idle_conns":     3,
		"db_conn_max_lifetime":  "1m",
		"db_conn_max_idle_time": "30s",
		"db_query_timeout":      2000000000,
		"cors_allow_origin":     "https://hr.example",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseFile(cfg, []string{"-config", pathJSON}))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "hr.db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "issuer", cfg.TokenIssuer)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, 7, cfg.DBMaxOpenConns)
		assert.Equal(t, 3, cfg.DBMaxIdleConns)
		assert.Equal(t, time.Minute, cfg.DBConnMaxLifetime)
		assert.Equal(t, 30*time.Second, cfg.DBConnMaxIdleTime)
		assert.Equal(t, 2*time.Second, cfg.DBQueryTimeout)
		assert.Equal(t, "https://hr.example", cfg.CORSAllowOrigin)
	})

	t.Run("loads from yaml", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.yml")
		require.NoError(t, os.WriteFile(path, []byte("endpoint_addr_http: \":7070\"\ndb_query_timeout: 3s\n"), 0o600))

		cfg := &Config{SecretKey: "keep"}
		require.NoError(t, parseFile(cfg, []string{"-c", path}))

		assert.Equal(t, ":7070", cfg.EndpointAddrHTTP)
		assert.Equal(t, 3*time.Second, cfg.DBQueryTimeout)
		assert.Equal(t, "keep", cfg.SecretKey)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{EndpointAddrHTTP: "defaults:1234", SecretKey: "key"}
		require.NoError(t, parseFile(cfg, []string{"-a", ":1"}))

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseFile(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		require.Error(t, parseFile(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}
