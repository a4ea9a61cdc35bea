package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCAddr)
	assert.Empty(t, c.DatabaseDSN)
	assert.Empty(t, c.SecretKey)
	require.NoError(t, c.Validate())
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, parseFlags(cfg, []string{"-a", ":9000", "-g", "", "-d", "postgres://x", "-s", "k", "-c", "ignored.json"}))
	assert.Empty(t, cmp.Diff(&Config{HTTPAddr: ":9000", DatabaseDSN: "postgres://x", SecretKey: "k"}, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.json")
	b, err := json.Marshal(map[string]any{"http_addr": ":7000", "database_dsn": "json-dsn", "log_level": "debug"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))

	t.Setenv("OFFLINEFEED_SERVER_DATABASE_DSN", "env-dsn")
	t.Setenv("OFFLINEFEED_SERVER_SECRET_KEY", "env-secret")

	cfg, err := Load([]string{"-config", path, "-s", "flag-secret"})
	require.NoError(t, err)

	want := &Config{}
	want.LoadDefaults()
	want.HTTPAddr = ":7000"
	want.DatabaseDSN = "env-dsn"
	want.SecretKey = "flag-secret"
	want.LogLevel = "debug"
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("OFFLINEFEED_SERVER_LOG_BACKEND", "logrus")
	_, err := Load(nil)
	require.Error(t, err)

	_, err = Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")})
	require.ErrorContains(t, err, "config file")
}
