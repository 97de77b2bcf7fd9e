package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("WWI_DATABASE__DRIVER", "memory")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, int64(32768), cfg.Server.ReadLimit)
	assert.Equal(t, 54*time.Second, cfg.Server.PingPeriod)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Database.PoolSize)
	assert.Equal(t, 10*time.Minute, cfg.Tokens.TTL)
	assert.Equal(t, 5*time.Minute, cfg.Tokens.SweepInterval, "defaults to half the ttl")
	assert.Equal(t, 10, cfg.JoinLimit.Attempts)
	assert.Equal(t, time.Minute, cfg.JoinLimit.Interval)
	assert.Empty(t, cfg.Server.TrustedProxies)
}

func TestLoadFile_YAMLAndEnvOverride(t *testing.T) {
	path := writeYAML(t, `
app:
  mode: debug
server:
  port: 9100
  allowed_origins: ["https://a.example", "https://b.example"]
  trusted_proxies: ["10.0.0.0/8"]
database:
  driver: postgres
  url: postgres://file/db
  pool_size: 3
tokens:
  ttl: 2m
  sweep_interval: 30s
`)
	t.Setenv("WWI_DATABASE__URL", "postgres://env/db")
	t.Setenv("WWI_SERVER__PORT", "9200")

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.App.Mode)
	assert.Equal(t, 9200, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.Server.TrustedProxies)
	assert.Equal(t, "postgres://env/db", cfg.Database.URL)
	assert.Equal(t, 3, cfg.Database.PoolSize)
	assert.Equal(t, 2*time.Minute, cfg.Tokens.TTL)
	assert.Equal(t, 30*time.Second, cfg.Tokens.SweepInterval)
}

func TestLoadFile_PostgresRequiresURL(t *testing.T) {
	path := writeYAML(t, "database:\n  driver: postgres\n")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.url")
}

func TestLoadFile_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown driver": "database:\n  driver: mongo\n",
		"zero ttl":       "database:\n  driver: memory\ntokens:\n  ttl: 0s\n",
		"zero pool":      "database:\n  driver: memory\n  pool_size: 0\n",
		"bad port":       "database:\n  driver: memory\nserver:\n  port: 70000\n",
		"zero attempts":  "database:\n  driver: memory\njoin_limit:\n  attempts: 0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFile(writeYAML(t, body))
			assert.Error(t, err)
		})
	}
}
