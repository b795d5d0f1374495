package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_FILE", path)
}

func TestLoadConfig(t *testing.T) {
	writeConfig(t, `
server:
  port: 9090
mongo:
  database: lms_test
jwt:
  secret: from-file
analytics:
  cache_ttl: 5m
`)
	t.Setenv("LMS_JWT_SECRET", "from-env")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "lms_test", cfg.Mongo.Database)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 5*time.Minute, cfg.Analytics.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.Mongo.QueryTimeout)
	assert.Equal(t, time.Minute, cfg.Activity.Throttle)
	assert.Equal(t, 90, cfg.Audit.RetentionDays)
}

func TestLoadConfig_RequiresSecret(t *testing.T) {
	writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("LMS_JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt secret")
}

func TestPostgresDSN(t *testing.T) {
	c := PostgresConfig{Host: "db", Port: 5432, User: "lms", Password: "pw", Name: "audit", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=lms password=pw dbname=audit sslmode=disable", c.DSN())
}
