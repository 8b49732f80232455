package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 3000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 5*time.Second, cfg.Auth.Session.StoreTimeout)
	require.Equal(t, "podel_session", cfg.Auth.Session.CookieName)
	require.Equal(t, 4, cfg.Auth.Local.HashWorkers)
	require.Equal(t, "en-US", cfg.Site.DefaultLanguage)
	require.True(t, cfg.Monitoring.Prometheus.Enabled)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	contents := []byte(`
server:
  port: 8080
  log_level: debug
database:
  driver: postgres
  host: db.internal
  name: podel
  user: podel
auth:
  session:
    store_timeout: 750ms
    cookie_name: review_session
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), contents, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, 750*time.Millisecond, cfg.Auth.Session.StoreTimeout)
	require.Equal(t, "review_session", cfg.Auth.Session.CookieName)
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server:\n  port: -1\n"), 0o600))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}

func TestLoadConfigRejectsBlankCookieName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("auth:\n  session:\n    cookie_name: \" \"\n"), 0o600))

	_, err := LoadConfig(dir)
	require.Error(t, err)
}
