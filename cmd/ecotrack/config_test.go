package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:3000", cfg.HTTPAddr)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ecotrack", "ecotrack.duckdb"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, ".local", "share", "ecotrack", "prefs.db"), cfg.PrefsPath)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 365, cfg.HistoryRetentionDays)
	assert.Equal(t, "backups", cfg.FirebaseBackupPrefix)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.BackupEnabled)
	assert.Empty(t, cfg.ConfigPath)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ECOTRACK_HTTP_PORT", "8081")

	path := writeConfig(t, `
host: 127.0.0.1
http-port: 9000
db-path: ~/data/eco.duckdb
session-ttl: 2h
history-retention-days: -1
firebase-credentials: ~/keys/service-account.json
firebase-project-id: ecotrack-dev
`)

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, 8081, cfg.HTTPPort, "env overrides file")
	assert.Equal(t, "127.0.0.1:8081", cfg.HTTPAddr)
	assert.Equal(t, filepath.Join(home, "data", "eco.duckdb"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, "keys", "service-account.json"), cfg.FirebaseCredentials)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, -1, cfg.HistoryRetentionDays)
	assert.Equal(t, "ecotrack-dev", cfg.FirebaseProjectID)
}

func TestLoadConfigRejectsInvalidPort(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := loadConfig(writeConfig(t, "http-port: 70000\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid http-port")
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := loadConfig(writeConfig(t, "http-port: [\n"))
	require.Error(t, err)
}

func TestRenderConfigRedactsSecret(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("ECOTRACK_SESSION_SECRET", "hunter2")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, "hunter2", cfg.SessionSecret)

	out, err := renderConfig(cfg)
	require.NoError(t, err)
	assert.NotContains(t, out, "hunter2")

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "<redacted>", decoded["session-secret"])
	assert.Equal(t, 3000, decoded["http-port"])
	assert.NotContains(t, decoded, "configpath")
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := newLogger(appConfig{LogLevel: "chatty"})
	require.Error(t, err)

	logger, err := newLogger(appConfig{LogLevel: "debug", LogFile: filepath.Join(t.TempDir(), "logs", "ecotrack.log")})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))
}
