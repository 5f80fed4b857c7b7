package main

import (
	"time"

	"github.com/tinytelemetry/ecotrack/internal/duckdb"
	"github.com/tinytelemetry/ecotrack/internal/model"
)

const (
	defaultBindHost          = "0.0.0.0"
	defaultHTTPPort          = 3000
	defaultQueryTimeout      = 30 * time.Second
	defaultSessionTTL        = model.DefaultSessionTTL
	defaultBackupInterval    = 6 * time.Hour
	defaultBackupKeepLast    = 24
	defaultHistoryRetention  = duckdb.DefaultHistoryDays // days, -1 = disabled
	defaultFirebaseBackupDir = "backups"
	defaultLogLevel          = "info"
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Host                  string        `mapstructure:"host" yaml:"host"`
	HTTPPort              int           `mapstructure:"http-port" yaml:"http-port"`
	HTTPAddr              string        `mapstructure:"http-addr" yaml:"http-addr"`
	DBPath                string        `mapstructure:"db-path" yaml:"db-path"`
	PrefsPath             string        `mapstructure:"prefs-path" yaml:"prefs-path"`
	SocketPath            string        `mapstructure:"socket-path" yaml:"socket-path"`
	SessionSecret         string        `mapstructure:"session-secret" yaml:"session-secret"`
	SessionTTL            time.Duration `mapstructure:"session-ttl" yaml:"session-ttl"`
	QueryTimeout          time.Duration `mapstructure:"query-timeout" yaml:"query-timeout"`
	BackupEnabled         bool          `mapstructure:"backup-enabled" yaml:"backup-enabled"`
	BackupInterval        time.Duration `mapstructure:"backup-interval" yaml:"backup-interval"`
	BackupLocalDir        string        `mapstructure:"backup-local-dir" yaml:"backup-local-dir"`
	BackupKeepLast        int           `mapstructure:"backup-keep-last" yaml:"backup-keep-last"`
	HistoryRetentionDays  int           `mapstructure:"history-retention-days" yaml:"history-retention-days"`
	FirebaseCredentials   string        `mapstructure:"firebase-credentials" yaml:"firebase-credentials"`
	FirebaseDatabaseURL   string        `mapstructure:"firebase-database-url" yaml:"firebase-database-url"`
	FirebaseProjectID     string        `mapstructure:"firebase-project-id" yaml:"firebase-project-id"`
	FirebaseStorageBucket string        `mapstructure:"firebase-storage-bucket" yaml:"firebase-storage-bucket"`
	FirebaseBackupPrefix  string        `mapstructure:"firebase-backup-prefix" yaml:"firebase-backup-prefix"`
	LogLevel              string        `mapstructure:"log-level" yaml:"log-level"`
	LogFile               string        `mapstructure:"log-file" yaml:"log-file"`
	ConfigPath            string        `mapstructure:"-" yaml:"-"` // not from config file
}
