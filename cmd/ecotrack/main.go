package main

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tinytelemetry/ecotrack/internal/socketrpc"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var showVersion bool
	var printConfig bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/ecotrack/config.yml)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.BoolVar(&printConfig, "print-config", false, "print the resolved configuration as YAML and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("EcoTrack - Carbon Footprint Tracker\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if printConfig {
		out, err := renderConfig(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(out)
		return
	}

	if err := runServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	dataDir := filepath.Join(home, ".local", "share", "ecotrack")

	v := viper.New()
	v.SetEnvPrefix("ECOTRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("host", defaultBindHost)
	v.SetDefault("http-port", defaultHTTPPort)
	v.SetDefault("http-addr", "")
	v.SetDefault("db-path", filepath.Join(dataDir, "ecotrack.duckdb"))
	v.SetDefault("prefs-path", filepath.Join(dataDir, "prefs.db"))
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())
	v.SetDefault("session-secret", "")
	v.SetDefault("session-ttl", defaultSessionTTL)
	v.SetDefault("query-timeout", defaultQueryTimeout)
	v.SetDefault("backup-enabled", false)
	v.SetDefault("backup-interval", defaultBackupInterval)
	v.SetDefault("backup-local-dir", filepath.Join(dataDir, "backups"))
	v.SetDefault("backup-keep-last", defaultBackupKeepLast)
	v.SetDefault("history-retention-days", defaultHistoryRetention)
	v.SetDefault("firebase-credentials", "")
	v.SetDefault("firebase-database-url", "")
	v.SetDefault("firebase-project-id", "")
	v.SetDefault("firebase-storage-bucket", "")
	v.SetDefault("firebase-backup-prefix", defaultFirebaseBackupDir)
	v.SetDefault("log-level", defaultLogLevel)
	v.SetDefault("log-file", filepath.Join(home, ".local", "state", "ecotrack", "ecotrack.log"))

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "ecotrack", "config.yml"))
	}

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
		fileFound = false
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	if fileFound {
		cfg.ConfigPath = v.ConfigFileUsed()
	}
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return cfg, fmt.Errorf("invalid http-port: %d", cfg.HTTPPort)
	}
	if cfg.SessionTTL <= 0 {
		return cfg, fmt.Errorf("invalid session-ttl: %s", cfg.SessionTTL)
	}

	// Expand ~ in paths
	for _, p := range []*string{&cfg.DBPath, &cfg.PrefsPath, &cfg.BackupLocalDir, &cfg.FirebaseCredentials, &cfg.LogFile} {
		if strings.HasPrefix(*p, "~/") {
			*p = filepath.Join(home, (*p)[2:])
		}
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.HTTPPort))
	}

	return cfg, nil
}

// renderConfig returns cfg as YAML with secrets masked.
func renderConfig(cfg appConfig) (string, error) {
	if cfg.SessionSecret != "" {
		cfg.SessionSecret = "<redacted>"
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(out), nil
}
