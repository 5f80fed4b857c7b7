package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/tinytelemetry/ecotrack/internal/auth"
	"github.com/tinytelemetry/ecotrack/internal/backup"
	"github.com/tinytelemetry/ecotrack/internal/duckdb"
	"github.com/tinytelemetry/ecotrack/internal/firebase"
	"github.com/tinytelemetry/ecotrack/internal/prefs"
	"github.com/tinytelemetry/ecotrack/internal/socketrpc"
	"github.com/tinytelemetry/ecotrack/internal/tracker"
	"github.com/tinytelemetry/ecotrack/internal/web"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthInterval = time.Minute

// runServer starts the web app, the socket RPC server and background jobs,
// and blocks until SIGINT or SIGTERM.
func runServer(cfg appConfig) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, dir := range []string{filepath.Dir(cfg.DBPath), filepath.Dir(cfg.PrefsPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	store, err := duckdb.NewStore(cfg.DBPath,
		duckdb.WithQueryTimeout(cfg.QueryTimeout),
		duckdb.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to initialize DuckDB: %w", err)
	}
	defer store.Close()

	// Prune superseded survey history.
	retentionCleaner := duckdb.NewRetentionCleaner(store, duckdb.RetentionConfig{
		HistoryDays: cfg.HistoryRetentionDays,
		Logger:      logger,
	})
	if retentionCleaner != nil {
		defer retentionCleaner.Stop()
	}

	prefsDB, err := prefs.OpenBolt(cfg.PrefsPath)
	if err != nil {
		return fmt.Errorf("failed to open preferences: %w", err)
	}
	defer prefsDB.Close()

	var mirror firebase.Mirror = firebase.Noop{}
	firebaseEnabled := false
	backupOpts := []backup.Option{backup.WithLogger(logger)}
	fbCfg := firebase.Config{
		CredentialsFile: cfg.FirebaseCredentials,
		DatabaseURL:     cfg.FirebaseDatabaseURL,
		ProjectID:       cfg.FirebaseProjectID,
		StorageBucket:   cfg.FirebaseStorageBucket,
		BackupPrefix:    cfg.FirebaseBackupPrefix,
	}
	if fbCfg.Enabled() {
		fb, err := firebase.New(ctx, fbCfg, logger)
		if err != nil {
			// Local storage stays authoritative; run without the mirror.
			logger.Warn("firebase: disabled", zap.Error(err))
		} else {
			mirror = fb
			firebaseEnabled = true
			if fbCfg.StorageBucket != "" {
				backupOpts = append(backupOpts, backup.WithUploader(fb))
			}
		}
	}

	backupManager, err := backup.NewManager(store, backup.Config{
		Enabled:  cfg.BackupEnabled,
		Interval: cfg.BackupInterval,
		LocalDir: cfg.BackupLocalDir,
		KeepLast: cfg.BackupKeepLast,
	}, backupOpts...)
	if err != nil {
		return fmt.Errorf("failed to initialize backups: %w", err)
	}
	if backupManager != nil {
		defer backupManager.Stop()
	}

	svc := tracker.New(store, tracker.WithMirror(mirror), tracker.WithLogger(logger))

	secret := cfg.SessionSecret
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		logger.Warn("auth: no session-secret configured, sessions end on restart")
	}
	sessions, err := auth.NewSessions(secret, cfg.SessionTTL, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize sessions: %w", err)
	}

	webServer := web.NewServer(cfg.HTTPAddr, svc, sessions,
		web.WithPrefs(prefs.New(prefsDB, logger)),
		web.WithLogger(logger))
	if err := webServer.Start(); err != nil {
		return fmt.Errorf("failed to start web server: %w", err)
	}
	defer webServer.Stop()

	// Start socket RPC server for TUI IPC
	sockServer := socketrpc.NewServer(cfg.SocketPath, svc, logger)
	sockEnabled := true
	if err := sockServer.Start(); err != nil {
		logger.Warn("socketrpc: failed to start", zap.Error(err))
		sockEnabled = false
	} else {
		defer sockServer.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down gracefully... (press Ctrl+C again to force)")
		cancel()

		// Shutdown deadline starts now, not at boot.
		deadline := time.NewTimer(10 * time.Second)
		defer deadline.Stop()

		select {
		case <-sigCh:
			fmt.Println("\nForce shutdown.")
		case <-deadline.C:
			fmt.Println("Shutdown timed out, forcing exit.")
		}
		cleanupSocket(cfg.SocketPath)
		os.Exit(1)
	}()

	printStartupBanner(cfg, sockEnabled, firebaseEnabled)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := time.NewTicker(healthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := svc.Ping(gctx); err != nil && gctx.Err() == nil {
					logger.Warn("server: store health check failed", zap.Error(err))
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server: errgroup exited with error", zap.Error(err))
	}

	signal.Stop(sigCh)
	logger.Info("server: stopped")
	return nil
}

func cleanupSocket(path string) {
	if path != "" {
		os.Remove(path)
	}
}

func printStartupBanner(cfg appConfig, socketEnabled, firebaseEnabled bool) {
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	cyan := lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	bold := lipgloss.NewStyle().Bold(true)

	check := green.Render("●")
	dot := dim.Render("●")

	status := func(on bool, label, value string) string {
		if on {
			return fmt.Sprintf("    %s  %-14s %s", check, label, value)
		}
		return fmt.Sprintf("    %s  %-14s %s", dot, label, dim.Render("disabled"))
	}

	logo := green.Bold(true).Render(`
    ╔═╗┌─┐┌─┐╔╦╗┬─┐┌─┐┌─┐┬┌─
    ║╣ │  │ │ ║ ├┬┘├─┤│  ├┴┐
    ╚═╝└─┘└─┘ ╩ ┴└─┴ ┴└─┘┴ ┴`)

	separator := dim.Render("    ─────────────────────────────────")

	lines := []string{
		"",
		logo,
		"    " + dim.Render("v"+version),
		"",
		separator,
		"",
		bold.Render("    Gateway"),
		"",
		status(true, "Web App", cyan.Render("http://"+cfg.HTTPAddr)),
		status(socketEnabled, "Unix Socket", cyan.Render(shortenPath(cfg.SocketPath))),
		"",
		bold.Render("    Storage"),
		"",
		status(true, "Database", dim.Render(shortenPath(cfg.DBPath))),
		status(true, "Preferences", dim.Render(shortenPath(cfg.PrefsPath))),
		status(cfg.BackupEnabled, "Snapshots", dim.Render(shortenPath(cfg.BackupLocalDir))),
		status(cfg.HistoryRetentionDays >= 0, "History", dim.Render(fmt.Sprintf("%d days", retentionDays(cfg)))),
		status(firebaseEnabled, "Firebase", dim.Render(cfg.FirebaseProjectID)),
		"",
		bold.Render("    Config"),
		"",
	}
	if cfg.ConfigPath != "" {
		lines = append(lines, fmt.Sprintf("    %s  %-14s %s", check, "Config File", dim.Render(shortenPath(cfg.ConfigPath))))
	} else {
		lines = append(lines, fmt.Sprintf("    %s  %-14s %s", dot, "Config File", dim.Render("default (no file)")))
	}
	lines = append(lines,
		"",
		separator,
		"",
		"    "+dim.Render("Press ")+yellow.Render("Ctrl+C")+dim.Render(" to stop"),
		"",
	)

	fmt.Println(strings.Join(lines, "\n"))
}

func retentionDays(cfg appConfig) int {
	if cfg.HistoryRetentionDays == 0 {
		return duckdb.DefaultHistoryDays
	}
	return cfg.HistoryRetentionDays
}

func shortenPath(path string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if strings.HasPrefix(path, home) {
		return "~" + path[len(home):]
	}
	return path
}
