package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/tinytelemetry/ecotrack/internal/socketrpc"
	"github.com/tinytelemetry/ecotrack/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

var _ tui.Source = (*socketrpc.Client)(nil)

func main() {
	var configPath string
	var socketPath string
	var email string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/ecotrack/config.yml)")
	flag.StringVar(&socketPath, "socket", "", "override socket path to connect to the ecotrack service")
	flag.StringVar(&email, "email", "", "email of the account to show")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("EcoTrack CLI - Dashboard Client\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if socketPath != "" {
		cfg.SocketPath = socketPath
	}
	if email != "" {
		cfg.Email = email
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	if strings.TrimSpace(cfg.Email) == "" {
		return errors.New("an account email is required: pass -email or set ECOTRACK_EMAIL")
	}

	client, err := socketrpc.Dial(cfg.SocketPath)
	if err != nil {
		return fmt.Errorf("cannot connect to ecotrack service at %s: %w\nIs the ecotrack service running? Start it with: ecotrack", cfg.SocketPath, err)
	}
	defer client.Close()

	// Make sure the account exists before taking over the terminal.
	if _, err := client.Summary(cfg.Email); err != nil {
		return fmt.Errorf("loading account %s: %w", cfg.Email, err)
	}

	dashboard := tui.NewDashboardPage(client, cfg.Email, tui.WithRefreshInterval(cfg.RefreshInterval))
	app := tui.NewApp(dashboard)
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
