package model

import "time"

// Shared defaults used by both the server and TUI binaries.
const (
	DefaultRefreshInterval = 5 * time.Second
	DefaultSocketName      = "ecotrack.sock"
	DefaultSessionTTL      = 7 * 24 * time.Hour
)
