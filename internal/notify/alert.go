// Package notify emits transient, dismissible status alerts.
package notify

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// AutoDismissDelay is how long an alert stays attached before it removes itself.
const AutoDismissDelay = 5000 * time.Millisecond

// Kind classifies alert presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

var (
	// ErrNoContainer is returned when the surface has no alert container.
	ErrNoContainer = errors.New("notify: alert container not found")
	// ErrUnknownKind is returned for kinds outside success/error/info.
	ErrUnknownKind = errors.New("notify: unknown alert kind")
)

// ParseKind normalizes a kind name. "danger" is accepted as an alias for error.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "success":
		return KindSuccess, nil
	case "error", "danger":
		return KindError, nil
	case "info":
		return KindInfo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
}

// CSSClass returns the contextual class suffix used by the page markup.
func (k Kind) CSSClass() string {
	if k == KindError {
		return "danger"
	}
	return string(k)
}

// Alert is one ephemeral message.
type Alert struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}
