// Package firebase mirrors survey results to a Firebase Realtime Database
// and uploads backups to Cloud Storage for Firebase.
package firebase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/tinytelemetry/ecotrack/internal/footprint"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Config selects the Firebase project resources.
type Config struct {
	CredentialsFile string
	DatabaseURL     string
	ProjectID       string
	StorageBucket   string
	BackupPrefix    string
}

// Enabled reports whether a credentials file was configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.CredentialsFile) != ""
}

// Mirror receives survey results after they are stored locally.
type Mirror interface {
	MirrorSurvey(ctx context.Context, userID string, c footprint.Category, answers footprint.Answers, value float64) error
	MirrorTotal(ctx context.Context, userID string, total float64) error
}

// Noop is a Mirror that does nothing.
type Noop struct{}

func (Noop) MirrorSurvey(context.Context, string, footprint.Category, footprint.Answers, float64) error {
	return nil
}

func (Noop) MirrorTotal(context.Context, string, float64) error { return nil }

// SurveyPath is where a category result is written:
// surveys/<category>/<userID>.
func SurveyPath(userID string, c footprint.Category) string {
	return path.Join("surveys", string(c), userID)
}

// TotalPath is where the running total is written:
// surveys/<userID>/total_footprint.
func TotalPath(userID string) string {
	return path.Join("surveys", userID, "total_footprint")
}

// SurveyDocument is the value stored at SurveyPath: the answers plus the
// annualEmissions field read by mobile clients.
func SurveyDocument(answers footprint.Answers, value float64) map[string]any {
	doc := make(map[string]any, len(answers)+1)
	for k, v := range answers {
		doc[k] = v
	}
	doc["annualEmissions"] = value
	return doc
}

// Client talks to one Firebase project.
type Client struct {
	app *firebase.App
	db  *db.Client
	cfg Config
	log *zap.Logger
}

// New initialises the Firebase app from a service-account credentials file.
func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("firebase: credentials file is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("firebase: initialising", zap.String("credentials", cfg.CredentialsFile))
	app, err := firebase.NewApp(ctx, &firebase.Config{
		ProjectID:     cfg.ProjectID,
		DatabaseURL:   cfg.DatabaseURL,
		StorageBucket: cfg.StorageBucket,
	}, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}

	c := &Client{app: app, cfg: cfg, log: log}
	if cfg.DatabaseURL != "" {
		c.db, err = app.Database(ctx)
		if err != nil {
			return nil, fmt.Errorf("firebase: init database: %w", err)
		}
	}
	return c, nil
}

// MirrorSurvey writes a category result.
func (c *Client) MirrorSurvey(ctx context.Context, userID string, cat footprint.Category, answers footprint.Answers, value float64) error {
	if c.db == nil {
		return nil
	}
	if err := c.db.NewRef(SurveyPath(userID, cat)).Set(ctx, SurveyDocument(answers, value)); err != nil {
		return fmt.Errorf("firebase: mirror survey: %w", err)
	}
	return nil
}

// MirrorTotal writes the running total.
func (c *Client) MirrorTotal(ctx context.Context, userID string, total float64) error {
	if c.db == nil {
		return nil
	}
	if err := c.db.NewRef(TotalPath(userID)).Set(ctx, total); err != nil {
		return fmt.Errorf("firebase: mirror total: %w", err)
	}
	return nil
}

// ObjectName is the storage object a backup file is uploaded to.
func (c *Client) ObjectName(localPath string) string {
	return path.Join(c.cfg.BackupPrefix, filepath.Base(localPath))
}

// UploadFile copies a backup file into the configured storage bucket.
func (c *Client) UploadFile(ctx context.Context, localPath string) error {
	if c.cfg.StorageBucket == "" {
		return fmt.Errorf("firebase: storage bucket is not configured")
	}
	client, err := c.app.Storage(ctx)
	if err != nil {
		return fmt.Errorf("firebase: init storage: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return fmt.Errorf("firebase: bucket: %w", err)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bucket.Object(c.ObjectName(localPath)).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return fmt.Errorf("firebase: upload %s: %w", filepath.Base(localPath), err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("firebase: finish upload %s: %w", filepath.Base(localPath), err)
	}
	return nil
}
