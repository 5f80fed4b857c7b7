package duckdb

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// DefaultHistoryDays is how long superseded surveys are kept.
const DefaultHistoryDays = 365

const retentionInterval = time.Hour

// RetentionConfig holds configuration for the retention cleaner.
type RetentionConfig struct {
	HistoryDays int
	Clock       clockwork.Clock
	Logger      *zap.Logger
}

// RetentionCleaner periodically prunes survey history. The latest survey of
// each user and category is always kept, so dashboards never change.
type RetentionCleaner struct {
	store    *Store
	days     int
	clock    clockwork.Clock
	log      *zap.Logger
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewRetentionCleaner starts a cleaner. It returns nil when HistoryDays is
// negative (disabled); zero means DefaultHistoryDays.
func NewRetentionCleaner(store *Store, conf RetentionConfig) *RetentionCleaner {
	days := conf.HistoryDays
	if days == 0 {
		days = DefaultHistoryDays
	}
	if days < 0 {
		return nil
	}
	if conf.Clock == nil {
		conf.Clock = clockwork.NewRealClock()
	}
	if conf.Logger == nil {
		conf.Logger = zap.NewNop()
	}

	rc := &RetentionCleaner{
		store: store,
		days:  days,
		clock: conf.Clock,
		log:   conf.Logger,
		done:  make(chan struct{}),
	}

	// Catch up after downtime.
	rc.cleanup()

	rc.wg.Add(1)
	go rc.tickLoop()
	return rc
}

func (rc *RetentionCleaner) tickLoop() {
	defer rc.wg.Done()
	ticker := rc.clock.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			rc.cleanup()
		case <-rc.done:
			return
		}
	}
}

func (rc *RetentionCleaner) cleanup() {
	cutoff := rc.clock.Now().Add(-time.Duration(rc.days) * 24 * time.Hour)

	rows, err := rc.store.DeleteSupersededSurveys(context.Background(), cutoff)
	if err != nil {
		rc.log.Error("duckdb: retention cleanup failed", zap.Error(err))
		return
	}
	if rows > 0 {
		rc.log.Info("duckdb: retention cleanup deleted superseded surveys",
			zap.Int64("rows", rows), zap.Int("days", rc.days))
	}
}

// Stop signals the cleaner to stop and waits for it to finish.
func (rc *RetentionCleaner) Stop() {
	rc.stopOnce.Do(func() {
		close(rc.done)
		rc.wg.Wait()
	})
}
