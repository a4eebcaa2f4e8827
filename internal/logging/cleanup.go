package logging

import (
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"gorm.io/gorm"
)

// StartCleanup runs a daily goroutine that deletes system_logs and domain_events older
// than retentionDays.
func StartCleanup(db *gorm.DB, retentionDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				Cleanup(db, time.Now().UTC().AddDate(0, 0, -retentionDays))
			case <-done:
				return
			}
		}
	}()
}

// Cleanup deletes log rows written before cutoff.
func Cleanup(db *gorm.DB, cutoff time.Time) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	if result.Error != nil {
		slog.Error("log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("log cleanup completed", "deleted", result.RowsAffected)
	}

	result = db.Where("created_at < ?", cutoff).Delete(&events.LogEntry{})
	if result.Error != nil {
		slog.Error("event log cleanup failed", "error", result.Error)
	} else if result.RowsAffected > 0 {
		slog.Info("event log cleanup completed", "deleted", result.RowsAffected)
	}
}
