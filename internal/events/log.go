package events

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LogEntry is the audit trail of every dispatched event and how its handlers fared.
type LogEntry struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"size:100;not null;index" json:"name"`
	Payload        datatypes.JSON `json:"payload"`
	Handlers       int            `gorm:"not null" json:"handlers"`
	FailedHandlers int            `gorm:"not null" json:"failed_handlers"`
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`
}

func (e *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (LogEntry) TableName() string {
	return "domain_events"
}
