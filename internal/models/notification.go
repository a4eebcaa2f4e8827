package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationType string

const (
	NotifyReportApproved NotificationType = "REPORT_APPROVED"
	NotifyReportRejected NotificationType = "REPORT_REJECTED"
	NotifyPenaltyCreated NotificationType = "PENALTY_CREATED"
	NotifyPenaltyExpired NotificationType = "PENALTY_EXPIRED"
	NotifyLevelUp        NotificationType = "LEVEL_UP"
)

// Notification is a rendered, user-visible message produced from a domain event.
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	RecipientID uuid.UUID        `gorm:"type:uuid;not null;index:idx_notifications_recipient,priority:1" json:"recipient_id"`
	Type        NotificationType `gorm:"size:40;not null" json:"type"`
	Message     string           `gorm:"size:500;not null" json:"message"`
	Data        datatypes.JSON   `json:"data"`
	IsRead      bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index:idx_notifications_recipient,priority:2" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
