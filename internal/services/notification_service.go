package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationService renders domain events into per-user notification rows. Delivery
// (push, email, in-app feed) reads those rows and is not part of this service.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

func reasonText(r models.ReportReason) string {
	return strings.ToLower(strings.ReplaceAll(string(r), "_", " "))
}

func penaltyText(t models.PenaltyType) string {
	switch t {
	case models.PenaltyPostBan24h:
		return "posting is suspended for 24 hours"
	case models.PenaltyPostBan7d:
		return "posting is suspended for 7 days"
	case models.PenaltyPostBanPermanent:
		return "posting is permanently suspended"
	case models.PenaltyCommentBan24h:
		return "commenting is suspended for 24 hours"
	case models.PenaltyCommentBan7d:
		return "commenting is suspended for 7 days"
	case models.PenaltyCommentBanPermanent:
		return "commenting is permanently suspended"
	case models.PenaltyFullBan:
		return "your account is suspended"
	}
	return "a restriction was applied to your account"
}

// render turns an event into recipient, type and message. ok is false for events that
// notify nobody.
func render(ev events.Event) (recipient uuid.UUID, typ models.NotificationType, message string, ok bool) {
	switch e := ev.(type) {
	case models.ReportApprovedEvent:
		return e.ReporterID, models.NotifyReportApproved,
			fmt.Sprintf("Thanks for your report. We reviewed it and took action (%s).", reasonText(e.Reason)), true
	case models.ReportRejectedEvent:
		return e.ReporterID, models.NotifyReportRejected,
			fmt.Sprintf("We reviewed your report (%s) and found no violation.", reasonText(e.Reason)), true
	case models.PenaltyCreatedEvent:
		msg := "Restriction applied: " + penaltyText(e.Type) + "."
		if e.EndsAt != nil {
			msg += " It ends at " + e.EndsAt.UTC().Format("2006-01-02 15:04 UTC") + "."
		}
		return e.UserID, models.NotifyPenaltyCreated, msg, true
	case models.PenaltyExpiredEvent:
		return e.UserID, models.NotifyPenaltyExpired, "Your restriction has ended.", true
	case models.LevelUpEvent:
		level := models.LevelInfo(e.NewLevel)
		return e.UserID, models.NotifyLevelUp,
			fmt.Sprintf("You reached level %d (%s)!", level.Level, level.Name), true
	}
	return uuid.Nil, "", "", false
}

// Notify persists one notification for ev.
func (s *NotificationService) Notify(ctx context.Context, tx *events.Tx, ev events.Event) error {
	recipient, typ, message, ok := render(ev)
	if !ok {
		return nil
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode notification data: %w", err)
	}
	n := models.Notification{
		RecipientID: recipient,
		Type:        typ,
		Message:     message,
		Data:        datatypes.JSON(data),
	}
	if err := tx.Create(&n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit, offset int) ([]models.Notification, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flags one of the user's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	result := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
