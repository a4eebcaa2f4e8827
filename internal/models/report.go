package models

import (
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "PENDING"
	ReportInReview ReportStatus = "IN_REVIEW"
	ReportApproved ReportStatus = "APPROVED"
	ReportRejected ReportStatus = "REJECTED"
)

// reportTransitions lists every legal status change. Anything absent is refused.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportPending:  {ReportInReview, ReportApproved, ReportRejected},
	ReportInReview: {ReportApproved, ReportRejected},
}

// OpenReportStatuses block a second report by the same reporter on the same target.
var OpenReportStatuses = []ReportStatus{ReportPending, ReportInReview, ReportApproved}

func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range reportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ReportStatus) IsTerminal() bool {
	return len(reportTransitions[s]) == 0
}

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportInReview, ReportApproved, ReportRejected:
		return true
	}
	return false
}

type TargetType string

const (
	TargetPost    TargetType = "POST"
	TargetComment TargetType = "COMMENT"
	TargetChat    TargetType = "CHAT"
	TargetUser    TargetType = "USER"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetPost, TargetComment, TargetChat, TargetUser:
		return true
	}
	return false
}

type ReportReason string

const (
	ReasonSpam                 ReportReason = "SPAM"
	ReasonAdvertisement        ReportReason = "ADVERTISEMENT"
	ReasonOffTopic             ReportReason = "OFF_TOPIC"
	ReasonInappropriateContent ReportReason = "INAPPROPRIATE_CONTENT"
	ReasonAbusiveLanguage      ReportReason = "ABUSIVE_LANGUAGE"
	ReasonHarassment           ReportReason = "HARASSMENT"
	ReasonPrivacyViolation     ReportReason = "PRIVACY_VIOLATION"
	ReasonHateSpeech           ReportReason = "HATE_SPEECH"
	ReasonSexualContent        ReportReason = "SEXUAL_CONTENT"
	ReasonIllegalContent       ReportReason = "ILLEGAL_CONTENT"
	ReasonOther                ReportReason = "OTHER"
)

// reasonSeverity is the fixed 0-100 severity of each reason.
var reasonSeverity = map[ReportReason]int{
	ReasonSpam:                 10,
	ReasonAdvertisement:        20,
	ReasonOffTopic:             10,
	ReasonInappropriateContent: 40,
	ReasonAbusiveLanguage:      50,
	ReasonHarassment:           60,
	ReasonPrivacyViolation:     70,
	ReasonHateSpeech:           80,
	ReasonSexualContent:        90,
	ReasonIllegalContent:       100,
	ReasonOther:                0,
}

func (r ReportReason) Valid() bool {
	_, ok := reasonSeverity[r]
	return ok
}

func (r ReportReason) Severity() int {
	return reasonSeverity[r]
}

// Report is a user's complaint about a post, comment, chat message or user, and the
// reviewer's decision on it.
type Report struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID     uuid.UUID    `gorm:"type:uuid;not null;index:idx_reports_reporter_target,priority:1" json:"reporter_id"`
	ReportedUserID uuid.UUID    `gorm:"type:uuid;not null;index:idx_reports_reported_status,priority:1" json:"reported_user_id"`
	TargetType     TargetType   `gorm:"size:20;not null;index:idx_reports_reporter_target,priority:2" json:"target_type"`
	TargetID       string       `gorm:"size:64;not null;index:idx_reports_reporter_target,priority:3" json:"target_id"`
	Reason         ReportReason `gorm:"size:40;not null" json:"reason"`
	Description    string       `gorm:"size:1000" json:"description,omitempty"`
	Status         ReportStatus `gorm:"size:20;not null;index:idx_reports_reported_status,priority:2" json:"status"`
	ReviewerID     *uuid.UUID   `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewComment  string       `gorm:"size:1000" json:"review_comment,omitempty"`
	ActionTaken    string       `gorm:"size:500" json:"action_taken,omitempty"`
	ReviewedAt     *time.Time   `gorm:"index:idx_reports_reported_status,priority:3" json:"reviewed_at,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`

	events.Recorder `gorm:"-" json:"-"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// NewReport builds a PENDING report and records its submission.
func NewReport(reporterID, reportedUserID uuid.UUID, targetType TargetType, targetID string, reason ReportReason, description string) *Report {
	r := &Report{
		ID:             uuid.New(),
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		TargetType:     targetType,
		TargetID:       targetID,
		Reason:         reason,
		Description:    description,
		Status:         ReportPending,
	}
	r.Record(ReportSubmitted{
		ReportID:       r.ID,
		ReporterID:     reporterID,
		ReportedUserID: reportedUserID,
		TargetType:     targetType,
		TargetID:       targetID,
		Reason:         reason,
		Severity:       reason.Severity(),
	})
	return r
}

func (r *Report) transitionTo(next ReportStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidReportState, r.Status, next)
	}
	r.Status = next
	return nil
}

// StartReview claims a pending report for review.
func (r *Report) StartReview(reviewerID uuid.UUID) error {
	if err := r.transitionTo(ReportInReview); err != nil {
		return err
	}
	r.ReviewerID = &reviewerID
	return nil
}

// Approve upholds the report. Exactly one ReportApproved event is recorded.
func (r *Report) Approve(reviewerID uuid.UUID, comment, actionTaken string, now time.Time) error {
	if err := r.transitionTo(ReportApproved); err != nil {
		return err
	}
	r.decide(reviewerID, comment, now)
	r.ActionTaken = actionTaken
	r.Record(ReportApprovedEvent{
		ReportID:       r.ID,
		ReporterID:     r.ReporterID,
		ReportedUserID: r.ReportedUserID,
		ReviewerID:     reviewerID,
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		Reason:         r.Reason,
		Severity:       r.Reason.Severity(),
		ActionTaken:    actionTaken,
		ReviewedAt:     now,
	})
	return nil
}

// Reject dismisses the report. Exactly one ReportRejected event is recorded.
func (r *Report) Reject(reviewerID uuid.UUID, comment string, now time.Time) error {
	if err := r.transitionTo(ReportRejected); err != nil {
		return err
	}
	r.decide(reviewerID, comment, now)
	r.Record(ReportRejectedEvent{
		ReportID:       r.ID,
		ReporterID:     r.ReporterID,
		ReportedUserID: r.ReportedUserID,
		ReviewerID:     reviewerID,
		TargetType:     r.TargetType,
		TargetID:       r.TargetID,
		Reason:         r.Reason,
		Severity:       r.Reason.Severity(),
		Comment:        comment,
		ReviewedAt:     now,
	})
	return nil
}

func (r *Report) decide(reviewerID uuid.UUID, comment string, now time.Time) {
	r.ReviewerID = &reviewerID
	r.ReviewComment = comment
	r.ReviewedAt = &now
}
