package models

import (
	"time"

	"github.com/google/uuid"
)

// Event names relayed to handlers and notification consumers.
const (
	EventReportSubmitted = "report.submitted"
	EventReportApproved  = "report.approved"
	EventReportRejected  = "report.rejected"
	EventPenaltyCreated  = "penalty.created"
	EventPenaltyExpired  = "penalty.expired"
	EventLevelUp         = "reputation.level_up"
)

type ReportSubmitted struct {
	ReportID       uuid.UUID    `json:"report_id"`
	ReporterID     uuid.UUID    `json:"reporter_id"`
	ReportedUserID uuid.UUID    `json:"reported_user_id"`
	TargetType     TargetType   `json:"target_type"`
	TargetID       string       `json:"target_id"`
	Reason         ReportReason `json:"reason"`
	Severity       int          `json:"severity"`
}

func (ReportSubmitted) EventName() string { return EventReportSubmitted }

type ReportApprovedEvent struct {
	ReportID       uuid.UUID    `json:"report_id"`
	ReporterID     uuid.UUID    `json:"reporter_id"`
	ReportedUserID uuid.UUID    `json:"reported_user_id"`
	ReviewerID     uuid.UUID    `json:"reviewer_id"`
	TargetType     TargetType   `json:"target_type"`
	TargetID       string       `json:"target_id"`
	Reason         ReportReason `json:"reason"`
	Severity       int          `json:"severity"`
	ActionTaken    string       `json:"action_taken"`
	ReviewedAt     time.Time    `json:"reviewed_at"`
}

func (ReportApprovedEvent) EventName() string { return EventReportApproved }

type ReportRejectedEvent struct {
	ReportID       uuid.UUID    `json:"report_id"`
	ReporterID     uuid.UUID    `json:"reporter_id"`
	ReportedUserID uuid.UUID    `json:"reported_user_id"`
	ReviewerID     uuid.UUID    `json:"reviewer_id"`
	TargetType     TargetType   `json:"target_type"`
	TargetID       string       `json:"target_id"`
	Reason         ReportReason `json:"reason"`
	Severity       int          `json:"severity"`
	Comment        string       `json:"comment"`
	ReviewedAt     time.Time    `json:"reviewed_at"`
}

func (ReportRejectedEvent) EventName() string { return EventReportRejected }

type PenaltyCreatedEvent struct {
	PenaltyID uuid.UUID   `json:"penalty_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Type      PenaltyType `json:"type"`
	Reason    string      `json:"reason"`
	StartsAt  time.Time   `json:"starts_at"`
	EndsAt    *time.Time  `json:"ends_at,omitempty"`
	GrantedBy *uuid.UUID  `json:"granted_by,omitempty"`
	ReportID  *uuid.UUID  `json:"report_id,omitempty"`
}

func (PenaltyCreatedEvent) EventName() string { return EventPenaltyCreated }

type PenaltyExpiredEvent struct {
	PenaltyID uuid.UUID   `json:"penalty_id"`
	UserID    uuid.UUID   `json:"user_id"`
	Type      PenaltyType `json:"type"`
	ExpiredBy *uuid.UUID  `json:"expired_by,omitempty"`
	ExpiredAt time.Time   `json:"expired_at"`
}

func (PenaltyExpiredEvent) EventName() string { return EventPenaltyExpired }

// Automatic reports whether the sweep, not an admin, lifted the penalty.
func (e PenaltyExpiredEvent) Automatic() bool { return e.ExpiredBy == nil }

type LevelUpEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	OldLevel    int       `json:"old_level"`
	NewLevel    int       `json:"new_level"`
	TotalPoints int       `json:"total_points"`
}

func (LevelUpEvent) EventName() string { return EventLevelUp }
