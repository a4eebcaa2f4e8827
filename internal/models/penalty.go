package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PenaltyType string

const (
	PenaltyPostBan24h          PenaltyType = "POST_BAN_24H"
	PenaltyPostBan7d           PenaltyType = "POST_BAN_7D"
	PenaltyPostBanPermanent    PenaltyType = "POST_BAN_PERMANENT"
	PenaltyCommentBan24h       PenaltyType = "COMMENT_BAN_24H"
	PenaltyCommentBan7d        PenaltyType = "COMMENT_BAN_7D"
	PenaltyCommentBanPermanent PenaltyType = "COMMENT_BAN_PERMANENT"
	PenaltyFullBan             PenaltyType = "FULL_BAN"
)

// penaltyDurations maps each type to its default length; nil means permanent.
var penaltyDurations = map[PenaltyType]*time.Duration{
	PenaltyPostBan24h:          durationPtr(24 * time.Hour),
	PenaltyPostBan7d:           durationPtr(7 * 24 * time.Hour),
	PenaltyPostBanPermanent:    nil,
	PenaltyCommentBan24h:       durationPtr(24 * time.Hour),
	PenaltyCommentBan7d:        durationPtr(7 * 24 * time.Hour),
	PenaltyCommentBanPermanent: nil,
	PenaltyFullBan:             nil,
}

// PostingBlockers are the penalty types that forbid creating posts.
var PostingBlockers = []PenaltyType{PenaltyPostBan24h, PenaltyPostBan7d, PenaltyPostBanPermanent, PenaltyFullBan}

// CommentingBlockers are the penalty types that forbid writing comments.
var CommentingBlockers = []PenaltyType{PenaltyCommentBan24h, PenaltyCommentBan7d, PenaltyCommentBanPermanent, PenaltyFullBan}

func durationPtr(d time.Duration) *time.Duration { return &d }

func (t PenaltyType) Valid() bool {
	_, ok := penaltyDurations[t]
	return ok
}

// DefaultDuration returns the type's standard length, or nil for permanent types.
func (t PenaltyType) DefaultDuration() *time.Duration {
	d := penaltyDurations[t]
	if d == nil {
		return nil
	}
	out := *d
	return &out
}

// Penalty is a sanction against a user. The stored Active flag only flips on explicit
// expiry; whether the sanction is in force right now is IsCurrentlyActive.
type Penalty struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID   `gorm:"type:uuid;not null;index:idx_penalties_user_type,priority:1" json:"user_id"`
	Type      PenaltyType `gorm:"size:40;not null;index:idx_penalties_user_type,priority:2" json:"type"`
	Reason    string      `gorm:"size:500" json:"reason"`
	StartsAt  time.Time   `gorm:"not null" json:"starts_at"`
	EndsAt    *time.Time  `gorm:"index:idx_penalties_active_ends,priority:2" json:"ends_at,omitempty"`
	Active    bool        `gorm:"not null;index:idx_penalties_active_ends,priority:1" json:"active"`
	GrantedBy *uuid.UUID  `gorm:"type:uuid" json:"granted_by,omitempty"`
	ReportID  *uuid.UUID  `gorm:"type:uuid;index" json:"report_id,omitempty"`
	ExpiredAt *time.Time  `json:"expired_at,omitempty"`
	ExpiredBy *uuid.UUID  `gorm:"type:uuid" json:"expired_by,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	events.Recorder `gorm:"-" json:"-"`
}

func (Penalty) TableName() string {
	return "penalties"
}

func (p *Penalty) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewPenalty starts a sanction at now. A nil duration falls back to the type default;
// grantedBy is nil for automatic sanctions.
func NewPenalty(userID uuid.UUID, typ PenaltyType, reason string, duration *time.Duration, grantedBy, reportID *uuid.UUID, now time.Time) *Penalty {
	if duration == nil {
		duration = typ.DefaultDuration()
	}
	p := &Penalty{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Reason:    reason,
		StartsAt:  now,
		Active:    true,
		GrantedBy: grantedBy,
		ReportID:  reportID,
	}
	if duration != nil {
		end := now.Add(*duration)
		p.EndsAt = &end
	}
	p.Record(PenaltyCreatedEvent{
		PenaltyID: p.ID,
		UserID:    userID,
		Type:      typ,
		Reason:    reason,
		StartsAt:  p.StartsAt,
		EndsAt:    p.EndsAt,
		GrantedBy: grantedBy,
		ReportID:  reportID,
	})
	return p
}

func (p *Penalty) IsPermanent() bool {
	return p.EndsAt == nil
}

// IsCurrentlyActive is the derived check: the flag is set and the end has not passed.
func (p *Penalty) IsCurrentlyActive(now time.Time) bool {
	return p.Active && (p.EndsAt == nil || now.Before(*p.EndsAt))
}

// HasElapsed reports a still-flagged penalty whose end time has passed.
func (p *Penalty) HasElapsed(now time.Time) bool {
	return p.Active && p.EndsAt != nil && !now.Before(*p.EndsAt)
}

// Expire clears the active flag. It is one-way; expiring an inactive penalty fails.
func (p *Penalty) Expire(actor *uuid.UUID, now time.Time) error {
	if !p.Active {
		return ErrPenaltyNotActive
	}
	p.Active = false
	p.ExpiredAt = &now
	p.ExpiredBy = actor
	p.Record(PenaltyExpiredEvent{
		PenaltyID: p.ID,
		UserID:    p.UserID,
		Type:      p.Type,
		ExpiredBy: actor,
		ExpiredAt: now,
	})
	return nil
}
