package models

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PointCategory string

const (
	PointEarn   PointCategory = "EARN"
	PointDeduct PointCategory = "DEDUCT"
	PointUse    PointCategory = "USE"
)

type PointType string

const (
	PointPostCreate     PointType = "POST_CREATE"
	PointCommentCreate  PointType = "COMMENT_CREATE"
	PointPostLiked      PointType = "POST_LIKED"
	PointCommentLiked   PointType = "COMMENT_LIKED"
	PointDailyLogin     PointType = "DAILY_LOGIN"
	PointReportReward   PointType = "REPORT_REWARD"
	PointAdminGrant     PointType = "ADMIN_GRANT"
	PointPostDeleted    PointType = "POST_DELETED"
	PointCommentDeleted PointType = "COMMENT_DELETED"
	PointReportPenalty  PointType = "REPORT_PENALTY"
	PointAdminDeduct    PointType = "ADMIN_DEDUCT"
	PointSpend          PointType = "SPEND"
)

type pointRule struct {
	category    PointCategory
	points      int
	description string
}

// pointRules holds the fixed magnitude of each transaction type. Zero means the caller
// supplies the amount.
var pointRules = map[PointType]pointRule{
	PointPostCreate:     {PointEarn, 10, "Post published"},
	PointCommentCreate:  {PointEarn, 3, "Comment written"},
	PointPostLiked:      {PointEarn, 2, "Post received a like"},
	PointCommentLiked:   {PointEarn, 1, "Comment received a like"},
	PointDailyLogin:     {PointEarn, 5, "Daily visit"},
	PointReportReward:   {PointEarn, 5, "Report confirmed by moderators"},
	PointAdminGrant:     {PointEarn, 0, "Granted by an administrator"},
	PointPostDeleted:    {PointDeduct, 10, "Post removed"},
	PointCommentDeleted: {PointDeduct, 3, "Comment removed"},
	PointReportPenalty:  {PointDeduct, 20, "Content violated the community rules"},
	PointAdminDeduct:    {PointDeduct, 0, "Deducted by an administrator"},
	PointSpend:          {PointUse, 0, "Points spent"},
}

func (t PointType) Valid() bool {
	_, ok := pointRules[t]
	return ok
}

func (t PointType) Category() PointCategory {
	return pointRules[t].category
}

func (t PointType) DefaultPoints() int {
	return pointRules[t].points
}

func (t PointType) Description() string {
	return pointRules[t].description
}

// Level is one rung of the reputation ladder.
type Level struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"min_points"`
	DailyCap  int    `json:"daily_cap"`
}

// Levels is ordered by MinPoints ascending.
var Levels = []Level{
	{Level: 1, Name: "Newcomer", MinPoints: 0, DailyCap: 50},
	{Level: 2, Name: "Member", MinPoints: 100, DailyCap: 100},
	{Level: 3, Name: "Regular", MinPoints: 500, DailyCap: 150},
	{Level: 4, Name: "Contributor", MinPoints: 1500, DailyCap: 200},
	{Level: 5, Name: "Veteran", MinPoints: 4000, DailyCap: 300},
	{Level: 6, Name: "Legend", MinPoints: 10000, DailyCap: 500},
}

func LevelForPoints(total int) int {
	level := Levels[0].Level
	for _, l := range Levels {
		if total >= l.MinPoints {
			level = l.Level
		}
	}
	return level
}

func LevelInfo(level int) Level {
	for _, l := range Levels {
		if l.Level == level {
			return l
		}
	}
	return Levels[0]
}

// DayOf returns the calendar day of t in loc, normalized to UTC midnight for storage.
func DayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReputationAccount is the per-user point balance. Level is a cache of
// LevelForPoints(TotalPoints) refreshed on every credit.
type ReputationAccount struct {
	UserID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	TotalPoints       int             `gorm:"not null" json:"total_points"`
	AvailablePoints   int             `gorm:"not null" json:"available_points"`
	Level             int             `gorm:"not null" json:"level"`
	DailyEarnedPoints int             `gorm:"not null" json:"daily_earned_points"`
	LastEarnedOn      *datatypes.Date `json:"last_earned_on,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	events.Recorder `gorm:"-" json:"-"`
}

func (ReputationAccount) TableName() string {
	return "reputation_accounts"
}

func NewReputationAccount(userID uuid.UUID) *ReputationAccount {
	return &ReputationAccount{UserID: userID, Level: LevelForPoints(0)}
}

// EarnedOn returns the points already earned on day (UTC-midnight normalized).
func (a *ReputationAccount) EarnedOn(day time.Time) int {
	if a.LastEarnedOn == nil || !time.Time(*a.LastEarnedOn).UTC().Equal(day) {
		return 0
	}
	return a.DailyEarnedPoints
}

// DailyCap is the ceiling for the account's current level.
func (a *ReputationAccount) DailyCap() int {
	return LevelInfo(a.Level).DailyCap
}

// Earn credits points counted against the daily cap of day. Nothing changes when the
// cap would be exceeded.
func (a *ReputationAccount) Earn(points int, day time.Time) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	earned := a.EarnedOn(day)
	if earned+points > a.DailyCap() {
		return ErrDailyLimitExceeded
	}
	a.DailyEarnedPoints = earned + points
	date := datatypes.Date(day)
	a.LastEarnedOn = &date
	a.credit(points)
	return nil
}

// Grant credits points without touching the daily cap.
func (a *ReputationAccount) Grant(points int) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	a.credit(points)
	return nil
}

func (a *ReputationAccount) credit(points int) {
	a.TotalPoints += points
	a.AvailablePoints += points
	old := a.Level
	a.Level = LevelForPoints(a.TotalPoints)
	if a.Level != old {
		a.Record(LevelUpEvent{
			UserID:      a.UserID,
			OldLevel:    old,
			NewLevel:    a.Level,
			TotalPoints: a.TotalPoints,
		})
	}
}

// Debit lowers the spendable balance only; TotalPoints never decreases.
func (a *ReputationAccount) Debit(points int) error {
	if points <= 0 {
		return ErrInvalidPoints
	}
	if a.AvailablePoints < points {
		return ErrInsufficientPoints
	}
	a.AvailablePoints -= points
	return nil
}

// PointTransaction is an immutable ledger row.
type PointTransaction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_point_tx_user_created,priority:1" json:"user_id"`
	Type          PointType  `gorm:"size:40;not null" json:"type"`
	Points        int        `gorm:"not null" json:"points"`
	BalanceAfter  int        `gorm:"not null" json:"balance_after"`
	ReferenceID   *string    `gorm:"size:64" json:"reference_id,omitempty"`
	ReferenceType string     `gorm:"size:40" json:"reference_type,omitempty"`
	Description   string     `gorm:"size:255" json:"description"`
	AdminID       *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	CreatedAt     time.Time  `gorm:"index:idx_point_tx_user_created,priority:2" json:"created_at"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}

func (t *PointTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
