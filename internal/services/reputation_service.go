package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EarnInput struct {
	UserID        uuid.UUID
	Type          models.PointType
	Points        int // required when the type has no fixed amount, otherwise 0 or that amount
	ReferenceID   *string
	ReferenceType string
	Description   string
}

type DeductInput struct {
	UserID        uuid.UUID
	Type          models.PointType
	Points        int // same rule as EarnInput.Points
	ReferenceID   *string
	ReferenceType string
	Description   string
}

// ReputationService keeps per-user point balances and the append-only point ledger.
type ReputationService struct {
	db    *gorm.DB
	relay *events.Relay
	loc   *time.Location
	now   func() time.Time
}

// NewReputationService builds the service. loc is the calendar used for the daily cap.
func NewReputationService(db *gorm.DB, relay *events.Relay, loc *time.Location) *ReputationService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReputationService{
		db:    db,
		relay: relay,
		loc:   loc,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// effectivePoints is the type's fixed amount, or the caller's when the type has none.
// A requested amount that disagrees with a fixed one is refused.
func effectivePoints(typ models.PointType, requested int) (int, error) {
	points := typ.DefaultPoints()
	if points == 0 {
		points = requested
	} else if requested != 0 && requested != points {
		return 0, ErrInvalidPoints
	}
	if points <= 0 {
		return 0, ErrInvalidPoints
	}
	return points, nil
}

// lockAccount returns the user's account held FOR UPDATE, creating it on first use.
func lockAccount(tx *events.Tx, userID uuid.UUID) (*models.ReputationAccount, error) {
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
		Create(models.NewReputationAccount(userID)).Error; err != nil {
		return nil, fmt.Errorf("failed to create reputation account: %w", err)
	}
	var account models.ReputationAccount
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&account, "user_id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("failed to lock reputation account: %w", err)
	}
	return &account, nil
}

func appendLedger(tx *events.Tx, account *models.ReputationAccount, typ models.PointType, signed int, ref *string, refType, description string, adminID *uuid.UUID) (*models.PointTransaction, error) {
	if description == "" {
		description = typ.Description()
	}
	entry := &models.PointTransaction{
		UserID:        account.UserID,
		Type:          typ,
		Points:        signed,
		BalanceAfter:  account.AvailablePoints,
		ReferenceID:   ref,
		ReferenceType: refType,
		Description:   description,
		AdminID:       adminID,
	}
	if err := tx.Save(account).Error; err != nil {
		return nil, fmt.Errorf("failed to update reputation account: %w", err)
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, fmt.Errorf("failed to append point transaction: %w", err)
	}
	tx.Track(account)
	return entry, nil
}

// Earn credits points counted against today's cap. Over the cap nothing is written
// and ErrDailyLimitExceeded is returned.
func (s *ReputationService) Earn(ctx context.Context, in EarnInput) (*models.PointTransaction, error) {
	var entry *models.PointTransaction
	err := s.relay.Transact(ctx, func(tx *events.Tx) error {
		var err error
		entry, err = s.earn(tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *ReputationService) earn(tx *events.Tx, in EarnInput) (*models.PointTransaction, error) {
	if in.UserID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if !in.Type.Valid() || in.Type.Category() != models.PointEarn || in.Type == models.PointAdminGrant {
		return nil, ErrInvalidPointType
	}
	points, err := effectivePoints(in.Type, in.Points)
	if err != nil {
		return nil, err
	}

	account, err := lockAccount(tx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := account.Earn(points, models.DayOf(s.now(), s.loc)); err != nil {
		if errors.Is(err, models.ErrDailyLimitExceeded) {
			dailyCapRejections.Inc()
		}
		return nil, err
	}

	entry, err := appendLedger(tx, account, in.Type, points, in.ReferenceID, in.ReferenceType, strings.TrimSpace(in.Description), nil)
	if err != nil {
		return nil, err
	}
	pointsCredited.WithLabelValues(string(in.Type)).Add(float64(points))
	return entry, nil
}

// Deduct lowers the available balance only. TotalPoints and level are untouched.
func (s *ReputationService) Deduct(ctx context.Context, in DeductInput) (*models.PointTransaction, error) {
	if !in.Type.Valid() || in.Type.Category() != models.PointDeduct || in.Type == models.PointAdminDeduct {
		return nil, ErrInvalidPointType
	}
	return s.debit(ctx, in, nil)
}

// Use spends available points.
func (s *ReputationService) Use(ctx context.Context, userID uuid.UUID, points int, description string) (*models.PointTransaction, error) {
	return s.debit(ctx, DeductInput{
		UserID:      userID,
		Type:        models.PointSpend,
		Points:      points,
		Description: description,
	}, nil)
}

// AdminGrant credits points without the daily cap. Granted points do not count toward
// the day's earned total.
func (s *ReputationService) AdminGrant(ctx context.Context, adminID, userID uuid.UUID, points int, reason string) (*models.PointTransaction, error) {
	if userID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if points <= 0 {
		return nil, ErrInvalidPoints
	}
	var entry *models.PointTransaction
	err := s.relay.Transact(ctx, func(tx *events.Tx) error {
		account, err := lockAccount(tx, userID)
		if err != nil {
			return err
		}
		if err := account.Grant(points); err != nil {
			return err
		}
		entry, err = appendLedger(tx, account, models.PointAdminGrant, points, nil, "", strings.TrimSpace(reason), &adminID)
		return err
	})
	if err != nil {
		return nil, err
	}
	pointsCredited.WithLabelValues(string(models.PointAdminGrant)).Add(float64(points))
	slog.Info("points granted", "user_id", userID, "admin_id", adminID, "points", points)
	return entry, nil
}

func (s *ReputationService) AdminDeduct(ctx context.Context, adminID, userID uuid.UUID, points int, reason string) (*models.PointTransaction, error) {
	entry, err := s.debit(ctx, DeductInput{
		UserID:      userID,
		Type:        models.PointAdminDeduct,
		Points:      points,
		Description: reason,
	}, &adminID)
	if err != nil {
		return nil, err
	}
	slog.Info("points deducted", "user_id", userID, "admin_id", adminID, "points", points)
	return entry, nil
}

func (s *ReputationService) debit(ctx context.Context, in DeductInput, adminID *uuid.UUID) (*models.PointTransaction, error) {
	if in.UserID == uuid.Nil {
		return nil, ErrUserRequired
	}
	points, err := effectivePoints(in.Type, in.Points)
	if err != nil {
		return nil, err
	}
	in.Points = points

	var entry *models.PointTransaction
	err = s.relay.Transact(ctx, func(tx *events.Tx) error {
		var err error
		entry, err = s.debitTx(tx, in, adminID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// debitTx takes in.Points, already resolved, from the available balance.
func (s *ReputationService) debitTx(tx *events.Tx, in DeductInput, adminID *uuid.UUID) (*models.PointTransaction, error) {
	account, err := lockAccount(tx, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := account.Debit(in.Points); err != nil {
		return nil, err
	}
	return appendLedger(tx, account, in.Type, -in.Points, in.ReferenceID, in.ReferenceType, strings.TrimSpace(in.Description), adminID)
}

// GetAccount returns the user's balance. Users who never earned get a zero account.
func (s *ReputationService) GetAccount(ctx context.Context, userID uuid.UUID) (*models.ReputationAccount, error) {
	var account models.ReputationAccount
	err := s.db.WithContext(ctx).First(&account, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewReputationAccount(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// EarnedToday is the amount counted against the cap for the current day.
func (s *ReputationService) EarnedToday(account *models.ReputationAccount) int {
	return account.EarnedOn(models.DayOf(s.now(), s.loc))
}

func (s *ReputationService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.PointTransaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.PointTransaction{}).Where("user_id = ?", userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var entries []models.PointTransaction
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// RewardReporter credits the reporter of an upheld report. A reporter already at the
// daily cap simply misses the reward.
func (s *ReputationService) RewardReporter(ctx context.Context, tx *events.Tx, ev events.Event) error {
	approved, ok := ev.(models.ReportApprovedEvent)
	if !ok {
		return fmt.Errorf("reward reporter: unexpected event %T", ev)
	}
	ref := approved.ReportID.String()
	_, err := s.earn(tx, EarnInput{
		UserID:        approved.ReporterID,
		Type:          models.PointReportReward,
		ReferenceID:   &ref,
		ReferenceType: "report",
	})
	if errors.Is(err, models.ErrDailyLimitExceeded) {
		slog.Info("report reward skipped, daily cap reached", "user_id", approved.ReporterID, "report_id", approved.ReportID)
		return nil
	}
	return err
}

// PenalizeOffender takes REPORT_PENALTY points from the reported user, clipped to what
// they have available.
func (s *ReputationService) PenalizeOffender(ctx context.Context, tx *events.Tx, ev events.Event) error {
	approved, ok := ev.(models.ReportApprovedEvent)
	if !ok {
		return fmt.Errorf("penalize offender: unexpected event %T", ev)
	}
	account, err := lockAccount(tx, approved.ReportedUserID)
	if err != nil {
		return err
	}
	points := min(models.PointReportPenalty.DefaultPoints(), account.AvailablePoints)
	if points <= 0 {
		return nil
	}
	ref := approved.ReportID.String()
	_, err = s.debitTx(tx, DeductInput{
		UserID:        approved.ReportedUserID,
		Type:          models.PointReportPenalty,
		Points:        points,
		ReferenceID:   &ref,
		ReferenceType: "report",
	}, nil)
	return err
}
