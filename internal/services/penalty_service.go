package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplyPenaltyInput struct {
	UserID    uuid.UUID
	Type      models.PenaltyType
	Reason    string
	Duration  *time.Duration // nil uses the type default
	GrantedBy *uuid.UUID     // nil for automatic sanctions
	ReportID  *uuid.UUID
}

type PenaltyService struct {
	db    *gorm.DB
	relay *events.Relay
	now   func() time.Time
}

func NewPenaltyService(db *gorm.DB, relay *events.Relay) *PenaltyService {
	return &PenaltyService{
		db:    db,
		relay: relay,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func penaltyLockKey(userID uuid.UUID) string {
	return "penalty:" + userID.String()
}

func penaltySource(grantedBy *uuid.UUID) string {
	if grantedBy == nil {
		return "auto"
	}
	return "admin"
}

// Apply creates a penalty starting now.
func (s *PenaltyService) Apply(ctx context.Context, in ApplyPenaltyInput) (*models.Penalty, error) {
	if in.UserID == uuid.Nil {
		return nil, ErrUserRequired
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidPenaltyType
	}
	if in.Duration != nil && *in.Duration <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrInvalidPenaltyType)
	}

	var penalty *models.Penalty
	err := s.relay.Transact(ctx, func(tx *events.Tx) error {
		if err := database.LockKey(tx.DB, penaltyLockKey(in.UserID)); err != nil {
			return err
		}
		penalty = models.NewPenalty(in.UserID, in.Type, strings.TrimSpace(in.Reason), in.Duration, in.GrantedBy, in.ReportID, s.now())
		if err := tx.Create(penalty).Error; err != nil {
			return fmt.Errorf("failed to create penalty: %w", err)
		}
		tx.Track(penalty)
		return nil
	})
	if err != nil {
		return nil, err
	}

	penaltiesApplied.WithLabelValues(string(in.Type), penaltySource(in.GrantedBy)).Inc()
	slog.Info("penalty applied", "penalty_id", penalty.ID, "user_id", in.UserID, "type", in.Type)
	return penalty, nil
}

// applyIfAbsent creates an automatic penalty of typ unless the user already has one of
// that exact type in force. It runs inside the caller's unit of work; the per-user lock
// makes the check and the insert atomic against concurrent escalations.
func (s *PenaltyService) applyIfAbsent(tx *events.Tx, userID uuid.UUID, typ models.PenaltyType, reason string, reportID *uuid.UUID) (*models.Penalty, error) {
	if err := database.LockKey(tx.DB, penaltyLockKey(userID)); err != nil {
		return nil, err
	}
	now := s.now()

	var existing int64
	if err := activeAt(tx.DB.Model(&models.Penalty{}), now).
		Where("user_id = ? AND type = ?", userID, typ).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, nil
	}

	penalty := models.NewPenalty(userID, typ, reason, nil, nil, reportID, now)
	if err := tx.Create(penalty).Error; err != nil {
		return nil, fmt.Errorf("failed to create penalty: %w", err)
	}
	tx.Track(penalty)
	penaltiesApplied.WithLabelValues(string(typ), penaltySource(nil)).Inc()
	return penalty, nil
}

// activeAt narrows a penalties query to rows in force at now.
func activeAt(db *gorm.DB, now time.Time) *gorm.DB {
	return db.Where("active = ? AND (ends_at IS NULL OR ends_at > ?)", true, now)
}

// Expire lifts a penalty by hand. Expiring an inactive penalty fails.
func (s *PenaltyService) Expire(ctx context.Context, penaltyID, actorID uuid.UUID) (*models.Penalty, error) {
	actor := actorID
	penalty, err := s.expire(ctx, penaltyID, &actor, false)
	if err != nil {
		return nil, err
	}
	penaltiesExpired.WithLabelValues("admin").Inc()
	slog.Info("penalty expired", "penalty_id", penaltyID, "user_id", penalty.UserID, "expired_by", actorID)
	return penalty, nil
}

// expire flips the stored flag under a row lock. With onlyElapsed set, a row whose end
// has not passed (or that is already inactive) is left alone and nil is returned.
func (s *PenaltyService) expire(ctx context.Context, penaltyID uuid.UUID, actor *uuid.UUID, onlyElapsed bool) (*models.Penalty, error) {
	var penalty models.Penalty
	expired := false
	err := s.relay.Transact(ctx, func(tx *events.Tx) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&penalty, "id = ?", penaltyID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPenaltyNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		if onlyElapsed && !penalty.HasElapsed(now) {
			return nil
		}
		if err := penalty.Expire(actor, now); err != nil {
			return err
		}
		if err := tx.Save(&penalty).Error; err != nil {
			return fmt.Errorf("failed to expire penalty: %w", err)
		}
		tx.Track(&penalty)
		expired = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !expired {
		return nil, nil
	}
	return &penalty, nil
}

// ExpireElapsed expires up to limit penalties whose end time has passed, oldest first.
// Each row commits on its own; a failed row is logged and left for the next run.
func (s *PenaltyService) ExpireElapsed(ctx context.Context, limit int) (int, error) {
	var ids []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Penalty{}).
		Where("active = ? AND ends_at IS NOT NULL AND ends_at <= ?", true, s.now()).
		Order("ends_at").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, fmt.Errorf("failed to select elapsed penalties: %w", err)
	}

	expired := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		penalty, err := s.expire(ctx, id, nil, true)
		if err != nil {
			sweepErrors.Inc()
			slog.Error("penalty sweep row failed", "penalty_id", id, "error", err)
			continue
		}
		if penalty != nil {
			expired++
			penaltiesExpired.WithLabelValues("sweep").Inc()
		}
	}
	return expired, nil
}

// HasActivePenaltyOfTypes reports whether the user has any penalty of types in force
// right now. The end time is compared in the query, so a sanction that elapsed
// between sweeps no longer counts.
func (s *PenaltyService) HasActivePenaltyOfTypes(ctx context.Context, userID uuid.UUID, types []models.PenaltyType) (bool, error) {
	if len(types) == 0 {
		return false, nil
	}
	var count int64
	err := activeAt(s.db.WithContext(ctx).Model(&models.Penalty{}), s.now()).
		Where("user_id = ? AND type IN ?", userID, types).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *PenaltyService) CanPost(ctx context.Context, userID uuid.UUID) error {
	return s.gate(ctx, userID, models.PostingBlockers)
}

func (s *PenaltyService) CanComment(ctx context.Context, userID uuid.UUID) error {
	return s.gate(ctx, userID, models.CommentingBlockers)
}

func (s *PenaltyService) gate(ctx context.Context, userID uuid.UUID, types []models.PenaltyType) error {
	sanctioned, err := s.HasActivePenaltyOfTypes(ctx, userID, types)
	if err != nil {
		return err
	}
	if sanctioned {
		return ErrSanctioned
	}
	return nil
}

func (s *PenaltyService) Get(ctx context.Context, penaltyID uuid.UUID) (*models.Penalty, error) {
	var penalty models.Penalty
	err := s.db.WithContext(ctx).First(&penalty, "id = ?", penaltyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPenaltyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &penalty, nil
}

// ListForUser returns the user's penalties newest first; activeOnly keeps those in
// force right now.
func (s *PenaltyService) ListForUser(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]models.Penalty, error) {
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if activeOnly {
		query = activeAt(query, s.now())
	}
	var penalties []models.Penalty
	if err := query.Order("starts_at DESC").Find(&penalties).Error; err != nil {
		return nil, err
	}
	return penalties, nil
}
