package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/database"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxDescriptionLength = 1000

type SubmitReportInput struct {
	ReporterID  uuid.UUID
	TargetType  models.TargetType
	TargetID    string
	Reason      models.ReportReason
	Description string
}

type ReportService struct {
	db      *gorm.DB
	relay   *events.Relay
	targets TargetResolver
	now     func() time.Time
}

func NewReportService(db *gorm.DB, relay *events.Relay, targets TargetResolver) *ReportService {
	return &ReportService{
		db:      db,
		relay:   relay,
		targets: targets,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (in *SubmitReportInput) validate() error {
	in.TargetID = strings.TrimSpace(in.TargetID)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.ReporterID == uuid.Nil:
		return ErrReporterRequired
	case !in.TargetType.Valid() || in.TargetID == "":
		return ErrInvalidTarget
	case !in.Reason.Valid():
		return ErrInvalidReason
	case utf8.RuneCountInString(in.Description) > maxDescriptionLength:
		return ErrDescriptionTooLong
	}
	return nil
}

// Submit files a report against the current author of the target. A reporter may hold
// only one pending, in-review or approved report per target; a rejected one can be
// filed again.
func (s *ReportService) Submit(ctx context.Context, in SubmitReportInput) (*models.Report, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	reportedID, err := s.targets.AuthorOf(ctx, in.TargetType, in.TargetID)
	if err != nil {
		return nil, err
	}
	if reportedID == in.ReporterID {
		return nil, ErrSelfReport
	}

	report := models.NewReport(in.ReporterID, reportedID, in.TargetType, in.TargetID, in.Reason, in.Description)
	err = s.relay.Transact(ctx, func(tx *events.Tx) error {
		lockKey := fmt.Sprintf("report:%s:%s:%s", in.ReporterID, in.TargetType, in.TargetID)
		if err := database.LockKey(tx.DB, lockKey); err != nil {
			return err
		}

		var open int64
		if err := tx.Model(&models.Report{}).
			Where("reporter_id = ? AND target_type = ? AND target_id = ? AND status IN ?",
				in.ReporterID, in.TargetType, in.TargetID, models.OpenReportStatuses).
			Count(&open).Error; err != nil {
			return err
		}
		if open > 0 {
			return ErrDuplicateReport
		}

		if err := tx.Create(report).Error; err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		tx.Track(report)
		return nil
	})
	if err != nil {
		return nil, err
	}

	reportsSubmitted.WithLabelValues(string(in.Reason)).Inc()
	slog.Info("report submitted", "report_id", report.ID, "reporter_id", in.ReporterID,
		"reported_user_id", reportedID, "reason", in.Reason)
	return report, nil
}

// StartReview moves a pending report to IN_REVIEW.
func (s *ReportService) StartReview(ctx context.Context, reportID, reviewerID uuid.UUID) (*models.Report, error) {
	if reviewerID == uuid.Nil {
		return nil, ErrReviewerRequired
	}
	return s.transition(ctx, reportID, func(r *models.Report) error {
		return r.StartReview(reviewerID)
	})
}

func (s *ReportService) Approve(ctx context.Context, reportID, reviewerID uuid.UUID, comment, actionTaken string) (*models.Report, error) {
	if reviewerID == uuid.Nil {
		return nil, ErrReviewerRequired
	}
	report, err := s.transition(ctx, reportID, func(r *models.Report) error {
		return r.Approve(reviewerID, strings.TrimSpace(comment), strings.TrimSpace(actionTaken), s.now())
	})
	if err != nil {
		return nil, err
	}
	reportsDecided.WithLabelValues(string(models.ReportApproved)).Inc()
	slog.Info("report approved", "report_id", reportID, "reviewer_id", reviewerID, "reported_user_id", report.ReportedUserID)
	return report, nil
}

func (s *ReportService) Reject(ctx context.Context, reportID, reviewerID uuid.UUID, comment string) (*models.Report, error) {
	if reviewerID == uuid.Nil {
		return nil, ErrReviewerRequired
	}
	report, err := s.transition(ctx, reportID, func(r *models.Report) error {
		return r.Reject(reviewerID, strings.TrimSpace(comment), s.now())
	})
	if err != nil {
		return nil, err
	}
	reportsDecided.WithLabelValues(string(models.ReportRejected)).Inc()
	slog.Info("report rejected", "report_id", reportID, "reviewer_id", reviewerID)
	return report, nil
}

// transition applies fn to the report row held FOR UPDATE, so concurrent reviewers
// serialize and the loser sees the terminal state.
func (s *ReportService) transition(ctx context.Context, reportID uuid.UUID, fn func(*models.Report) error) (*models.Report, error) {
	var report models.Report
	err := s.relay.Transact(ctx, func(tx *events.Tx) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&report, "id = ?", reportID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}
		if err := fn(&report); err != nil {
			return err
		}
		if err := tx.Save(&report).Error; err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		tx.Track(&report)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	var report models.Report
	err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// List returns reports newest first. An empty status lists all of them.
func (s *ReportService) List(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
