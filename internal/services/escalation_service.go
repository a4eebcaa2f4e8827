package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
)

// Escalation thresholds. Fixed policy, not configuration.
const (
	escalationWindowMonths = 3
	weekBanThreshold       = 5
	dayBanThreshold        = 3
	fullBanSeverity        = 70
)

// SelectTiers returns the penalties earned by a user with approvedCount prior approved
// reports in the window whose latest approved report has the given severity. The count
// tier and the severity tier are independent; both may apply.
func SelectTiers(approvedCount, severity int) []models.PenaltyType {
	var tiers []models.PenaltyType
	switch {
	case approvedCount >= weekBanThreshold:
		tiers = append(tiers, models.PenaltyPostBan7d)
	case approvedCount >= dayBanThreshold:
		tiers = append(tiers, models.PenaltyPostBan24h)
	}
	if severity >= fullBanSeverity {
		tiers = append(tiers, models.PenaltyFullBan)
	}
	return tiers
}

// EscalationService turns approved reports into automatic sanctions against repeat or
// severe offenders.
type EscalationService struct {
	penalties *PenaltyService
	now       func() time.Time
}

func NewEscalationService(penalties *PenaltyService) *EscalationService {
	return &EscalationService{
		penalties: penalties,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleReportApproved runs in its own transaction after the approval has committed.
func (s *EscalationService) HandleReportApproved(ctx context.Context, tx *events.Tx, ev events.Event) error {
	approved, ok := ev.(models.ReportApprovedEvent)
	if !ok {
		return fmt.Errorf("escalation: unexpected event %T", ev)
	}

	since := s.now().AddDate(0, -escalationWindowMonths, 0)
	var prior int64
	if err := tx.Model(&models.Report{}).
		Where("reported_user_id = ? AND status = ? AND reviewed_at >= ? AND id <> ?",
			approved.ReportedUserID, models.ReportApproved, since, approved.ReportID).
		Count(&prior).Error; err != nil {
		return fmt.Errorf("count approved reports: %w", err)
	}

	reportID := approved.ReportID
	for _, tier := range SelectTiers(int(prior), approved.Severity) {
		reason := fmt.Sprintf("auto: %d approved reports in %d months", prior, escalationWindowMonths)
		if tier == models.PenaltyFullBan {
			reason = fmt.Sprintf("auto: high severity report (%s)", approved.Reason)
		}

		penalty, err := s.penalties.applyIfAbsent(tx, approved.ReportedUserID, tier, reason, &reportID)
		if err != nil {
			return fmt.Errorf("apply %s: %w", tier, err)
		}
		if penalty == nil {
			slog.Info("escalation skipped, penalty already active",
				"user_id", approved.ReportedUserID, "type", tier, "report_id", reportID)
			continue
		}
		slog.Info("escalation applied penalty", "user_id", approved.ReportedUserID,
			"type", tier, "penalty_id", penalty.ID, "report_id", reportID, "prior_approved", prior)
	}
	return nil
}
