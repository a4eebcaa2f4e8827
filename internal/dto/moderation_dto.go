package dto

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
)

type CreateReportRequest struct {
	TargetType  string `json:"target_type"`
	TargetID    string `json:"target_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type ReviewReportRequest struct {
	Comment     string `json:"comment"`
	ActionTaken string `json:"action_taken"`
}

type ReportListResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int64           `json:"total"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

type ApplyPenaltyRequest struct {
	UserID   uuid.UUID  `json:"user_id"`
	Type     string     `json:"type"`
	Reason   string     `json:"reason"`
	Duration string     `json:"duration,omitempty"` // Go duration, e.g. "36h"; empty uses the type default
	ReportID *uuid.UUID `json:"report_id,omitempty"`
}

type PenaltyResponse struct {
	models.Penalty
	CurrentlyActive bool `json:"currently_active"`
}

func NewPenaltyResponse(p models.Penalty, now time.Time) PenaltyResponse {
	return PenaltyResponse{Penalty: p, CurrentlyActive: p.IsCurrentlyActive(now)}
}

type SanctionResponse struct {
	UserID     uuid.UUID `json:"user_id"`
	Scope      string    `json:"scope"`
	Sanctioned bool      `json:"sanctioned"`
}

type SweepResponse struct {
	Expired int `json:"expired"`
}
