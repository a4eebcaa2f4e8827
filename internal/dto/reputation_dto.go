package dto

import (
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
)

type EarnRequest struct {
	UserID        uuid.UUID `json:"user_id"`
	Type          string    `json:"type"`
	Points        int       `json:"points,omitempty"`
	ReferenceID   *string   `json:"reference_id,omitempty"`
	ReferenceType string    `json:"reference_type,omitempty"`
	Description   string    `json:"description,omitempty"`
}

type AdjustPointsRequest struct {
	Points int    `json:"points"`
	Reason string `json:"reason"`
}

type AccountResponse struct {
	UserID          uuid.UUID `json:"user_id"`
	TotalPoints     int       `json:"total_points"`
	AvailablePoints int       `json:"available_points"`
	Level           int       `json:"level"`
	LevelName       string    `json:"level_name"`
	DailyCap        int       `json:"daily_cap"`
	EarnedToday     int       `json:"earned_today"`
	NextLevelAt     *int      `json:"next_level_at,omitempty"`
}

func NewAccountResponse(a *models.ReputationAccount, earnedToday int) AccountResponse {
	level := models.LevelInfo(a.Level)
	resp := AccountResponse{
		UserID:          a.UserID,
		TotalPoints:     a.TotalPoints,
		AvailablePoints: a.AvailablePoints,
		Level:           level.Level,
		LevelName:       level.Name,
		DailyCap:        level.DailyCap,
		EarnedToday:     earnedToday,
	}
	for _, l := range models.Levels {
		if l.MinPoints > a.TotalPoints {
			next := l.MinPoints
			resp.NextLevelAt = &next
			break
		}
	}
	return resp
}

type PointHistoryResponse struct {
	Transactions []models.PointTransaction `json:"transactions"`
	Total        int64                     `json:"total"`
	Limit        int                       `json:"limit"`
	Offset       int                       `json:"offset"`
}

type NotificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	Limit         int                   `json:"limit"`
	Offset        int                   `json:"offset"`
}
