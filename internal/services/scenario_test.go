package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A reports B's spam post; B already has four approved reports this quarter.
func TestModerationFlow_SpamReportEscalatesRepeatOffender(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	a, b, admin := uuid.New(), uuid.New(), uuid.New()
	for i := 1; i <= 4; i++ {
		env.seedApproved(t, b, t0.AddDate(0, 0, -7*i))
	}
	_, err := env.reputation.AdminGrant(ctx, admin, b, 15, "")
	require.NoError(t, err)

	report, err := env.reports.Submit(ctx, SubmitReportInput{
		ReporterID: a,
		TargetType: models.TargetPost,
		TargetID:   env.post(b),
		Reason:     models.ReasonSpam,
	})
	require.NoError(t, err)

	approved, err := env.reports.Approve(ctx, report.ID, admin, "confirmed", "content removed")
	require.NoError(t, err)
	assert.Equal(t, models.ReportApproved, approved.Status)
	assert.Equal(t, "content removed", approved.ActionTaken)

	bans := env.penaltiesOf(t, b, models.PenaltyPostBan24h)
	require.Len(t, bans, 1)
	assert.Equal(t, t0.Add(24*time.Hour), bans[0].EndsAt.UTC())
	assert.Empty(t, env.penaltiesOf(t, b, models.PenaltyPostBan7d))
	assert.Empty(t, env.penaltiesOf(t, b, models.PenaltyFullBan))
	assert.ErrorIs(t, env.penalties.CanPost(ctx, b), ErrSanctioned)
	assert.NoError(t, env.penalties.CanComment(ctx, b))

	approvedNotes := env.notificationsOf(t, a, models.NotifyReportApproved)
	require.Len(t, approvedNotes, 1)
	assert.Contains(t, approvedNotes[0].Message, "spam")
	assert.Len(t, env.notificationsOf(t, b, models.NotifyPenaltyCreated), 1)

	reporter, err := env.reputation.GetAccount(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 5, reporter.AvailablePoints, "report reward")

	offender, err := env.reputation.GetAccount(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 15, offender.TotalPoints)
	assert.Equal(t, 0, offender.AvailablePoints, "penalty clipped to the 15 available")
}

func TestModerationFlow_RewardSkippedAtCap(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reporter := uuid.New()
	for i := 0; i < 5; i++ {
		_, err := earn(env, reporter, models.PointPostCreate, 0)
		require.NoError(t, err)
	}

	report, err := env.reports.Submit(ctx, SubmitReportInput{
		ReporterID: reporter,
		TargetType: models.TargetPost,
		TargetID:   env.post(uuid.New()),
		Reason:     models.ReasonAdvertisement,
	})
	require.NoError(t, err)
	_, err = env.reports.Approve(ctx, report.ID, uuid.New(), "", "")
	require.NoError(t, err)

	account, err := env.reputation.GetAccount(ctx, reporter)
	require.NoError(t, err)
	assert.Equal(t, 50, account.TotalPoints)

	// The cap miss is not a handler failure.
	var failed int64
	env.db.Table("domain_events").Where("name = ? AND failed_handlers > 0", models.EventReportApproved).Count(&failed)
	assert.Zero(t, failed)
}
