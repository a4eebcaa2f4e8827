package services

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// stubTargets resolves authors from an in-memory map keyed by "TYPE:id".
type stubTargets map[string]uuid.UUID

func (s stubTargets) AuthorOf(_ context.Context, targetType models.TargetType, targetID string) (uuid.UUID, error) {
	author, ok := s[string(targetType)+":"+targetID]
	if !ok {
		return uuid.Nil, ErrTargetNotFound
	}
	return author, nil
}

type testEnv struct {
	db            *gorm.DB
	relay         *events.Relay
	clock         *testutil.Clock
	targets       stubTargets
	reports       *ReportService
	penalties     *PenaltyService
	escalation    *EscalationService
	reputation    *ReputationService
	notifications *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	relay := events.NewRelay(db)
	clock := testutil.NewClock(t0)
	targets := stubTargets{}

	env := &testEnv{
		db:            db,
		relay:         relay,
		clock:         clock,
		targets:       targets,
		reports:       NewReportService(db, relay, targets),
		penalties:     NewPenaltyService(db, relay),
		reputation:    NewReputationService(db, relay, time.UTC),
		notifications: NewNotificationService(db),
	}
	env.escalation = NewEscalationService(env.penalties)

	env.reports.now = clock.Now
	env.penalties.now = clock.Now
	env.escalation.now = clock.Now
	env.reputation.now = clock.Now

	RegisterHandlers(relay, env.escalation, env.reputation, env.notifications)
	return env
}

// post registers a post authored by author and returns its id.
func (e *testEnv) post(author uuid.UUID) string {
	id := uuid.NewString()
	e.targets[string(models.TargetPost)+":"+id] = author
	return id
}

// seedApproved inserts an already approved report against user, reviewed at reviewedAt.
func (e *testEnv) seedApproved(t *testing.T, user uuid.UUID, reviewedAt time.Time) {
	t.Helper()
	reviewer := uuid.New()
	r := models.Report{
		ReporterID:     uuid.New(),
		ReportedUserID: user,
		TargetType:     models.TargetPost,
		TargetID:       uuid.NewString(),
		Reason:         models.ReasonSpam,
		Status:         models.ReportApproved,
		ReviewerID:     &reviewer,
		ReviewedAt:     &reviewedAt,
	}
	require.NoError(t, e.db.Create(&r).Error)
}

// submitAndApprove files a report against user's content and approves it.
func (e *testEnv) submitAndApprove(t *testing.T, user uuid.UUID, reason models.ReportReason) *models.Report {
	t.Helper()
	report, err := e.reports.Submit(context.Background(), SubmitReportInput{
		ReporterID: uuid.New(),
		TargetType: models.TargetPost,
		TargetID:   e.post(user),
		Reason:     reason,
	})
	require.NoError(t, err)
	approved, err := e.reports.Approve(context.Background(), report.ID, uuid.New(), "", "content removed")
	require.NoError(t, err)
	return approved
}

func (e *testEnv) penaltiesOf(t *testing.T, user uuid.UUID, typ models.PenaltyType) []models.Penalty {
	t.Helper()
	var out []models.Penalty
	require.NoError(t, e.db.Where("user_id = ? AND type = ?", user, typ).Find(&out).Error)
	return out
}

func (e *testEnv) notificationsOf(t *testing.T, user uuid.UUID, typ models.NotificationType) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("recipient_id = ? AND type = ?", user, typ).Order("created_at").Find(&out).Error)
	return out
}
