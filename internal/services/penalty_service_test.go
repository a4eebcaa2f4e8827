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

func TestPenaltyService_ApplyAndGates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, admin := uuid.New(), uuid.New()

	p, err := env.penalties.Apply(ctx, ApplyPenaltyInput{
		UserID:    user,
		Type:      models.PenaltyCommentBan24h,
		Reason:    "flooding threads",
		GrantedBy: &admin,
	})
	require.NoError(t, err)
	assert.Equal(t, t0, p.StartsAt)
	assert.Equal(t, t0.Add(24*time.Hour), *p.EndsAt)

	assert.ErrorIs(t, env.penalties.CanComment(ctx, user), ErrSanctioned)
	assert.NoError(t, env.penalties.CanPost(ctx, user))

	notes := env.notificationsOf(t, user, models.NotifyPenaltyCreated)
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Message, "commenting is suspended for 24 hours")
}

func TestPenaltyService_ApplyValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: uuid.New(), Type: "SHADOW_BAN"})
	assert.ErrorIs(t, err, ErrInvalidPenaltyType)

	_, err = env.penalties.Apply(ctx, ApplyPenaltyInput{Type: models.PenaltyFullBan})
	assert.ErrorIs(t, err, ErrUserRequired)

	negative := -time.Hour
	_, err = env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: uuid.New(), Type: models.PenaltyPostBan24h, Duration: &negative})
	assert.ErrorIs(t, err, ErrInvalidPenaltyType)
}

func TestPenaltyService_DurationOverride(t *testing.T) {
	env := newTestEnv(t)
	d := 3 * time.Hour

	p, err := env.penalties.Apply(context.Background(), ApplyPenaltyInput{
		UserID:   uuid.New(),
		Type:     models.PenaltyPostBanPermanent,
		Duration: &d,
	})
	require.NoError(t, err)
	require.NotNil(t, p.EndsAt)
	assert.Equal(t, t0.Add(3*time.Hour), *p.EndsAt)
}

func TestPenaltyService_ElapsedIsInactiveBeforeSweep(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	p, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: user, Type: models.PenaltyPostBan24h})
	require.NoError(t, err)

	env.clock.Advance(24*time.Hour + time.Second)

	stored, err := env.penalties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.Active, "flag still set before the sweep")
	assert.False(t, stored.IsCurrentlyActive(env.clock.Now()))

	sanctioned, err := env.penalties.HasActivePenaltyOfTypes(ctx, user, models.PostingBlockers)
	require.NoError(t, err)
	assert.False(t, sanctioned)
	assert.NoError(t, env.penalties.CanPost(ctx, user))

	active, err := env.penalties.ListForUser(ctx, user, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	expired, err := env.penalties.ExpireElapsed(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	stored, err = env.penalties.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
	assert.Nil(t, stored.ExpiredBy)
	assert.Len(t, env.notificationsOf(t, user, models.NotifyPenaltyExpired), 1)
}

func TestPenaltyService_ManualExpireTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := uuid.New()

	p, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: uuid.New(), Type: models.PenaltyFullBan})
	require.NoError(t, err)

	expired, err := env.penalties.Expire(ctx, p.ID, admin)
	require.NoError(t, err)
	assert.False(t, expired.Active)
	assert.Equal(t, admin, *expired.ExpiredBy)

	_, err = env.penalties.Expire(ctx, p.ID, admin)
	assert.ErrorIs(t, err, ErrPenaltyNotActive)

	_, err = env.penalties.Expire(ctx, uuid.New(), admin)
	assert.ErrorIs(t, err, ErrPenaltyNotFound)

	var logged int64
	env.db.Table("domain_events").Where("name = ?", models.EventPenaltyExpired).Count(&logged)
	assert.Equal(t, int64(1), logged)
}

func TestPenaltyService_SweepSelectsOnlyElapsed(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := uuid.New()

	day, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: user, Type: models.PenaltyPostBan24h})
	require.NoError(t, err)
	week, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: user, Type: models.PenaltyCommentBan7d})
	require.NoError(t, err)
	forever, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: user, Type: models.PenaltyFullBan})
	require.NoError(t, err)

	env.clock.Advance(48 * time.Hour)
	expired, err := env.penalties.ExpireElapsed(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)

	for id, wantActive := range map[uuid.UUID]bool{day.ID: false, week.ID: true, forever.ID: true} {
		p, err := env.penalties.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wantActive, p.Active, p.Type)
	}

	again, err := env.penalties.ExpireElapsed(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, again, "already expired rows are not selected again")
}

func TestPenaltyService_SweepBatchIsBounded(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: uuid.New(), Type: models.PenaltyPostBan24h})
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
	}
	env.clock.Advance(48 * time.Hour)

	first, err := env.penalties.ExpireElapsed(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, first)

	rest, err := env.penalties.ExpireElapsed(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, rest)
}

type stubLease struct {
	held     bool
	released int
}

func (l *stubLease) Acquire(context.Context) (func(), error) {
	if l.held {
		return nil, nil
	}
	return func() { l.released++ }, nil
}

func TestPenaltySweeper_SweepNow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.penalties.Apply(ctx, ApplyPenaltyInput{UserID: uuid.New(), Type: models.PenaltyPostBan24h})
	require.NoError(t, err)
	env.clock.Advance(25 * time.Hour)

	lease := &stubLease{}
	sweeper := NewPenaltySweeper(env.penalties, time.Minute, 10, lease)

	expired, err := sweeper.SweepNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, expired)
	assert.Equal(t, 1, lease.released)
}

func TestPenaltySweeper_RunsDoNotOverlap(t *testing.T) {
	env := newTestEnv(t)
	sweeper := NewPenaltySweeper(env.penalties, time.Minute, 10, nil)

	sweeper.mu.Lock()
	_, err := sweeper.SweepNow(context.Background())
	sweeper.mu.Unlock()
	assert.ErrorIs(t, err, ErrSweepInProgress)

	_, err = sweeper.SweepNow(context.Background())
	assert.NoError(t, err)
}

func TestPenaltySweeper_LeaseHeldElsewhere(t *testing.T) {
	env := newTestEnv(t)
	sweeper := NewPenaltySweeper(env.penalties, time.Minute, 10, &stubLease{held: true})

	_, err := sweeper.SweepNow(context.Background())
	assert.ErrorIs(t, err, ErrSweepInProgress)
}
