package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForPoints(t *testing.T) {
	cases := []struct {
		total int
		want  int
	}{
		{0, 1}, {99, 1}, {100, 2}, {499, 2}, {500, 3}, {1499, 3}, {1500, 4}, {4000, 5}, {10000, 6}, {99999, 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevelForPoints(tc.total), "total=%d", tc.total)
	}
}

func TestDayOf(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	late := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC) // 05:00 on June 2nd in Seoul

	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), DayOf(late, time.UTC))
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), DayOf(late, seoul))
}

func TestReputationAccount_EarnWithinCap(t *testing.T) {
	acct := NewReputationAccount(uuid.New())
	day := DayOf(testNow, time.UTC)

	require.NoError(t, acct.Earn(30, day))
	require.NoError(t, acct.Earn(20, day))
	assert.Equal(t, 50, acct.TotalPoints)
	assert.Equal(t, 50, acct.AvailablePoints)
	assert.Equal(t, 50, acct.DailyEarnedPoints)
}

func TestReputationAccount_CapRejectsWholeAmount(t *testing.T) {
	acct := NewReputationAccount(uuid.New())
	day := DayOf(testNow, time.UTC)
	require.NoError(t, acct.Earn(45, day))

	assert.ErrorIs(t, acct.Earn(10, day), ErrDailyLimitExceeded)
	assert.Equal(t, 45, acct.TotalPoints)
	assert.Equal(t, 45, acct.AvailablePoints)
	assert.Equal(t, 45, acct.DailyEarnedPoints)
}

func TestReputationAccount_DayRolloverResets(t *testing.T) {
	acct := NewReputationAccount(uuid.New())
	today := DayOf(testNow, time.UTC)
	require.NoError(t, acct.Earn(50, today))
	assert.ErrorIs(t, acct.Earn(1, today), ErrDailyLimitExceeded)

	tomorrow := today.AddDate(0, 0, 1)
	assert.Equal(t, 0, acct.EarnedOn(tomorrow))
	require.NoError(t, acct.Earn(10, tomorrow))
	assert.Equal(t, 10, acct.DailyEarnedPoints)
	assert.Equal(t, 60, acct.TotalPoints)
}

func TestReputationAccount_LevelUpOnce(t *testing.T) {
	acct := NewReputationAccount(uuid.New())
	acct.TotalPoints = 499
	acct.AvailablePoints = 499
	acct.Level = LevelForPoints(499)
	day := DayOf(testNow, time.UTC)

	require.NoError(t, acct.Earn(10, day))
	evs := acct.PullEvents()
	require.Len(t, evs, 1)
	ev := evs[0].(LevelUpEvent)
	assert.Equal(t, 2, ev.OldLevel)
	assert.Equal(t, 3, ev.NewLevel)
	assert.Equal(t, 509, ev.TotalPoints)

	require.NoError(t, acct.Earn(10, day))
	assert.Empty(t, acct.PullEvents())
}

func TestReputationAccount_DebitKeepsTotal(t *testing.T) {
	acct := NewReputationAccount(uuid.New())
	require.NoError(t, acct.Grant(120))

	require.NoError(t, acct.Debit(100))
	assert.Equal(t, 20, acct.AvailablePoints)
	assert.Equal(t, 120, acct.TotalPoints)
	assert.Equal(t, 2, acct.Level)

	assert.ErrorIs(t, acct.Debit(21), ErrInsufficientPoints)
	assert.Equal(t, 20, acct.AvailablePoints)
	assert.ErrorIs(t, acct.Debit(0), ErrInvalidPoints)
}

func TestReputationAccount_GrantBypassesCap(t *testing.T) {
	acct := NewReputationAccount(uuid.New())
	require.NoError(t, acct.Grant(1000))
	assert.Equal(t, 0, acct.DailyEarnedPoints)
	assert.Equal(t, 3, acct.Level)
}

func TestPointType_Defaults(t *testing.T) {
	assert.Equal(t, 10, PointPostCreate.DefaultPoints())
	assert.Equal(t, PointEarn, PointPostCreate.Category())
	assert.Equal(t, 0, PointAdminGrant.DefaultPoints())
	assert.Equal(t, PointDeduct, PointReportPenalty.Category())
	assert.Equal(t, PointUse, PointSpend.Category())
	assert.False(t, PointType("LOTTERY").Valid())
}
