package logging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/community-core/internal/events"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/models"
	"github.com/ahmetcoskunkizilkaya/community-core/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPGHandler_PersistsErrorsOnly(t *testing.T) {
	db := testutil.NewDB(t)
	h := NewPGHandler(db)
	logger := slog.New(h)

	logger.Info("not persisted")
	logger.With("event", "report.approved").Error("event handler failed",
		"handler", "escalation",
		"user_id", "u-1",
		"error", errors.New("boom"),
		"attempt", 2,
	)
	h.Stop()

	var rows []models.SystemLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "ERROR", row.Level)
	assert.Equal(t, "event handler failed", row.Message)
	assert.Equal(t, "report.approved", row.Event)
	assert.Equal(t, "escalation", row.Handler)
	assert.Equal(t, "boom", row.Error)
	require.NotNil(t, row.UserID)
	assert.Equal(t, "u-1", *row.UserID)
	assert.JSONEq(t, `{"attempt":2}`, string(row.Extra))
}

func TestMultiHandler_FansOut(t *testing.T) {
	db := testutil.NewDB(t)
	pg := NewPGHandler(db)
	var captured []string
	multi := NewMultiHandler(pg, recordingHandler{out: &captured})

	slog.New(multi).Warn("warned")
	slog.New(multi).Error("failed")
	pg.Stop()

	assert.Equal(t, []string{"warned", "failed"}, captured)
	var count int64
	require.NoError(t, db.Model(&models.SystemLog{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCleanup_DeletesOldRows(t *testing.T) {
	db := testutil.NewDB(t)
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -40), Level: "ERROR", Message: "old"}).Error)
	require.NoError(t, db.Create(&models.SystemLog{Timestamp: now.AddDate(0, 0, -1), Level: "ERROR", Message: "recent"}).Error)
	require.NoError(t, db.Create(&events.LogEntry{Name: "report.approved", CreatedAt: now.AddDate(0, 0, -31)}).Error)
	require.NoError(t, db.Create(&events.LogEntry{Name: "report.rejected", CreatedAt: now}).Error)

	Cleanup(db, now.AddDate(0, 0, -30))

	var logs []models.SystemLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "recent", logs[0].Message)

	var entries []events.LogEntry
	require.NoError(t, db.Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.rejected", entries[0].Name)
}

type recordingHandler struct {
	out *[]string
}

func (r recordingHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn
}

func (r recordingHandler) Handle(_ context.Context, record slog.Record) error {
	*r.out = append(*r.out, record.Message)
	return nil
}

func (r recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r recordingHandler) WithGroup(string) slog.Handler      { return r }

type failingHandler struct{}

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("sink down") }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler      { return f }
func (f failingHandler) WithGroup(string) slog.Handler           { return f }

func TestMultiHandler_FailingSinkDoesNotStarveOthers(t *testing.T) {
	var captured []string
	multi := NewMultiHandler(failingHandler{}, recordingHandler{out: &captured})

	record := slog.NewRecord(time.Now(), slog.LevelError, "penalty sweep failed", 0)
	err := multi.Handle(context.Background(), record)

	assert.EqualError(t, err, "sink down")
	assert.Equal(t, []string{"penalty sweep failed"}, captured)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
