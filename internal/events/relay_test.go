package events

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pinged struct {
	Seq int `json:"seq"`
}

func (pinged) EventName() string { return "test.pinged" }

type widget struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name string
	Recorder `gorm:"-"`
}

func newTestRelay(t *testing.T) (*Relay, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&LogEntry{}, &widget{}))
	return NewRelay(db), db
}

func TestRecorder_PullClearsBuffer(t *testing.T) {
	var r Recorder
	r.Record(pinged{Seq: 1})
	r.Record(pinged{Seq: 2})
	assert.Len(t, r.PendingEvents(), 2)

	got := r.PullEvents()
	assert.Equal(t, []Event{pinged{Seq: 1}, pinged{Seq: 2}}, got)
	assert.Empty(t, r.PullEvents())
}

func TestRelay_DispatchInOrder(t *testing.T) {
	relay, _ := newTestRelay(t)
	ctx := context.Background()

	var calls []string
	relay.Subscribe("test.pinged", "first", func(ctx context.Context, tx *Tx, ev Event) error {
		calls = append(calls, fmt.Sprintf("first:%d", ev.(pinged).Seq))
		return nil
	})
	relay.Subscribe("test.pinged", "second", func(ctx context.Context, tx *Tx, ev Event) error {
		calls = append(calls, fmt.Sprintf("second:%d", ev.(pinged).Seq))
		return nil
	})

	w := &widget{ID: uuid.New()}
	w.Record(pinged{Seq: 1})
	w.Record(pinged{Seq: 2})
	relay.Relay(ctx, w)

	assert.Equal(t, []string{"first:1", "second:1", "first:2", "second:2"}, calls)
	assert.Empty(t, w.PendingEvents())
	assert.Equal(t, []string{"first", "second"}, relay.Handlers("test.pinged"))
}

func TestRelay_HandlerFailureIsolated(t *testing.T) {
	relay, db := newTestRelay(t)
	ctx := context.Background()

	relay.Subscribe("test.pinged", "broken", func(ctx context.Context, tx *Tx, ev Event) error {
		if err := tx.Create(&widget{ID: uuid.New(), Name: "from-broken"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	relay.Subscribe("test.pinged", "panicky", func(ctx context.Context, tx *Tx, ev Event) error {
		panic("unexpected")
	})
	relay.Subscribe("test.pinged", "healthy", func(ctx context.Context, tx *Tx, ev Event) error {
		return tx.Create(&widget{ID: uuid.New(), Name: "from-healthy"}).Error
	})

	w := &widget{ID: uuid.New()}
	w.Record(pinged{Seq: 1})
	relay.Relay(ctx, w)

	var names []string
	require.NoError(t, db.Model(&widget{}).Pluck("name", &names).Error)
	assert.Equal(t, []string{"from-healthy"}, names, "failed handler transaction must roll back alone")

	var entry LogEntry
	require.NoError(t, db.First(&entry, "name = ?", "test.pinged").Error)
	assert.Equal(t, 3, entry.Handlers)
	assert.Equal(t, 2, entry.FailedHandlers)
}

func TestRelay_TransactRelaysAfterCommit(t *testing.T) {
	relay, db := newTestRelay(t)
	ctx := context.Background()

	var seen int64
	relay.Subscribe("test.pinged", "counter", func(ctx context.Context, tx *Tx, ev Event) error {
		// the triggering row is already committed and visible
		return tx.Model(&widget{}).Where("name = ?", "committed").Count(&seen).Error
	})

	err := relay.Transact(ctx, func(tx *Tx) error {
		w := &widget{ID: uuid.New(), Name: "committed"}
		w.Record(pinged{Seq: 1})
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		tx.Track(w)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seen)

	var total int64
	require.NoError(t, db.Model(&widget{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestRelay_RollbackDropsEvents(t *testing.T) {
	relay, db := newTestRelay(t)
	ctx := context.Background()

	called := false
	relay.Subscribe("test.pinged", "spy", func(ctx context.Context, tx *Tx, ev Event) error {
		called = true
		return nil
	})

	w := &widget{ID: uuid.New(), Name: "doomed"}
	err := relay.Transact(ctx, func(tx *Tx) error {
		w.Record(pinged{Seq: 1})
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		tx.Track(w)
		return errors.New("abort")
	})
	require.Error(t, err)
	assert.False(t, called)
	assert.Empty(t, w.PendingEvents())

	var total int64
	require.NoError(t, db.Model(&LogEntry{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestRelay_NestedEventsRelayAfterHandlerCommit(t *testing.T) {
	relay, _ := newTestRelay(t)
	ctx := context.Background()

	var order []string
	relay.Subscribe("test.pinged", "echo", func(ctx context.Context, tx *Tx, ev Event) error {
		order = append(order, "echo")
		w := &widget{ID: uuid.New(), Name: "echo"}
		w.Record(chained{})
		if err := tx.Create(w).Error; err != nil {
			return err
		}
		tx.Track(w)
		return nil
	})
	relay.Subscribe("test.chained", "tail", func(ctx context.Context, tx *Tx, ev Event) error {
		order = append(order, "tail")
		return nil
	})

	w := &widget{ID: uuid.New()}
	w.Record(pinged{Seq: 1})
	relay.Relay(ctx, w)

	assert.Equal(t, []string{"echo", "tail"}, order)
}

type chained struct{}

func (chained) EventName() string { return "test.chained" }
