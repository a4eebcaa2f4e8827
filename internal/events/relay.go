package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxDepth bounds handler-triggered re-dispatch (handler records event, whose handler
// records another, ...).
const maxDepth = 8

// HandlerFunc reacts to one event inside its own transaction. Aggregates tracked on tx
// have their events relayed after that transaction commits.
type HandlerFunc func(ctx context.Context, tx *Tx, ev Event) error

type subscription struct {
	name string
	fn   HandlerFunc
}

// Tx is a unit of work: an open gorm transaction plus the aggregates whose buffered
// events must be relayed once it commits.
type Tx struct {
	*gorm.DB
	tracked []Aggregate
}

// Track registers aggregates for relay after commit.
func (t *Tx) Track(aggs ...Aggregate) {
	t.tracked = append(t.tracked, aggs...)
}

// Relay dispatches recorded events to subscribed handlers after commit.
type Relay struct {
	db       *gorm.DB
	mu       sync.RWMutex
	handlers map[string][]subscription
}

func NewRelay(db *gorm.DB) *Relay {
	return &Relay{
		db:       db,
		handlers: make(map[string][]subscription),
	}
}

// Subscribe registers fn for events named event. Handlers for the same event run in
// registration order.
func (r *Relay) Subscribe(event, handler string, fn HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], subscription{name: handler, fn: fn})
}

// Handlers returns the handler names subscribed to event.
func (r *Relay) Handlers(event string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers[event]))
	for _, s := range r.handlers[event] {
		names = append(names, s.name)
	}
	return names
}

// Transact runs fn in a database transaction. When it commits, events of every tracked
// aggregate are relayed; when it rolls back, they are discarded.
func (r *Relay) Transact(ctx context.Context, fn func(tx *Tx) error) error {
	tx := &Tx{}
	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		tx.DB = db
		return fn(tx)
	})
	if err != nil {
		for _, agg := range tx.tracked {
			agg.PullEvents()
		}
		return err
	}
	r.Relay(ctx, tx.tracked...)
	return nil
}

// Relay dispatches and clears the buffered events of aggs. Call it only once the unit of
// work that mutated the aggregates has committed.
func (r *Relay) Relay(ctx context.Context, aggs ...Aggregate) {
	depth, _ := ctx.Value(depthKey{}).(int)
	for _, agg := range aggs {
		if agg == nil {
			continue
		}
		for _, ev := range agg.PullEvents() {
			if depth >= maxDepth {
				slog.Error("event dropped: dispatch depth exceeded", "event", ev.EventName(), "depth", depth)
				continue
			}
			r.dispatch(context.WithValue(ctx, depthKey{}, depth+1), ev)
		}
	}
}

type depthKey struct{}

func (r *Relay) dispatch(ctx context.Context, ev Event) {
	name := ev.EventName()

	r.mu.RLock()
	subs := append([]subscription(nil), r.handlers[name]...)
	r.mu.RUnlock()

	failed := 0
	for _, s := range subs {
		start := time.Now()
		err := r.invoke(ctx, s, ev)
		handlerDuration.WithLabelValues(name, s.name).Observe(time.Since(start).Seconds())
		if err != nil {
			failed++
			handlerFailures.WithLabelValues(name, s.name).Inc()
			slog.Error("event handler failed", "event", name, "handler", s.name, "error", err)
			sentry.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("event", name)
				scope.SetTag("handler", s.name)
				sentry.CaptureException(err)
			})
		}
	}
	eventsDispatched.WithLabelValues(name).Inc()
	r.store(ctx, ev, len(subs), failed)
}

func (r *Relay) invoke(ctx context.Context, s subscription, ev Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return r.Transact(ctx, func(tx *Tx) error {
		return s.fn(ctx, tx, ev)
	})
}

func (r *Relay) store(ctx context.Context, ev Event, handlers, failed int) {
	payload, err := json.Marshal(ev)
	if err != nil {
		slog.Error("event payload encode failed", "event", ev.EventName(), "error", err)
		payload = []byte("{}")
	}
	entry := LogEntry{
		Name:           ev.EventName(),
		Payload:        datatypes.JSON(payload),
		Handlers:       handlers,
		FailedHandlers: failed,
	}
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		slog.Error("event log write failed", "event", ev.EventName(), "error", err)
	}
}
