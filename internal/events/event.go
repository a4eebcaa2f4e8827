// Package events carries domain events from the aggregates that record them to the
// handlers that react to them, strictly after the recording unit of work has committed.
package events

// Event is a fact recorded by an aggregate during a business operation.
type Event interface {
	EventName() string
}

// Aggregate is anything that buffers events until its unit of work commits.
type Aggregate interface {
	PullEvents() []Event
}

// Recorder is embedded by aggregates to buffer events for the current operation.
// It is not safe for concurrent use; an aggregate instance belongs to one flow.
type Recorder struct {
	pending []Event
}

// Record appends an event to the buffer.
func (r *Recorder) Record(e Event) {
	r.pending = append(r.pending, e)
}

// PullEvents returns the buffered events in insertion order and clears the buffer.
func (r *Recorder) PullEvents() []Event {
	out := r.pending
	r.pending = nil
	return out
}

// PendingEvents returns the buffered events without clearing them.
func (r *Recorder) PendingEvents() []Event {
	return r.pending
}
