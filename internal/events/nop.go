package events

import (
	"context"
	"sync"
)

// NopPublisher drops every event. Used when NATS is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

// RecordingPublisher keeps published events in memory for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []Event

	// Err, when set, is returned from every Publish after recording.
	Err error
}

func (r *RecordingPublisher) Publish(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, prepare(event))
	return r.Err
}

// Events returns a copy of everything published so far.
func (r *RecordingPublisher) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType returns the recorded events of one type.
func (r *RecordingPublisher) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
