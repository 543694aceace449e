// Package notify fans progression changes out to other observers after they
// are committed.
package notify

import (
	"context"
	"time"
)

type EventType string

const (
	EventEnrolled          EventType = "enrolled"
	EventLevelSwitched     EventType = "level_switched"
	EventPathStarted       EventType = "path_started"
	EventStepCompleted     EventType = "step_completed"
	EventPathEnded         EventType = "path_ended"
	EventPathSkipped       EventType = "path_skipped"
	EventOutreachScheduled EventType = "outreach_scheduled"
	EventOutreachCompleted EventType = "outreach_completed"
	EventInteractionLogged EventType = "interaction_logged"
)

// Event is the wire form of a committed change.
type Event struct {
	Type           EventType `json:"type"`
	ContactID      string    `json:"contact_id"`
	Level          int       `json:"level,omitempty"`
	FromLevel      int       `json:"from_level,omitempty"`
	PathID         string    `json:"path_id,omitempty"`
	PathInstanceID string    `json:"path_instance_id,omitempty"`
	StepIndex      *int      `json:"step_index,omitempty"`
	OutreachID     string    `json:"outreach_id,omitempty"`
	At             time.Time `json:"at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory. Used by tests and by the
// in-process watch mode.
type Recorder struct {
	events chan Event
}

func NewRecorder(buffer int) *Recorder {
	return &Recorder{events: make(chan Event, buffer)}
}

// Publish never blocks; events beyond the buffer are dropped.
func (r *Recorder) Publish(_ context.Context, e Event) error {
	select {
	case r.events <- e:
	default:
	}
	return nil
}

// Drain returns everything recorded so far.
func (r *Recorder) Drain() []Event {
	var out []Event
	for {
		select {
		case e := <-r.events:
			out = append(out, e)
		default:
			return out
		}
	}
}
