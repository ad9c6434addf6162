package events

import (
	"context"
	"sync"
	"time"

	"github.com/mlinyun/Peekpa/pkg/logx"
)

// Event types published by the recruiting services
const (
	JobCreated          = "job.created"
	JobFinished         = "job.finished"
	InterviewApplied    = "interview.applied"
	InterviewUpdated    = "interview.updated"
	InvitationCreated   = "invitation.created"
	InvitationResponded = "invitation.responded"
)

// Event is a domain fact emitted after a transaction commits
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func New(eventType string, payload any) Event {
	return Event{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload}
}

// Publisher delivers events to the outside world
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Emit publishes best effort: failures are logged and swallowed
func Emit(ctx context.Context, pub Publisher, ev Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, ev); err != nil {
		logx.WithFields(logx.Fields{
			"event": ev.Type,
			"error": err.Error(),
		}).Warn("failed to publish event")
	}
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

// Types returns the recorded event types in publish order
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type
	}
	return out
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
