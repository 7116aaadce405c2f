package events

import (
	"context"
	"log/slog"
	"sync"
)

// Publisher defines the interface for emitting ledger events. Publication is
// fire-and-forget relative to the write that produced the event: a failed
// publish never rolls back a committed transaction. A durable messaging
// transport can be substituted without touching the ledger core.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to a structured logger. It is the stand-in for a
// real event bus.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger falls back to slog.Default.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// Make sure we conform to the interface
var _ Publisher = (*LogPublisher)(nil)

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "ledger event",
		slog.String("kind", string(event.Kind)),
		slog.String("transaction_id", event.Payload.Id),
		slog.String("user_id", event.Payload.UserId),
		slog.Int64("amount", event.Payload.Amount),
		slog.String("type", string(event.Payload.Type)),
		slog.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

// NoOpPublisher is a publisher that does nothing.
type NoOpPublisher struct{}

// Publish does nothing.
func (p *NoOpPublisher) Publish(ctx context.Context, event Event) error {
	return nil
}

// Recorder is an in-memory publisher that records every published event.
// It is used by tests to assert on emitted events.
type Recorder struct {
	mu     sync.Mutex
	events []Event

	// Err, when set, is returned by every Publish call.
	Err error
}

// Publish records the event.
func (r *Recorder) Publish(ctx context.Context, event Event) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make([]Event, len(r.events))
	copy(copied, r.events)
	return copied
}
