// Package events delivers post-commit notifications of catalog and
// cart changes to an optional sink. The sink is one-way: emitting never
// affects the outcome of the operation that triggered it.
package events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the repositories and the reconciliation engine.
const (
	ProductCreated  = "product.created"
	ProductUpdated  = "product.updated"
	ProductDeleted  = "product.deleted"
	CartCreated     = "cart.created"
	CartItemAdded   = "cart.item_added"
	CartItemRemoved = "cart.item_removed"
	CartCleared     = "cart.cleared"
)

// Event describes one committed mutation.
type Event struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	EntityID string    `json:"entity_id"`
	At       time.Time `json:"at"`
}

// New builds an event with a fresh id and the current time.
func New(eventType, entityID string) Event {
	return Event{
		ID:       uuid.NewString(),
		Type:     eventType,
		EntityID: entityID,
		At:       time.Now(),
	}
}

// Sink receives events after a successful mutation. Implementations
// must not block the caller for long; delivery is best-effort.
type Sink interface {
	Publish(Event)
}

// LogSink writes events to a structured logger.
type LogSink struct {
	log *slog.Logger
}

func NewLogSink(log *slog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Publish(ev Event) {
	s.log.Info("event",
		"event_id", ev.ID,
		"type", ev.Type,
		"entity_id", ev.EntityID,
	)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Publish(Event) {}
