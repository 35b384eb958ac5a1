// AngelaMos | 2026
// events.go

package events

import (
	"context"
	"time"
)

type Type string

const (
	ProductCreated  Type = "product.created"
	ProductUpdated  Type = "product.updated"
	ProductDeleted  Type = "product.deleted"
	CategoryCreated Type = "category.created"
	CategoryUpdated Type = "category.updated"
	CategoryDeleted Type = "category.deleted"
)

// Event is one catalog change. Key groups events for the same entity onto
// one partition.
type Event struct {
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	ActorID    string    `json:"actorId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload,omitempty"`
}

func New(t Type, key, actorID string, payload any) Event {
	return Event{
		Type:       t,
		Key:        key,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher never fails the caller: delivery problems are logged by the
// implementation.
type Publisher interface {
	Publish(ctx context.Context, e Event)
	Close(ctx context.Context) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

func (NopPublisher) Close(context.Context) error { return nil }
