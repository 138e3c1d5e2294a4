package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	CourseCreated Type = "course.created"
	CourseUpdated Type = "course.updated"
	CourseDeleted Type = "course.deleted"
)

// Event announces a committed change to a record.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

func New(typ Type, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Publish must not block on the network for
// longer than it takes to enqueue the event.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }
