// Package events publishes booking lifecycle events for downstream consumers
// such as notification delivery.
package events

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/google/uuid"
)

// Event types double as AMQP routing keys
const (
	TypeBookingCreated   = "booking.created"
	TypeBookingUpdated   = "booking.updated"
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeBookingDeleted   = "booking.deleted"
)

// BookingEvent is the message body published for every booking mutation.
type BookingEvent struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	BookingID    int64     `json:"booking_id"`
	DisciplineID int64     `json:"discipline_id"`
	RequesterID  int64     `json:"requester_id"`
	ActorID      int64     `json:"actor_id"`
	Kind         string    `json:"kind"`
	Status       string    `json:"status"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	MeetingLink  *string   `json:"meeting_link,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewBookingEvent snapshots b as an event of type typ caused by actorID.
func NewBookingEvent(typ string, b *model.Booking, actorID int64) BookingEvent {
	return BookingEvent{
		ID:           uuid.NewString(),
		Type:         typ,
		BookingID:    b.ID,
		DisciplineID: b.DisciplineID,
		RequesterID:  b.RequesterID,
		ActorID:      actorID,
		Kind:         string(b.Kind),
		Status:       string(b.Status),
		ScheduledAt:  b.ScheduledAt,
		MeetingLink:  b.MeetingLink,
		OccurredAt:   time.Now().UTC(),
	}
}

// Nop drops every event. Used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, BookingEvent) error { return nil }
