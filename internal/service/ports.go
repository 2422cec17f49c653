package service

import (
	"context"
	"iter"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/events"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// BookingStore persists bookings and enforces one live booking per
// (discipline, instant). Implementations translate storage errors into
// model errors.
type BookingStore interface {
	Insert(ctx context.Context, booking *model.Booking) error
	Get(ctx context.Context, id int64) (*model.Booking, error)
	Update(ctx context.Context, id int64, patch model.BookingPatch) (*model.Booking, error)
	TransitionStatus(ctx context.Context, id int64, from, to model.BookingStatus, link *string) (*model.Booking, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter model.BookingFilter) iter.Seq2[*model.Booking, error]
}

// SlotStore persists recurring slots and enforces one slot per
// (monitor, discipline, weekday, start).
type SlotStore interface {
	Insert(ctx context.Context, slot *model.RecurringSlot) error
	Get(ctx context.Context, id int64) (*model.RecurringSlot, error)
	Update(ctx context.Context, id int64, patch model.SlotPatch) (*model.RecurringSlot, error)
	List(ctx context.Context, filter model.SlotFilter) iter.Seq2[*model.RecurringSlot, error]
}

// Catalog is the read-only discipline catalog and role provider.
type Catalog interface {
	GetDiscipline(ctx context.Context, id int64) (*model.Discipline, error)
	ResolveRoles(ctx context.Context, userID int64) (model.Membership, error)
}

// MeetingLinkProvider issues join URLs for virtual sessions.
type MeetingLinkProvider interface {
	CreateMeeting(ctx context.Context, startAt time.Time) (string, error)
}

// EventPublisher hands booking lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event events.BookingEvent) error
}

// Caller is the authenticated principal of a request.
type Caller struct {
	UserID int64
	Admin  bool
}
