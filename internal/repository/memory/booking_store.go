// Package memory holds in-process stores with the same constraints as the
// Postgres repositories. They back tests and the "memory" storage driver.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type bookingKey struct {
	disciplineID int64
	at           int64
}

// BookingStore keeps bookings in a map guarded by one mutex. The index plays
// the role of the partial unique index: it only holds live bookings.
type BookingStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.Booking
	live   map[bookingKey]int64
	now    func() time.Time
}

func NewBookingStore() *BookingStore {
	return &BookingStore{
		rows: make(map[int64]*model.Booking),
		live: make(map[bookingKey]int64),
		now:  time.Now,
	}
}

func keyOf(b *model.Booking) bookingKey {
	return bookingKey{disciplineID: b.DisciplineID, at: b.ScheduledAt.UTC().UnixNano()}
}

func (s *BookingStore) Insert(_ context.Context, booking *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	booking.ScheduledAt = booking.ScheduledAt.UTC()
	if booking.Status != model.BookingStatusCancelled {
		if _, taken := s.live[keyOf(booking)]; taken {
			return model.ErrSlotAlreadyBooked
		}
	}

	s.nextID++
	now := s.now().UTC()
	booking.ID = s.nextID
	booking.CreatedAt = now
	booking.UpdatedAt = now

	stored := cloneBooking(booking)
	s.rows[stored.ID] = stored
	if stored.Status != model.BookingStatusCancelled {
		s.live[keyOf(stored)] = stored.ID
	}
	return nil
}

func (s *BookingStore) Get(_ context.Context, id int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.rows[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (s *BookingStore) Update(_ context.Context, id int64, patch model.BookingPatch) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rows[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	if current.Status != model.BookingStatusAwaiting {
		return nil, fmt.Errorf("booking %d is %s: %w", id, current.Status, model.ErrInvalidTransition)
	}

	next := cloneBooking(current)
	next.Apply(patch)
	if owner, taken := s.live[keyOf(next)]; taken && owner != id {
		return nil, model.ErrSlotAlreadyBooked
	}

	delete(s.live, keyOf(current))
	next.UpdatedAt = s.now().UTC()
	s.rows[id] = next
	s.live[keyOf(next)] = id
	return cloneBooking(next), nil
}

func (s *BookingStore) TransitionStatus(_ context.Context, id int64, from, to model.BookingStatus, link *string) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rows[id]
	if !ok {
		return nil, model.ErrBookingNotFound
	}
	if current.Status != from {
		return nil, fmt.Errorf("booking %d is %s: %w", id, current.Status, model.ErrInvalidTransition)
	}

	next := cloneBooking(current)
	next.Status = to
	if link != nil {
		l := *link
		next.MeetingLink = &l
	}
	next.UpdatedAt = s.now().UTC()

	if to == model.BookingStatusCancelled {
		delete(s.live, keyOf(current))
	}
	s.rows[id] = next
	return cloneBooking(next), nil
}

func (s *BookingStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rows[id]
	if !ok {
		return model.ErrBookingNotFound
	}
	if current.Status != model.BookingStatusAwaiting {
		return fmt.Errorf("booking %d is %s: %w", id, current.Status, model.ErrInvalidTransition)
	}

	delete(s.live, keyOf(current))
	delete(s.rows, id)
	return nil
}

// List snapshots the matching rows when iteration starts.
func (s *BookingStore) List(ctx context.Context, filter model.BookingFilter) iter.Seq2[*model.Booking, error] {
	return func(yield func(*model.Booking, error) bool) {
		s.mu.Lock()
		var matched []*model.Booking
		for _, b := range s.rows {
			if filter.Matches(b) {
				matched = append(matched, cloneBooking(b))
			}
		}
		s.mu.Unlock()

		slices.SortFunc(matched, func(a, b *model.Booking) int {
			if c := a.ScheduledAt.Compare(b.ScheduledAt); c != 0 {
				return c
			}
			return cmp.Compare(a.ID, b.ID)
		})

		for _, b := range matched {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(b, nil) {
				return
			}
		}
	}
}

func cloneBooking(b *model.Booking) *model.Booking {
	c := *b
	if b.MeetingLink != nil {
		link := *b.MeetingLink
		c.MeetingLink = &link
	}
	return &c
}
