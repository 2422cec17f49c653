package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBooking(disciplineID, requesterID int64, at time.Time) *model.Booking {
	link := model.PlaceholderLink(model.SessionKindInPerson)
	return &model.Booking{
		DisciplineID: disciplineID,
		RequesterID:  requesterID,
		Kind:         model.SessionKindInPerson,
		Status:       model.BookingStatusAwaiting,
		ScheduledAt:  at,
		Subject:      "Vectors",
		MeetingLink:  &link,
	}
}

func TestBookingStore_UniqueLiveInstant(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	first := newBooking(1, 7, at)
	require.NoError(t, s.Insert(ctx, first))
	assert.Equal(t, int64(1), first.ID)

	// the same instant in another zone is the same instant
	sameInstant := at.In(time.FixedZone("BRT", -3*3600))
	err := s.Insert(ctx, newBooking(1, 8, sameInstant))
	assert.ErrorIs(t, err, model.ErrSlotAlreadyBooked)

	require.NoError(t, s.Insert(ctx, newBooking(2, 8, at)))

	_, err = s.TransitionStatus(ctx, first.ID, model.BookingStatusAwaiting, model.BookingStatusCancelled, nil)
	require.NoError(t, err)
	require.NoError(t, s.Insert(ctx, newBooking(1, 8, at)))
}

func TestBookingStore_TransitionStatus(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()
	b := newBooking(1, 7, time.Now().Add(time.Hour))
	require.NoError(t, s.Insert(ctx, b))

	link := "https://zoom.us/j/1"
	confirmed, err := s.TransitionStatus(ctx, b.ID, model.BookingStatusAwaiting, model.BookingStatusConfirmed, &link)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, link, *confirmed.MeetingLink)

	// stale expectation
	_, err = s.TransitionStatus(ctx, b.ID, model.BookingStatusAwaiting, model.BookingStatusCancelled, nil)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = s.TransitionStatus(ctx, 99, model.BookingStatusAwaiting, model.BookingStatusCancelled, nil)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestBookingStore_UpdateAndDelete(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()
	at := time.Now().Add(time.Hour).UTC()

	a := newBooking(1, 7, at)
	b := newBooking(1, 8, at.Add(time.Hour))
	require.NoError(t, s.Insert(ctx, a))
	require.NoError(t, s.Insert(ctx, b))

	_, err := s.Update(ctx, b.ID, model.BookingPatch{ScheduledAt: &at})
	assert.ErrorIs(t, err, model.ErrSlotAlreadyBooked)

	subject := "Matrices"
	updated, err := s.Update(ctx, a.ID, model.BookingPatch{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "Matrices", updated.Subject)

	require.NoError(t, s.Delete(ctx, a.ID))
	_, err = s.Get(ctx, a.ID)
	assert.ErrorIs(t, err, model.ErrBookingNotFound)

	_, err = s.Update(ctx, b.ID, model.BookingPatch{ScheduledAt: &at})
	require.NoError(t, err)
}

func TestBookingStore_ReturnsCopies(t *testing.T) {
	s := NewBookingStore()
	ctx := context.Background()
	b := newBooking(1, 7, time.Now().Add(time.Hour))
	require.NoError(t, s.Insert(ctx, b))

	got, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	*got.MeetingLink = "tampered"
	got.Subject = "tampered"

	again, err := s.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vectors", again.Subject)
	assert.Equal(t, model.LinkNotApplicable, *again.MeetingLink)
}

func TestBookingStore_ListStopsOnCancelledContext(t *testing.T) {
	s := NewBookingStore()
	require.NoError(t, s.Insert(context.Background(), newBooking(1, 7, time.Now().Add(time.Hour))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for b, err := range s.List(ctx, model.BookingFilter{}) {
		assert.Nil(t, b)
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestSlotStore_Unique(t *testing.T) {
	s := NewSlotStore()
	ctx := context.Background()
	slot := func(start int) *model.RecurringSlot {
		return &model.RecurringSlot{
			DisciplineID: 1,
			MonitorID:    10,
			Weekday:      time.Thursday,
			Start:        model.TimeOfDay{Hour: start},
			End:          model.TimeOfDay{Hour: start + 1},
		}
	}

	require.NoError(t, s.Insert(ctx, slot(14)))
	assert.ErrorIs(t, s.Insert(ctx, slot(14)), model.ErrDuplicateRecurringSlot)

	other := slot(16)
	require.NoError(t, s.Insert(ctx, other))

	start := model.TimeOfDay{Hour: 14}
	_, err := s.Update(ctx, other.ID, model.SlotPatch{Start: &start})
	assert.ErrorIs(t, err, model.ErrDuplicateRecurringSlot)

	_, err = s.Get(ctx, 99)
	assert.ErrorIs(t, err, model.ErrSlotNotFound)
}

func TestCatalog_ResolveRoles(t *testing.T) {
	c := NewCatalog()
	c.AddDiscipline(model.Discipline{ID: 2, Monitors: []int64{10}, Professors: []int64{20}})
	c.AddDiscipline(model.Discipline{ID: 1, Monitors: []int64{10}})
	c.LinkTelegram(555, 10)

	m, err := c.ResolveRoles(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, m.MonitorOf)
	assert.Empty(t, m.ProfessorOf)

	userID, err := c.UserIDByTelegram(context.Background(), 555)
	require.NoError(t, err)
	assert.Equal(t, int64(10), userID)

	_, err = c.UserIDByTelegram(context.Background(), 556)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)

	_, err = c.GetDiscipline(context.Background(), 3)
	assert.ErrorIs(t, err, model.ErrDisciplineNotFound)
}
