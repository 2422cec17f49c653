package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusAwaiting, BookingStatusConfirmed, true},
		{BookingStatusAwaiting, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusAwaiting, false},
		{BookingStatusConfirmed, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusAwaiting, false},
		{BookingStatusCancelled, BookingStatusCancelled, false},
		{BookingStatus("done"), BookingStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPlaceholderLink(t *testing.T) {
	assert.Equal(t, LinkPendingConfirmation, PlaceholderLink(SessionKindVirtual))
	assert.Equal(t, LinkNotApplicable, PlaceholderLink(SessionKindInPerson))
}

func TestBooking_Apply(t *testing.T) {
	link := "old"
	b := Booking{DisciplineID: 1, Kind: SessionKindInPerson, Subject: "a", MeetingLink: &link}

	loc := time.FixedZone("BRT", -3*3600)
	at := time.Date(2025, 3, 10, 11, 0, 0, 0, loc)
	kind := SessionKindVirtual
	newLink := "new"
	b.Apply(BookingPatch{Kind: &kind, ScheduledAt: &at, MeetingLink: &newLink})

	assert.Equal(t, int64(1), b.DisciplineID)
	assert.Equal(t, SessionKindVirtual, b.Kind)
	assert.Equal(t, time.UTC, b.ScheduledAt.Location())
	assert.True(t, at.Equal(b.ScheduledAt))
	assert.Equal(t, "new", *b.MeetingLink)
	assert.Equal(t, "old", link)
}

func TestBookingFilter_Matches(t *testing.T) {
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	b := &Booking{DisciplineID: 1, RequesterID: 7, Status: BookingStatusAwaiting, ScheduledAt: at}

	sameDay := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	dayBefore := sameDay.AddDate(0, 0, -1)
	dayAfter := sameDay.AddDate(0, 0, 1)
	requester := int64(7)
	otherRequester := int64(8)

	tests := []struct {
		name   string
		filter BookingFilter
		want   bool
	}{
		{"empty", BookingFilter{}, true},
		{"discipline match", BookingFilter{DisciplineIDs: []int64{2, 1}}, true},
		{"discipline miss", BookingFilter{DisciplineIDs: []int64{2}}, false},
		{"empty discipline set", BookingFilter{DisciplineIDs: []int64{}}, false},
		{"requester", BookingFilter{RequesterID: &requester}, true},
		{"other requester", BookingFilter{RequesterID: &otherRequester}, false},
		{"status", BookingFilter{Status: BookingStatusConfirmed}, false},
		{"on day", BookingFilter{On: &sameDay}, true},
		{"after previous day", BookingFilter{After: &dayBefore}, true},
		{"after same day is strict", BookingFilter{After: &sameDay}, false},
		{"before next day", BookingFilter{Before: &dayAfter}, true},
		{"before same day is strict", BookingFilter{Before: &sameDay}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(b))
		})
	}
}
