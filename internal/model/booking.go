package model

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	BookingStatusAwaiting  BookingStatus = "awaiting_confirmation" // Waiting for a monitor
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type SessionKind string

const (
	SessionKindInPerson SessionKind = "in_person"
	SessionKindVirtual  SessionKind = "virtual"
)

// Placeholder meeting links stored until a real join URL exists.
const (
	LinkPendingConfirmation = "link available once confirmed"
	LinkNotApplicable       = "no link for in-person sessions"
)

const (
	SubjectMaxLength     = 120
	DescriptionMaxLength = 2000
)

type Booking struct {
	ID           int64         `json:"id"`
	DisciplineID int64         `json:"discipline_id"`
	RequesterID  int64         `json:"requester_id"`
	Kind         SessionKind   `json:"kind"`
	Status       BookingStatus `json:"status"`
	ScheduledAt  time.Time     `json:"scheduled_at"`
	Subject      string        `json:"subject"`
	Description  string        `json:"description"`
	MeetingLink  *string       `json:"meeting_link"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// BookingPatch holds the fields a requester may change while the booking
// awaits confirmation. Nil means "keep".
type BookingPatch struct {
	DisciplineID *int64
	Kind         *SessionKind
	ScheduledAt  *time.Time
	Subject      *string
	Description  *string
	MeetingLink  *string
}

// IsEmpty reports whether the patch changes nothing.
func (p BookingPatch) IsEmpty() bool {
	return p.DisciplineID == nil && p.Kind == nil && p.ScheduledAt == nil &&
		p.Subject == nil && p.Description == nil && p.MeetingLink == nil
}

// BookingFilter narrows a booking listing. Zero values mean "any".
type BookingFilter struct {
	DisciplineIDs []int64 // nil = any discipline; empty non-nil = none
	RequesterID   *int64
	Status        BookingStatus
	On            *time.Time // same calendar day (UTC)
	After         *time.Time // day strictly after
	Before        *time.Time // day strictly before
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusAwaiting, BookingStatusConfirmed, BookingStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine allows s -> next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusAwaiting:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	}
	return false
}

// Valid reports whether k is a known session kind.
func (k SessionKind) Valid() bool {
	return k == SessionKindInPerson || k == SessionKindVirtual
}

// PlaceholderLink returns the link stored for an unconfirmed booking of kind k.
func PlaceholderLink(k SessionKind) string {
	if k == SessionKindVirtual {
		return LinkPendingConfirmation
	}
	return LinkNotApplicable
}

func (b *Booking) IsAwaiting() bool {
	return b.Status == BookingStatusAwaiting
}

func (b *Booking) IsVirtual() bool {
	return b.Kind == SessionKindVirtual
}

// Apply copies the non-nil patch fields into b.
func (b *Booking) Apply(p BookingPatch) {
	if p.DisciplineID != nil {
		b.DisciplineID = *p.DisciplineID
	}
	if p.Kind != nil {
		b.Kind = *p.Kind
	}
	if p.ScheduledAt != nil {
		b.ScheduledAt = p.ScheduledAt.UTC()
	}
	if p.Subject != nil {
		b.Subject = *p.Subject
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.MeetingLink != nil {
		link := *p.MeetingLink
		b.MeetingLink = &link
	}
}

// Matches reports whether b passes every constraint of f.
func (f BookingFilter) Matches(b *Booking) bool {
	if f.DisciplineIDs != nil && !slices.Contains(f.DisciplineIDs, b.DisciplineID) {
		return false
	}
	if f.RequesterID != nil && b.RequesterID != *f.RequesterID {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	day := truncateDay(b.ScheduledAt)
	if f.On != nil && !day.Equal(truncateDay(*f.On)) {
		return false
	}
	if f.After != nil && !day.After(truncateDay(*f.After)) {
		return false
	}
	if f.Before != nil && !day.Before(truncateDay(*f.Before)) {
		return false
	}
	return true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
