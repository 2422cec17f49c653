package service

import (
	"testing"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestBookingScopeFor_Precedence(t *testing.T) {
	tests := []struct {
		name       string
		membership model.Membership
		want       Scope
	}{
		{
			name:       "monitor only",
			membership: model.Membership{UserID: 1, MonitorOf: []int64{math}},
			want:       MonitorScope{Disciplines: []int64{math}},
		},
		{
			name:       "monitor and professor",
			membership: model.Membership{UserID: 1, MonitorOf: []int64{math}, ProfessorOf: []int64{physics}},
			want:       MonitorScope{Disciplines: []int64{math}},
		},
		{
			name:       "professor only",
			membership: model.Membership{UserID: 1, ProfessorOf: []int64{physics, biology}},
			want:       ProfessorScope{Disciplines: []int64{physics, biology}},
		},
		{
			name:       "no role",
			membership: model.Membership{UserID: 7},
			want:       OwnerScope{UserID: 7},
		},
		{
			name:       "admin without role",
			membership: model.Membership{UserID: 7, Admin: true},
			want:       OwnerScope{UserID: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BookingScopeFor(tt.membership))
		})
	}
}

func TestSlotScopeFor(t *testing.T) {
	assert.Equal(t, OpenScope{}, SlotScopeFor(model.Membership{UserID: 1}))
	assert.Equal(t, MonitorScope{Disciplines: []int64{math}},
		SlotScopeFor(model.Membership{UserID: 1, MonitorOf: []int64{math}, ProfessorOf: []int64{physics}}))
	assert.Equal(t, ProfessorScope{Disciplines: []int64{physics}},
		SlotScopeFor(model.Membership{UserID: 1, ProfessorOf: []int64{physics}}))
}

func TestRestrictBookings(t *testing.T) {
	other := int64(99)

	tests := []struct {
		name  string
		scope Scope
		in    model.BookingFilter
		want  model.BookingFilter
	}{
		{
			name:  "monitor without filter",
			scope: MonitorScope{Disciplines: []int64{math, physics}},
			want:  model.BookingFilter{DisciplineIDs: []int64{math, physics}},
		},
		{
			name:  "monitor narrows requested disciplines",
			scope: MonitorScope{Disciplines: []int64{math}},
			in:    model.BookingFilter{DisciplineIDs: []int64{math, biology}},
			want:  model.BookingFilter{DisciplineIDs: []int64{math}},
		},
		{
			name:  "professor outside scope",
			scope: ProfessorScope{Disciplines: []int64{physics}},
			in:    model.BookingFilter{DisciplineIDs: []int64{biology}},
			want:  model.BookingFilter{DisciplineIDs: []int64{}},
		},
		{
			name:  "owner pins requester",
			scope: OwnerScope{UserID: 5},
			in:    model.BookingFilter{Status: model.BookingStatusConfirmed},
			want:  model.BookingFilter{RequesterID: ptr(int64(5)), Status: model.BookingStatusConfirmed},
		},
		{
			name:  "owner asking for someone else",
			scope: OwnerScope{UserID: 5},
			in:    model.BookingFilter{RequesterID: &other},
			want:  model.BookingFilter{DisciplineIDs: []int64{}, RequesterID: ptr(int64(5))},
		},
		{
			name:  "open scope keeps the filter",
			scope: OpenScope{},
			in:    model.BookingFilter{DisciplineIDs: []int64{biology}},
			want:  model.BookingFilter{DisciplineIDs: []int64{biology}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RestrictBookings(tt.scope, tt.in))
		})
	}
}

func TestBookingInScope(t *testing.T) {
	b := &model.Booking{DisciplineID: math, RequesterID: student}

	assert.True(t, BookingInScope(MonitorScope{Disciplines: []int64{math}}, b))
	assert.False(t, BookingInScope(MonitorScope{Disciplines: []int64{physics}}, b))
	assert.True(t, BookingInScope(ProfessorScope{Disciplines: []int64{math}}, b))
	assert.True(t, BookingInScope(OwnerScope{UserID: student}, b))
	assert.False(t, BookingInScope(OwnerScope{UserID: student2}, b))
	assert.True(t, BookingInScope(OpenScope{}, b))
}

func ptr[T any](v T) *T {
	return &v
}
