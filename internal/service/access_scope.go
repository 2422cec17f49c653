package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"go.uber.org/zap"
)

// Scope is the set of bookings or slots a caller may act on. It is one of
// MonitorScope, ProfessorScope, OwnerScope or OpenScope.
type Scope interface {
	Name() string
	scope()
}

// MonitorScope covers everything in the disciplines the caller monitors.
type MonitorScope struct {
	Disciplines []int64
}

// ProfessorScope covers everything in the disciplines the caller teaches.
type ProfessorScope struct {
	Disciplines []int64
}

// OwnerScope covers the bookings the caller requested.
type OwnerScope struct {
	UserID int64
}

// OpenScope covers every slot. For bookings it is only produced for admins.
type OpenScope struct{}

func (MonitorScope) Name() string   { return "monitor" }
func (ProfessorScope) Name() string { return "professor" }
func (OwnerScope) Name() string     { return "owner" }
func (OpenScope) Name() string      { return "open" }

func (MonitorScope) scope()   {}
func (ProfessorScope) scope() {}
func (OwnerScope) scope()     {}
func (OpenScope) scope()      {}

// BookingScopeFor picks exactly one scope: monitor, then professor, then owner.
// The branches never merge.
func BookingScopeFor(m model.Membership) Scope {
	switch {
	case m.MonitorsAny():
		return MonitorScope{Disciplines: slices.Clone(m.MonitorOf)}
	case m.TeachesAny():
		return ProfessorScope{Disciplines: slices.Clone(m.ProfessorOf)}
	default:
		return OwnerScope{UserID: m.UserID}
	}
}

// SlotScopeFor mirrors BookingScopeFor, except that callers without a staff
// role see every office hour.
func SlotScopeFor(m model.Membership) Scope {
	switch {
	case m.MonitorsAny():
		return MonitorScope{Disciplines: slices.Clone(m.MonitorOf)}
	case m.TeachesAny():
		return ProfessorScope{Disciplines: slices.Clone(m.ProfessorOf)}
	default:
		return OpenScope{}
	}
}

// RestrictBookings narrows f to the bookings inside scope.
func RestrictBookings(scope Scope, f model.BookingFilter) model.BookingFilter {
	switch s := scope.(type) {
	case MonitorScope:
		f.DisciplineIDs = intersect(f.DisciplineIDs, s.Disciplines)
	case ProfessorScope:
		f.DisciplineIDs = intersect(f.DisciplineIDs, s.Disciplines)
	case OwnerScope:
		if f.RequesterID != nil && *f.RequesterID != s.UserID {
			f.DisciplineIDs = []int64{}
		}
		id := s.UserID
		f.RequesterID = &id
	case OpenScope:
	default:
		f.DisciplineIDs = []int64{}
	}
	return f
}

// RestrictSlots narrows f to the slots inside scope.
func RestrictSlots(scope Scope, f model.SlotFilter) model.SlotFilter {
	switch s := scope.(type) {
	case MonitorScope:
		f.DisciplineIDs = intersect(f.DisciplineIDs, s.Disciplines)
	case ProfessorScope:
		f.DisciplineIDs = intersect(f.DisciplineIDs, s.Disciplines)
	case OpenScope:
	default:
		f.DisciplineIDs = []int64{}
	}
	return f
}

// BookingInScope reports whether b is inside scope.
func BookingInScope(scope Scope, b *model.Booking) bool {
	switch s := scope.(type) {
	case MonitorScope:
		return slices.Contains(s.Disciplines, b.DisciplineID)
	case ProfessorScope:
		return slices.Contains(s.Disciplines, b.DisciplineID)
	case OwnerScope:
		return b.RequesterID == s.UserID
	case OpenScope:
		return true
	}
	return false
}

// SlotInScope reports whether slot is inside scope.
func SlotInScope(scope Scope, slot *model.RecurringSlot) bool {
	switch s := scope.(type) {
	case MonitorScope:
		return slices.Contains(s.Disciplines, slot.DisciplineID)
	case ProfessorScope:
		return slices.Contains(s.Disciplines, slot.DisciplineID)
	case OpenScope:
		return true
	}
	return false
}

// intersect keeps requested ids that are also allowed. A nil request means
// "all allowed"; the result is never nil so an empty scope matches nothing.
func intersect(requested, allowed []int64) []int64 {
	if requested == nil {
		return append([]int64{}, allowed...)
	}
	out := []int64{}
	for _, id := range requested {
		if slices.Contains(allowed, id) {
			out = append(out, id)
		}
	}
	return out
}

// AccessScopeResolver resolves a caller's role membership once per request.
type AccessScopeResolver struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewAccessScopeResolver(catalog Catalog, logger *zap.Logger) *AccessScopeResolver {
	return &AccessScopeResolver{
		catalog: catalog,
		logger:  logger,
	}
}

// Membership resolves the caller's monitor/professor disciplines.
func (r *AccessScopeResolver) Membership(ctx context.Context, caller Caller) (model.Membership, error) {
	m, err := r.catalog.ResolveRoles(ctx, caller.UserID)
	if err != nil {
		return model.Membership{}, fmt.Errorf("resolve roles: %w", err)
	}
	m.UserID = caller.UserID
	m.Admin = caller.Admin

	r.logger.Debug("Roles resolved",
		zap.Int64("user_id", caller.UserID),
		zap.Int64s("monitor_of", m.MonitorOf),
		zap.Int64s("professor_of", m.ProfessorOf),
		zap.Bool("admin", m.Admin),
	)

	return m, nil
}

// BookingScope resolves the caller's booking scope.
func (r *AccessScopeResolver) BookingScope(ctx context.Context, caller Caller) (Scope, model.Membership, error) {
	m, err := r.Membership(ctx, caller)
	if err != nil {
		return nil, model.Membership{}, err
	}
	return BookingScopeFor(m), m, nil
}

// SlotScope resolves the caller's slot scope.
func (r *AccessScopeResolver) SlotScope(ctx context.Context, caller Caller) (Scope, model.Membership, error) {
	m, err := r.Membership(ctx, caller)
	if err != nil {
		return nil, model.Membership{}, err
	}
	return SlotScopeFor(m), m, nil
}
