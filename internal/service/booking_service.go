package service

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Freeeeeet/tutoring_scheduler/internal/events"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"go.uber.org/zap"
)

// ListView selects which independent view of bookings a listing uses.
type ListView string

const (
	// ViewAuto is the role-precedence scope: monitor, professor, then owner.
	ViewAuto ListView = "auto"
	// ViewMine is always the caller's own requests.
	ViewMine ListView = "mine"
)

// CreateBookingInput is what a caller supplies to request a session
type CreateBookingInput struct {
	DisciplineID int64
	Kind         model.SessionKind
	ScheduledAt  time.Time
	Subject      string
	Description  string
}

// EditBookingInput is a partial update. Nil fields are kept.
type EditBookingInput struct {
	DisciplineID *int64
	Kind         *model.SessionKind
	ScheduledAt  *time.Time
	Subject      *string
	Description  *string
}

type BookingService struct {
	store    BookingStore
	catalog  Catalog
	scopes   *AccessScopeResolver
	meetings MeetingLinkProvider
	events   EventPublisher
	logger   *zap.Logger
	now      func() time.Time
}

func NewBookingService(
	store BookingStore,
	catalog Catalog,
	scopes *AccessScopeResolver,
	meetings MeetingLinkProvider,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &BookingService{
		store:    store,
		catalog:  catalog,
		scopes:   scopes,
		meetings: meetings,
		events:   publisher,
		logger:   logger,
		now:      time.Now,
	}
}

// Create requests a tutoring session. The store rejects a second live booking
// for the same discipline and instant.
func (s *BookingService) Create(ctx context.Context, caller Caller, in CreateBookingInput) (*model.Booking, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if err := s.validateFields(&in.Kind, &in.ScheduledAt, &in.Subject, &in.Description); err != nil {
		return nil, err
	}

	if _, err := s.catalog.GetDiscipline(ctx, in.DisciplineID); err != nil {
		return nil, fmt.Errorf("get discipline: %w", err)
	}

	link := model.PlaceholderLink(in.Kind)
	booking := &model.Booking{
		DisciplineID: in.DisciplineID,
		RequesterID:  caller.UserID,
		Kind:         in.Kind,
		Status:       model.BookingStatusAwaiting,
		ScheduledAt:  in.ScheduledAt.UTC(),
		Subject:      in.Subject,
		Description:  in.Description,
		MeetingLink:  &link,
	}

	if err := s.store.Insert(ctx, booking); err != nil {
		if errors.Is(err, model.ErrConflict) {
			s.logger.Info("Booking conflict",
				zap.Int64("discipline_id", in.DisciplineID),
				zap.Time("scheduled_at", booking.ScheduledAt),
				zap.Int64("user_id", caller.UserID),
			)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("discipline_id", booking.DisciplineID),
		zap.Int64("user_id", caller.UserID),
		zap.String("kind", string(booking.Kind)),
	)
	s.publish(ctx, events.TypeBookingCreated, booking, caller.UserID)

	return booking, nil
}

// Confirm moves a booking to confirmed. Only a monitor of the booking's
// discipline may do it. Virtual sessions get a join URL first; if the
// provider fails the booking is left untouched.
func (s *BookingService) Confirm(ctx context.Context, caller Caller, bookingID int64) (*model.Booking, error) {
	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	membership, err := s.scopes.Membership(ctx, caller)
	if err != nil {
		return nil, err
	}

	if !membership.IsMonitorOf(booking.DisciplineID) {
		s.logger.Warn("Confirm denied",
			zap.Int64("booking_id", bookingID),
			zap.Int64("user_id", caller.UserID),
		)
		return nil, fmt.Errorf("only a monitor of discipline %d can confirm: %w", booking.DisciplineID, model.ErrForbidden)
	}

	if !booking.Status.CanTransitionTo(model.BookingStatusConfirmed) {
		return nil, fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, model.ErrInvalidTransition)
	}

	var link *string
	if booking.IsVirtual() {
		url, err := s.meetings.CreateMeeting(ctx, booking.ScheduledAt)
		if err != nil {
			s.logger.Error("Failed to create meeting",
				zap.Int64("booking_id", bookingID),
				zap.Error(err),
			)
			return nil, fmt.Errorf("%w: %v", model.ErrMeetingUnavailable, err)
		}
		link = &url
	}

	confirmed, err := s.store.TransitionStatus(ctx, bookingID, booking.Status, model.BookingStatusConfirmed, link)
	if err != nil {
		if link != nil {
			s.logger.Warn("Meeting created for a booking that was not confirmed",
				zap.Int64("booking_id", bookingID),
				zap.String("join_url", *link),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	s.logger.Info("Booking confirmed",
		zap.Int64("booking_id", bookingID),
		zap.Int64("discipline_id", confirmed.DisciplineID),
		zap.Int64("user_id", caller.UserID),
	)
	s.publish(ctx, events.TypeBookingConfirmed, confirmed, caller.UserID)

	return confirmed, nil
}

// Edit changes a booking that still awaits confirmation. Only the requester
// may do it; a new instant or discipline is checked by the store's index.
func (s *BookingService) Edit(ctx context.Context, caller Caller, bookingID int64, in EditBookingInput) (*model.Booking, error) {
	if in.Subject != nil {
		trimmed := strings.TrimSpace(*in.Subject)
		in.Subject = &trimmed
	}
	if err := s.validateFields(in.Kind, in.ScheduledAt, in.Subject, in.Description); err != nil {
		return nil, err
	}

	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking.RequesterID != caller.UserID {
		return nil, fmt.Errorf("only the requester can edit booking %d: %w", bookingID, model.ErrForbidden)
	}

	if !booking.IsAwaiting() {
		return nil, fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, model.ErrInvalidTransition)
	}

	patch := model.BookingPatch{
		DisciplineID: in.DisciplineID,
		Kind:         in.Kind,
		ScheduledAt:  in.ScheduledAt,
		Subject:      in.Subject,
		Description:  in.Description,
	}
	if patch.IsEmpty() {
		return booking, nil
	}

	if in.DisciplineID != nil && *in.DisciplineID != booking.DisciplineID {
		if _, err := s.catalog.GetDiscipline(ctx, *in.DisciplineID); err != nil {
			return nil, fmt.Errorf("get discipline: %w", err)
		}
	}

	if in.Kind != nil && *in.Kind != booking.Kind {
		link := model.PlaceholderLink(*in.Kind)
		patch.MeetingLink = &link
	}

	updated, err := s.store.Update(ctx, bookingID, patch)
	if err != nil {
		return nil, fmt.Errorf("edit booking: %w", err)
	}

	s.logger.Info("Booking edited",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", caller.UserID),
	)
	s.publish(ctx, events.TypeBookingUpdated, updated, caller.UserID)

	return updated, nil
}

// Cancel cancels a booking. Allowed for its requester, for monitors and
// professors of its discipline and for admins.
func (s *BookingService) Cancel(ctx context.Context, caller Caller, bookingID int64) (*model.Booking, error) {
	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking.RequesterID != caller.UserID && !caller.Admin {
		membership, err := s.scopes.Membership(ctx, caller)
		if err != nil {
			return nil, err
		}
		if !membership.IsStaffOf(booking.DisciplineID) {
			return nil, fmt.Errorf("no permission to cancel booking %d: %w", bookingID, model.ErrForbidden)
		}
	}

	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return nil, fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, model.ErrInvalidTransition)
	}

	cancelled, err := s.store.TransitionStatus(ctx, bookingID, booking.Status, model.BookingStatusCancelled, nil)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", caller.UserID),
		zap.String("previous_status", string(booking.Status)),
	)
	s.publish(ctx, events.TypeBookingCancelled, cancelled, caller.UserID)

	return cancelled, nil
}

// Delete removes the caller's own booking while it awaits confirmation.
func (s *BookingService) Delete(ctx context.Context, caller Caller, bookingID int64) error {
	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}

	if booking.RequesterID != caller.UserID {
		return fmt.Errorf("only the requester can delete booking %d: %w", bookingID, model.ErrForbidden)
	}

	if !booking.IsAwaiting() {
		return fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, model.ErrInvalidTransition)
	}

	if err := s.store.Delete(ctx, bookingID); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	s.logger.Info("Booking deleted",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", caller.UserID),
	)
	s.publish(ctx, events.TypeBookingDeleted, booking, caller.UserID)

	return nil
}

// Get returns a booking the caller may see: one inside their scope or one
// they requested.
func (s *BookingService) Get(ctx context.Context, caller Caller, bookingID int64) (*model.Booking, error) {
	booking, err := s.store.Get(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking.RequesterID == caller.UserID || caller.Admin {
		return booking, nil
	}

	scope, _, err := s.scopes.BookingScope(ctx, caller)
	if err != nil {
		return nil, err
	}

	if !BookingInScope(scope, booking) {
		return nil, fmt.Errorf("booking %d is outside the %s scope: %w", bookingID, scope.Name(), model.ErrForbidden)
	}

	return booking, nil
}

// List returns the caller's bookings for view, narrowed by filter. The
// result is lazy and can be ranged over once.
func (s *BookingService) List(ctx context.Context, caller Caller, view ListView, filter model.BookingFilter) (iter.Seq2[*model.Booking, error], error) {
	var scope Scope
	switch view {
	case ViewMine:
		scope = OwnerScope{UserID: caller.UserID}
	case ViewAuto, "":
		if caller.Admin {
			scope = OpenScope{}
			break
		}
		resolved, _, err := s.scopes.BookingScope(ctx, caller)
		if err != nil {
			return nil, err
		}
		scope = resolved
	default:
		return nil, fmt.Errorf("unknown view %q: %w", view, model.ErrValidation)
	}

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", filter.Status, model.ErrValidation)
	}

	s.logger.Debug("Listing bookings",
		zap.Int64("user_id", caller.UserID),
		zap.String("scope", scope.Name()),
	)

	return once(s.store.List(ctx, RestrictBookings(scope, filter))), nil
}

func (s *BookingService) validateFields(kind *model.SessionKind, at *time.Time, subject, description *string) error {
	if kind != nil && !kind.Valid() {
		return fmt.Errorf("unknown session kind %q: %w", *kind, model.ErrValidation)
	}
	if at != nil {
		if at.IsZero() {
			return fmt.Errorf("scheduled time is required: %w", model.ErrValidation)
		}
		if !at.After(s.now()) {
			return fmt.Errorf("scheduled time must be in the future: %w", model.ErrValidation)
		}
	}
	if subject != nil {
		n := utf8.RuneCountInString(*subject)
		if n == 0 || n > model.SubjectMaxLength {
			return fmt.Errorf("subject must have 1 to %d characters: %w", model.SubjectMaxLength, model.ErrValidation)
		}
	}
	if description != nil && utf8.RuneCountInString(*description) > model.DescriptionMaxLength {
		return fmt.Errorf("description exceeds %d characters: %w", model.DescriptionMaxLength, model.ErrValidation)
	}
	return nil
}

// publish never fails the request: the booking is already committed.
func (s *BookingService) publish(ctx context.Context, typ string, b *model.Booking, actorID int64) {
	if err := s.events.Publish(ctx, events.NewBookingEvent(typ, b, actorID)); err != nil {
		s.logger.Warn("Failed to publish booking event",
			zap.String("type", typ),
			zap.Int64("booking_id", b.ID),
			zap.Error(err),
		)
	}
}
