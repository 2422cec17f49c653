package model

import (
	"errors"
	"fmt"
)

// Error kinds shared by the stores, services and transports. Concrete errors
// wrap one of these, so callers match with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUpstream          = errors.New("upstream failure")
	ErrValidation        = errors.New("validation failed")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

// Domain errors
var (
	ErrBookingNotFound        = fmt.Errorf("booking %w", ErrNotFound)
	ErrSlotNotFound           = fmt.Errorf("recurring slot %w", ErrNotFound)
	ErrDisciplineNotFound     = fmt.Errorf("discipline %w", ErrNotFound)
	ErrSlotAlreadyBooked      = fmt.Errorf("discipline already has a booking at this time: %w", ErrConflict)
	ErrDuplicateRecurringSlot = fmt.Errorf("monitor already has a slot starting at this time: %w", ErrConflict)
	ErrMeetingUnavailable     = fmt.Errorf("meeting link provider unavailable: %w", ErrUpstream)
)

// ErrSequenceConsumed is yielded when a listing is ranged over a second time.
var ErrSequenceConsumed = errors.New("sequence already consumed")
