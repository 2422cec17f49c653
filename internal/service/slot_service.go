package service

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"go.uber.org/zap"
)

// SlotService manages monitors' recurring office hours
type SlotService struct {
	store   SlotStore
	catalog Catalog
	scopes  *AccessScopeResolver
	logger  *zap.Logger
}

func NewSlotService(store SlotStore, catalog Catalog, scopes *AccessScopeResolver, logger *zap.Logger) *SlotService {
	return &SlotService{
		store:   store,
		catalog: catalog,
		scopes:  scopes,
		logger:  logger,
	}
}

// Create registers a weekly slot. The caller must be the monitor named in the
// slot or a professor of its discipline.
func (s *SlotService) Create(ctx context.Context, caller Caller, slot *model.RecurringSlot) (*model.RecurringSlot, error) {
	slot.Location = strings.TrimSpace(slot.Location)
	if err := validateSlot(slot); err != nil {
		return nil, err
	}

	discipline, err := s.catalog.GetDiscipline(ctx, slot.DisciplineID)
	if err != nil {
		return nil, fmt.Errorf("get discipline: %w", err)
	}

	if err := authorizeSlot(caller, slot, discipline); err != nil {
		return nil, err
	}
	if err := checkSlotStaff(slot, discipline); err != nil {
		return nil, err
	}

	if err := s.store.Insert(ctx, slot); err != nil {
		return nil, fmt.Errorf("create recurring slot: %w", err)
	}

	s.logger.Info("Recurring slot created",
		zap.Int64("slot_id", slot.ID),
		zap.Int64("discipline_id", slot.DisciplineID),
		zap.Int64("monitor_id", slot.MonitorID),
		zap.Stringer("weekday", slot.Weekday),
		zap.Stringer("start", slot.Start),
		zap.Int64("user_id", caller.UserID),
	)

	return slot, nil
}

// Update changes a slot. The caller must be allowed on the slot as stored and
// on the slot as it will be after the change.
func (s *SlotService) Update(ctx context.Context, caller Caller, slotID int64, patch model.SlotPatch) (*model.RecurringSlot, error) {
	if patch.Location != nil {
		trimmed := strings.TrimSpace(*patch.Location)
		patch.Location = &trimmed
	}

	current, err := s.store.Get(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get recurring slot: %w", err)
	}

	discipline, err := s.catalog.GetDiscipline(ctx, current.DisciplineID)
	if err != nil {
		return nil, fmt.Errorf("get discipline: %w", err)
	}

	if err := authorizeSlot(caller, current, discipline); err != nil {
		return nil, err
	}

	next := *current
	next.Apply(patch)
	if err := validateSlot(&next); err != nil {
		return nil, err
	}

	if next.DisciplineID != current.DisciplineID {
		discipline, err = s.catalog.GetDiscipline(ctx, next.DisciplineID)
		if err != nil {
			return nil, fmt.Errorf("get discipline: %w", err)
		}
	}
	if err := authorizeSlot(caller, &next, discipline); err != nil {
		return nil, err
	}
	if err := checkSlotStaff(&next, discipline); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, slotID, patch)
	if err != nil {
		return nil, fmt.Errorf("update recurring slot: %w", err)
	}

	s.logger.Info("Recurring slot updated",
		zap.Int64("slot_id", slotID),
		zap.Int64("user_id", caller.UserID),
	)

	return updated, nil
}

// Get returns a slot inside the caller's slot scope
func (s *SlotService) Get(ctx context.Context, caller Caller, slotID int64) (*model.RecurringSlot, error) {
	slot, err := s.store.Get(ctx, slotID)
	if err != nil {
		return nil, fmt.Errorf("get recurring slot: %w", err)
	}

	if caller.Admin || slot.MonitorID == caller.UserID {
		return slot, nil
	}

	scope, _, err := s.scopes.SlotScope(ctx, caller)
	if err != nil {
		return nil, err
	}
	if !SlotInScope(scope, slot) {
		return nil, fmt.Errorf("slot %d is outside the %s scope: %w", slotID, scope.Name(), model.ErrForbidden)
	}

	return slot, nil
}

// List returns the slots in the caller's scope, narrowed by filter. The
// result is lazy and can be ranged over once.
func (s *SlotService) List(ctx context.Context, caller Caller, filter model.SlotFilter) (iter.Seq2[*model.RecurringSlot, error], error) {
	if filter.Weekday != nil && !model.IsWorkingDay(*filter.Weekday) {
		return nil, fmt.Errorf("weekday must be Monday to Saturday: %w", model.ErrValidation)
	}

	scope := Scope(OpenScope{})
	if !caller.Admin {
		resolved, _, err := s.scopes.SlotScope(ctx, caller)
		if err != nil {
			return nil, err
		}
		scope = resolved
	}

	return once(s.store.List(ctx, RestrictSlots(scope, filter))), nil
}

// authorizeSlot allows admins, professors of the discipline and the named
// monitor when they do monitor the discipline.
func authorizeSlot(caller Caller, slot *model.RecurringSlot, discipline *model.Discipline) error {
	if caller.Admin || discipline.HasProfessor(caller.UserID) {
		return nil
	}
	if caller.UserID == slot.MonitorID && discipline.HasMonitor(caller.UserID) {
		return nil
	}
	return fmt.Errorf("no permission to manage slots of discipline %d: %w", discipline.ID, model.ErrForbidden)
}

func checkSlotStaff(slot *model.RecurringSlot, discipline *model.Discipline) error {
	if !discipline.HasMonitor(slot.MonitorID) {
		return fmt.Errorf("user %d does not monitor discipline %d: %w", slot.MonitorID, discipline.ID, model.ErrValidation)
	}
	if slot.ProfessorID != nil && !discipline.HasProfessor(*slot.ProfessorID) {
		return fmt.Errorf("user %d does not teach discipline %d: %w", *slot.ProfessorID, discipline.ID, model.ErrValidation)
	}
	return nil
}

func validateSlot(slot *model.RecurringSlot) error {
	switch {
	case slot.MonitorID <= 0:
		return fmt.Errorf("monitor is required: %w", model.ErrValidation)
	case !model.IsWorkingDay(slot.Weekday):
		return fmt.Errorf("weekday must be Monday to Saturday: %w", model.ErrValidation)
	case !slot.Start.Valid() || !slot.End.Valid():
		return fmt.Errorf("start and end must be valid times of day: %w", model.ErrValidation)
	case !slot.Start.Before(slot.End):
		return fmt.Errorf("slot must end after %s: %w", slot.Start, model.ErrValidation)
	case utf8.RuneCountInString(slot.Location) > model.LocationMaxLength:
		return fmt.Errorf("location exceeds %d characters: %w", model.LocationMaxLength, model.ErrValidation)
	}
	return nil
}
