package repository

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const uniqueRecurringSlot = "recurring_slots_monitor_discipline_weekday_start_key"

const slotColumns = `id, professor_id, discipline_id, monitor_id, weekday, start_hour, start_minute, end_hour, end_minute, location, created_at, updated_at`

// RecurringSlotRepository stores monitors' weekly office hours
type RecurringSlotRepository struct {
	*base.Repository
	logger *zap.Logger
}

func NewRecurringSlotRepository(pool *pgxpool.Pool, logger *zap.Logger) *RecurringSlotRepository {
	return &RecurringSlotRepository{
		Repository: base.NewRepository(pool),
		logger:     logger,
	}
}

// Insert stores a new recurring slot
func (r *RecurringSlotRepository) Insert(ctx context.Context, slot *model.RecurringSlot) error {
	query := `
		INSERT INTO recurring_slots (professor_id, discipline_id, monitor_id, weekday, start_hour, start_minute, end_hour, end_minute, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx,
		query,
		slot.ProfessorID,
		slot.DisciplineID,
		slot.MonitorID,
		int(slot.Weekday),
		slot.Start.Hour,
		slot.Start.Minute,
		slot.End.Hour,
		slot.End.Minute,
		slot.Location,
	).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)

	if err != nil {
		return r.translate("insert recurring slot", err)
	}

	return nil
}

// Get returns a recurring slot by id
func (r *RecurringSlotRepository) Get(ctx context.Context, id int64) (*model.RecurringSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM recurring_slots WHERE id = $1`

	slot, err := scanSlot(r.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.translate("get recurring slot", err)
	}

	return slot, nil
}

// Update applies a patch to a recurring slot
func (r *RecurringSlotRepository) Update(ctx context.Context, id int64, patch model.SlotPatch) (*model.RecurringSlot, error) {
	query := `
		UPDATE recurring_slots
		SET professor_id  = COALESCE($2, professor_id),
		    discipline_id = COALESCE($3, discipline_id),
		    monitor_id    = COALESCE($4, monitor_id),
		    weekday       = COALESCE($5, weekday),
		    start_hour    = COALESCE($6, start_hour),
		    start_minute  = COALESCE($7, start_minute),
		    end_hour      = COALESCE($8, end_hour),
		    end_minute    = COALESCE($9, end_minute),
		    location      = COALESCE($10, location),
		    updated_at    = now()
		WHERE id = $1
		RETURNING ` + slotColumns

	var weekday *int
	if patch.Weekday != nil {
		d := int(*patch.Weekday)
		weekday = &d
	}
	var startHour, startMinute, endHour, endMinute *int
	if patch.Start != nil {
		startHour, startMinute = &patch.Start.Hour, &patch.Start.Minute
	}
	if patch.End != nil {
		endHour, endMinute = &patch.End.Hour, &patch.End.Minute
	}

	slot, err := scanSlot(r.QueryRow(
		ctx,
		query,
		id,
		patch.ProfessorID,
		patch.DisciplineID,
		patch.MonitorID,
		weekday,
		startHour,
		startMinute,
		endHour,
		endMinute,
		patch.Location,
	))
	if err != nil {
		return nil, r.translate("update recurring slot", err)
	}

	return slot, nil
}

// List streams the recurring slots matching filter, ordered by weekday and start
func (r *RecurringSlotRepository) List(ctx context.Context, filter model.SlotFilter) iter.Seq2[*model.RecurringSlot, error] {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.DisciplineIDs != nil {
		add("discipline_id = ANY($%d)", filter.DisciplineIDs)
	}
	if filter.MonitorID != nil {
		add("monitor_id = $%d", *filter.MonitorID)
	}
	if filter.Weekday != nil {
		add("weekday = $%d", int(*filter.Weekday))
	}

	query := `SELECT ` + slotColumns + ` FROM recurring_slots`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY weekday, start_hour, start_minute, id`

	return func(yield func(*model.RecurringSlot, error) bool) {
		for slot, err := range base.Seq(ctx, r.Repository, query, args, scanSlot) {
			if err != nil {
				yield(nil, fmt.Errorf("list recurring slots: %w", err))
				return
			}
			if !yield(slot, nil) {
				return
			}
		}
	}
}

func (r *RecurringSlotRepository) translate(op string, err error) error {
	switch {
	case base.IsNotFound(err):
		return model.ErrSlotNotFound
	case base.IsUniqueViolation(err, uniqueRecurringSlot):
		r.logger.Debug("Recurring slot conflict", zap.String("op", op))
		return model.ErrDuplicateRecurringSlot
	case base.IsForeignKeyViolation(err):
		return model.ErrDisciplineNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanSlot(row pgx.Row) (*model.RecurringSlot, error) {
	var (
		slot    model.RecurringSlot
		weekday int
	)
	err := row.Scan(
		&slot.ID,
		&slot.ProfessorID,
		&slot.DisciplineID,
		&slot.MonitorID,
		&weekday,
		&slot.Start.Hour,
		&slot.Start.Minute,
		&slot.End.Hour,
		&slot.End.Minute,
		&slot.Location,
		&slot.CreatedAt,
		&slot.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.Weekday = time.Weekday(weekday)
	return &slot, nil
}
