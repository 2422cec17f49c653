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
)

// uniqueBookingSlot is the partial unique index over non-cancelled bookings
const uniqueBookingSlot = "bookings_discipline_scheduled_at_key"

const bookingColumns = `id, discipline_id, requester_id, kind, status, scheduled_at, subject, description, meeting_link, created_at, updated_at`

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

// Insert stores a new booking. A second live booking for the same discipline
// and instant is rejected by the unique index.
func (r *BookingRepository) Insert(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (discipline_id, requester_id, kind, status, scheduled_at, subject, description, meeting_link)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		booking.DisciplineID,
		booking.RequesterID,
		string(booking.Kind),
		string(booking.Status),
		booking.ScheduledAt.UTC(),
		booking.Subject,
		booking.Description,
		booking.MeetingLink,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return translateBookingErr("insert booking", err)
	}

	return nil
}

// Get returns a booking by id
func (r *BookingRepository) Get(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateBookingErr("get booking", err)
	}

	return booking, nil
}

// Update applies a patch to a booking that still awaits confirmation.
func (r *BookingRepository) Update(ctx context.Context, id int64, patch model.BookingPatch) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET discipline_id = COALESCE($2, discipline_id),
		    kind          = COALESCE($3, kind),
		    scheduled_at  = COALESCE($4, scheduled_at),
		    subject       = COALESCE($5, subject),
		    description   = COALESCE($6, description),
		    meeting_link  = COALESCE($7, meeting_link),
		    updated_at    = now()
		WHERE id = $1 AND status = $8
		RETURNING ` + bookingColumns

	var kind *string
	if patch.Kind != nil {
		k := string(*patch.Kind)
		kind = &k
	}
	var scheduledAt *time.Time
	if patch.ScheduledAt != nil {
		t := patch.ScheduledAt.UTC()
		scheduledAt = &t
	}

	booking, err := scanBooking(r.QueryRow(
		ctx, query,
		id,
		patch.DisciplineID,
		kind,
		scheduledAt,
		patch.Subject,
		patch.Description,
		patch.MeetingLink,
		string(model.BookingStatusAwaiting),
	))
	if base.IsNotFound(err) {
		return nil, r.explainMiss(ctx, id)
	}
	if err != nil {
		return nil, translateBookingErr("update booking", err)
	}

	return booking, nil
}

// TransitionStatus moves a booking from one status to another. The update is
// conditional on the current status, so two concurrent transitions cannot
// both win. A non-nil link replaces the stored meeting link.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to model.BookingStatus, link *string) (*model.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $3, meeting_link = COALESCE($4, meeting_link), updated_at = now()
		WHERE id = $1 AND status = $2
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.QueryRow(ctx, query, id, string(from), string(to), link))
	if base.IsNotFound(err) {
		return nil, r.explainMiss(ctx, id)
	}
	if err != nil {
		return nil, translateBookingErr("transition booking status", err)
	}

	return booking, nil
}

// Delete removes a booking that still awaits confirmation
func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM bookings WHERE id = $1 AND status = $2`

	affected, err := r.ExecAffected(ctx, query, id, string(model.BookingStatusAwaiting))
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	if affected == 0 {
		return r.explainMiss(ctx, id)
	}

	return nil
}

// List streams the bookings matching filter, ordered by scheduled time.
func (r *BookingRepository) List(ctx context.Context, filter model.BookingFilter) iter.Seq2[*model.Booking, error] {
	query, args := buildBookingQuery(filter)

	return func(yield func(*model.Booking, error) bool) {
		for booking, err := range base.Seq(ctx, r.Repository, query, args, scanBooking) {
			if err != nil {
				yield(nil, fmt.Errorf("list bookings: %w", err))
				return
			}
			if !yield(booking, nil) {
				return
			}
		}
	}
}

func buildBookingQuery(filter model.BookingFilter) (string, []any) {
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
	if filter.RequesterID != nil {
		add("requester_id = $%d", *filter.RequesterID)
	}
	if filter.Status != "" {
		add("status = $%d", string(filter.Status))
	}
	if filter.On != nil {
		add("(scheduled_at AT TIME ZONE 'UTC')::date = $%d::date", utcDate(*filter.On))
	}
	if filter.After != nil {
		add("(scheduled_at AT TIME ZONE 'UTC')::date > $%d::date", utcDate(*filter.After))
	}
	if filter.Before != nil {
		add("(scheduled_at AT TIME ZONE 'UTC')::date < $%d::date", utcDate(*filter.Before))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY scheduled_at, id`

	return query, args
}

// utcDate formats the UTC calendar day so the session time zone cannot shift it
func utcDate(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// explainMiss tells a missing booking apart from one in the wrong status.
func (r *BookingRepository) explainMiss(ctx context.Context, id int64) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("booking %d is %s: %w", id, current.Status, model.ErrInvalidTransition)
}

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var (
		booking model.Booking
		kind    string
		status  string
	)
	err := row.Scan(
		&booking.ID,
		&booking.DisciplineID,
		&booking.RequesterID,
		&kind,
		&status,
		&booking.ScheduledAt,
		&booking.Subject,
		&booking.Description,
		&booking.MeetingLink,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.Kind = model.SessionKind(kind)
	booking.Status = model.BookingStatus(status)
	booking.ScheduledAt = booking.ScheduledAt.UTC()
	return &booking, nil
}

func translateBookingErr(op string, err error) error {
	switch {
	case base.IsNotFound(err):
		return model.ErrBookingNotFound
	case base.IsUniqueViolation(err, uniqueBookingSlot):
		return model.ErrSlotAlreadyBooked
	case base.IsForeignKeyViolation(err):
		return model.ErrDisciplineNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
