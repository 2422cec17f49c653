package repository_test

import (
	"context"
	"iter"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository"
	"github.com/Freeeeeet/tutoring_scheduler/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// openTestPool connects to TEST_DB_DSN, migrates and truncates the schema.
// Tests are skipped when the variable is unset.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	goose.SetBaseFS(migrations.FS)
	require.NoError(t, goose.SetDialect("postgres"))
	db := stdlib.OpenDBFromPool(pool)
	require.NoError(t, goose.UpContext(ctx, db, "."))
	require.NoError(t, db.Close())

	_, err = pool.Exec(ctx, `TRUNCATE bookings, recurring_slots, telegram_links, discipline_monitors, discipline_professors, disciplines RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `
		INSERT INTO disciplines (id, name) VALUES (1, 'Calculus I'), (2, 'Physics I');
		INSERT INTO discipline_monitors (discipline_id, user_id) VALUES (1, 10), (2, 10);
		INSERT INTO discipline_professors (discipline_id, user_id) VALUES (1, 20);
		INSERT INTO telegram_links (telegram_id, user_id) VALUES (5550001, 10);
	`)
	require.NoError(t, err)

	return pool
}

func newBooking(disciplineID, requesterID int64, at time.Time) *model.Booking {
	link := model.PlaceholderLink(model.SessionKindVirtual)
	return &model.Booking{
		DisciplineID: disciplineID,
		RequesterID:  requesterID,
		Kind:         model.SessionKindVirtual,
		Status:       model.BookingStatusAwaiting,
		ScheduledAt:  at,
		Subject:      "Limits",
		MeetingLink:  &link,
	}
}

func TestBookingRepository(t *testing.T) {
	pool := openTestPool(t)
	repo := repository.NewBookingRepository(pool)
	ctx := context.Background()
	at := time.Date(2030, 3, 11, 14, 0, 0, 0, time.UTC)

	first := newBooking(1, 1, at)
	require.NoError(t, repo.Insert(ctx, first))
	assert.NotZero(t, first.ID)

	err := repo.Insert(ctx, newBooking(1, 2, at))
	assert.ErrorIs(t, err, model.ErrSlotAlreadyBooked)

	err = repo.Insert(ctx, newBooking(99, 2, at))
	assert.ErrorIs(t, err, model.ErrDisciplineNotFound)

	link := "https://zoom.us/j/42"
	confirmed, err := repo.TransitionStatus(ctx, first.ID, model.BookingStatusAwaiting, model.BookingStatusConfirmed, &link)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, link, *confirmed.MeetingLink)

	subject := "Too late"
	_, err = repo.Update(ctx, first.ID, model.BookingPatch{Subject: &subject})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	_, err = repo.TransitionStatus(ctx, 9999, model.BookingStatusAwaiting, model.BookingStatusCancelled, nil)
	assert.ErrorIs(t, err, model.ErrBookingNotFound)

	_, err = repo.TransitionStatus(ctx, first.ID, model.BookingStatusConfirmed, model.BookingStatusCancelled, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Insert(ctx, newBooking(1, 2, at)))

	second := newBooking(2, 3, at.Add(24*time.Hour))
	require.NoError(t, repo.Insert(ctx, second))

	on := at.Add(24 * time.Hour)
	items := collect(t, repo.List(ctx, model.BookingFilter{On: &on}))
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)

	items = collect(t, repo.List(ctx, model.BookingFilter{DisciplineIDs: []int64{1}, Status: model.BookingStatusAwaiting}))
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].RequesterID)

	assert.Empty(t, collect(t, repo.List(ctx, model.BookingFilter{DisciplineIDs: []int64{}})))

	require.NoError(t, repo.Delete(ctx, second.ID))
	_, err = repo.Get(ctx, second.ID)
	assert.ErrorIs(t, err, model.ErrBookingNotFound)
}

func TestBookingRepository_ConcurrentInsert(t *testing.T) {
	pool := openTestPool(t)
	repo := repository.NewBookingRepository(pool)
	at := time.Date(2030, 4, 1, 9, 0, 0, 0, time.UTC)

	const workers = 16
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := range workers {
		wg.Add(1)
		go func(requester int64) {
			defer wg.Done()
			if err := repo.Insert(context.Background(), newBooking(1, requester, at)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, model.ErrConflict)
			}
		}(int64(100 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
}

func TestRecurringSlotRepository(t *testing.T) {
	pool := openTestPool(t)
	repo := repository.NewRecurringSlotRepository(pool, zap.NewNop())
	ctx := context.Background()

	slot := &model.RecurringSlot{
		DisciplineID: 1,
		MonitorID:    10,
		Weekday:      time.Monday,
		Start:        model.TimeOfDay{Hour: 14},
		End:          model.TimeOfDay{Hour: 15, Minute: 30},
		Location:     "Room 12",
	}
	require.NoError(t, repo.Insert(ctx, slot))

	dup := *slot
	assert.ErrorIs(t, repo.Insert(ctx, &dup), model.ErrDuplicateRecurringSlot)

	got, err := repo.Get(ctx, slot.ID)
	require.NoError(t, err)
	assert.Equal(t, slot.End, got.End)
	assert.Nil(t, got.ProfessorID)

	professor := int64(20)
	updated, err := repo.Update(ctx, slot.ID, model.SlotPatch{ProfessorID: &professor})
	require.NoError(t, err)
	require.NotNil(t, updated.ProfessorID)
	assert.Equal(t, professor, *updated.ProfessorID)

	monday := time.Monday
	items := collect(t, repo.List(ctx, model.SlotFilter{Weekday: &monday}))
	assert.Len(t, items, 1)
}

func TestCatalogRepository(t *testing.T) {
	pool := openTestPool(t)
	repo := repository.NewCatalogRepository(pool)
	ctx := context.Background()

	d, err := repo.GetDiscipline(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, d.Monitors)
	assert.Equal(t, []int64{20}, d.Professors)

	_, err = repo.GetDiscipline(ctx, 99)
	assert.ErrorIs(t, err, model.ErrDisciplineNotFound)

	m, err := repo.ResolveRoles(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, m.MonitorOf)
	assert.Empty(t, m.ProfessorOf)

	userID, err := repo.UserIDByTelegram(ctx, 5550001)
	require.NoError(t, err)
	assert.Equal(t, int64(10), userID)

	_, err = repo.UserIDByTelegram(ctx, 1)
	assert.ErrorIs(t, err, model.ErrUnauthenticated)
}

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for v, err := range seq {
		require.NoError(t, err)
		out = append(out, v)
	}
	return out
}
