package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/events"
	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/memory"
	"go.uber.org/zap"
)

// Users and disciplines shared by the service tests.
const (
	student    int64 = 1
	student2   int64 = 2
	monitor    int64 = 10
	professor  int64 = 20
	monitorBio int64 = 11
	dualRole   int64 = 30 // monitors math, teaches physics

	math    int64 = 100
	physics int64 = 200
	biology int64 = 300
)

var testNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

type fakeMeetings struct {
	mu       sync.Mutex
	url      string
	err      error
	calls    int
	onCreate func()
}

func (f *fakeMeetings) CreateMeeting(_ context.Context, startAt time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.onCreate != nil {
		f.onCreate()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	bookings  *BookingService
	slots     *SlotService
	store     *memory.BookingStore
	slotStore *memory.SlotStore
	catalog   *memory.Catalog
	meetings  *fakeMeetings
	published *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	catalog := memory.NewCatalog()
	catalog.AddDiscipline(model.Discipline{ID: math, Name: "Calculus I", Monitors: []int64{monitor, dualRole}, Professors: []int64{professor}})
	catalog.AddDiscipline(model.Discipline{ID: physics, Name: "Physics I", Professors: []int64{dualRole}})
	catalog.AddDiscipline(model.Discipline{ID: biology, Name: "Biology", Monitors: []int64{monitorBio}})

	logger := zap.NewNop()
	store := memory.NewBookingStore()
	slotStore := memory.NewSlotStore()
	meetings := &fakeMeetings{url: "https://zoom.us/j/123456"}
	published := &recordingPublisher{}

	scopes := NewAccessScopeResolver(catalog, logger)
	bookings := NewBookingService(store, catalog, scopes, meetings, published, logger)
	bookings.now = func() time.Time { return testNow }

	return &fixture{
		bookings:  bookings,
		slots:     NewSlotService(slotStore, catalog, scopes, logger),
		store:     store,
		slotStore: slotStore,
		catalog:   catalog,
		meetings:  meetings,
		published: published,
	}
}

func as(userID int64) Caller {
	return Caller{UserID: userID}
}

func (f *fixture) book(t *testing.T, requester, discipline int64, kind model.SessionKind, at time.Time) *model.Booking {
	t.Helper()
	b, err := f.bookings.Create(context.Background(), as(requester), CreateBookingInput{
		DisciplineID: discipline,
		Kind:         kind,
		ScheduledAt:  at,
		Subject:      "Limits",
	})
	if err != nil {
		t.Fatalf("book() failed: %v", err)
	}
	return b
}

var errProvider = errors.New("zoom is down")
