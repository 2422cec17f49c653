package memory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

type slotKey struct {
	monitorID    int64
	disciplineID int64
	weekday      time.Weekday
	start        int
}

// SlotStore keeps recurring slots with a unique (monitor, discipline, weekday, start) index
type SlotStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*model.RecurringSlot
	index  map[slotKey]int64
	now    func() time.Time
}

func NewSlotStore() *SlotStore {
	return &SlotStore{
		rows:  make(map[int64]*model.RecurringSlot),
		index: make(map[slotKey]int64),
		now:   time.Now,
	}
}

func slotKeyOf(s *model.RecurringSlot) slotKey {
	return slotKey{
		monitorID:    s.MonitorID,
		disciplineID: s.DisciplineID,
		weekday:      s.Weekday,
		start:        s.Start.Minutes(),
	}
}

func (s *SlotStore) Insert(_ context.Context, slot *model.RecurringSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.index[slotKeyOf(slot)]; taken {
		return model.ErrDuplicateRecurringSlot
	}

	s.nextID++
	now := s.now().UTC()
	slot.ID = s.nextID
	slot.CreatedAt = now
	slot.UpdatedAt = now

	stored := cloneSlot(slot)
	s.rows[stored.ID] = stored
	s.index[slotKeyOf(stored)] = stored.ID
	return nil
}

func (s *SlotStore) Get(_ context.Context, id int64) (*model.RecurringSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.rows[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}
	return cloneSlot(slot), nil
}

func (s *SlotStore) Update(_ context.Context, id int64, patch model.SlotPatch) (*model.RecurringSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rows[id]
	if !ok {
		return nil, model.ErrSlotNotFound
	}

	next := cloneSlot(current)
	next.Apply(patch)
	if owner, taken := s.index[slotKeyOf(next)]; taken && owner != id {
		return nil, model.ErrDuplicateRecurringSlot
	}

	delete(s.index, slotKeyOf(current))
	next.UpdatedAt = s.now().UTC()
	s.rows[id] = next
	s.index[slotKeyOf(next)] = id
	return cloneSlot(next), nil
}

func (s *SlotStore) List(ctx context.Context, filter model.SlotFilter) iter.Seq2[*model.RecurringSlot, error] {
	return func(yield func(*model.RecurringSlot, error) bool) {
		s.mu.Lock()
		var matched []*model.RecurringSlot
		for _, slot := range s.rows {
			if filter.Matches(slot) {
				matched = append(matched, cloneSlot(slot))
			}
		}
		s.mu.Unlock()

		slices.SortFunc(matched, func(a, b *model.RecurringSlot) int {
			return cmp.Or(
				cmp.Compare(a.Weekday, b.Weekday),
				cmp.Compare(a.Start.Minutes(), b.Start.Minutes()),
				cmp.Compare(a.ID, b.ID),
			)
		})

		for _, slot := range matched {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(slot, nil) {
				return
			}
		}
	}
}

func cloneSlot(s *model.RecurringSlot) *model.RecurringSlot {
	c := *s
	if s.ProfessorID != nil {
		id := *s.ProfessorID
		c.ProfessorID = &id
	}
	return &c
}
