package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
)

// Catalog is a seeded, in-process discipline catalog and role provider
type Catalog struct {
	mu          sync.RWMutex
	disciplines map[int64]*model.Discipline
	telegram    map[int64]int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		disciplines: make(map[int64]*model.Discipline),
		telegram:    make(map[int64]int64),
	}
}

// AddDiscipline registers or replaces a discipline
func (c *Catalog) AddDiscipline(d model.Discipline) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d.Monitors = slices.Clone(d.Monitors)
	d.Professors = slices.Clone(d.Professors)
	c.disciplines[d.ID] = &d
}

// LinkTelegram maps a Telegram account to a user id
func (c *Catalog) LinkTelegram(telegramID, userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.telegram[telegramID] = userID
}

func (c *Catalog) GetDiscipline(_ context.Context, id int64) (*model.Discipline, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.disciplines[id]
	if !ok {
		return nil, model.ErrDisciplineNotFound
	}
	out := *d
	out.Monitors = slices.Clone(d.Monitors)
	out.Professors = slices.Clone(d.Professors)
	return &out, nil
}

func (c *Catalog) ResolveRoles(_ context.Context, userID int64) (model.Membership, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	m := model.Membership{UserID: userID}
	for id, d := range c.disciplines {
		if d.HasMonitor(userID) {
			m.MonitorOf = append(m.MonitorOf, id)
		}
		if d.HasProfessor(userID) {
			m.ProfessorOf = append(m.ProfessorOf, id)
		}
	}
	slices.Sort(m.MonitorOf)
	slices.Sort(m.ProfessorOf)
	return m, nil
}

func (c *Catalog) UserIDByTelegram(_ context.Context, telegramID int64) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	userID, ok := c.telegram[telegramID]
	if !ok {
		return 0, fmt.Errorf("telegram account %d: %w", telegramID, model.ErrUnauthenticated)
	}
	return userID, nil
}
