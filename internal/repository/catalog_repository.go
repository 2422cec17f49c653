package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutoring_scheduler/internal/model"
	"github.com/Freeeeeet/tutoring_scheduler/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRepository reads discipline reference data and the monitor/professor
// membership tables. It never writes: the catalog is owned elsewhere.
type CatalogRepository struct {
	*base.Repository
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{Repository: base.NewRepository(pool)}
}

// GetDiscipline returns a discipline with its monitor and professor sets
func (r *CatalogRepository) GetDiscipline(ctx context.Context, id int64) (*model.Discipline, error) {
	query := `
		SELECT d.id, d.name,
		       COALESCE((SELECT array_agg(user_id ORDER BY user_id) FROM discipline_monitors WHERE discipline_id = d.id), '{}'),
		       COALESCE((SELECT array_agg(user_id ORDER BY user_id) FROM discipline_professors WHERE discipline_id = d.id), '{}')
		FROM disciplines d
		WHERE d.id = $1
	`

	var d model.Discipline
	err := r.QueryRow(ctx, query, id).Scan(&d.ID, &d.Name, &d.Monitors, &d.Professors)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrDisciplineNotFound
		}
		return nil, fmt.Errorf("get discipline: %w", err)
	}

	return &d, nil
}

// ResolveRoles returns the disciplines a user monitors and teaches
func (r *CatalogRepository) ResolveRoles(ctx context.Context, userID int64) (model.Membership, error) {
	query := `
		SELECT
		       COALESCE((SELECT array_agg(discipline_id ORDER BY discipline_id) FROM discipline_monitors WHERE user_id = $1), '{}'),
		       COALESCE((SELECT array_agg(discipline_id ORDER BY discipline_id) FROM discipline_professors WHERE user_id = $1), '{}')
	`

	m := model.Membership{UserID: userID}
	if err := r.QueryRow(ctx, query, userID).Scan(&m.MonitorOf, &m.ProfessorOf); err != nil {
		return model.Membership{}, fmt.Errorf("resolve roles: %w", err)
	}

	return m, nil
}

// UserIDByTelegram maps a linked Telegram account to the platform user id
func (r *CatalogRepository) UserIDByTelegram(ctx context.Context, telegramID int64) (int64, error) {
	query := `SELECT user_id FROM telegram_links WHERE telegram_id = $1`

	var userID int64
	if err := r.QueryRow(ctx, query, telegramID).Scan(&userID); err != nil {
		if base.IsNotFound(err) {
			return 0, fmt.Errorf("telegram account %d: %w", telegramID, model.ErrUnauthenticated)
		}
		return 0, fmt.Errorf("get telegram link: %w", err)
	}

	return userID, nil
}
